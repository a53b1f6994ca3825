package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/caniot-project/caniot"
)

var (
	sendClass    uint8
	sendSubID    uint8
	sendEndpoint string
	sendWait     time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <telemetry|read-attribute KEY|write-attribute KEY VALUE>",
	Short: "Send a single request frame and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().Uint8Var(&sendClass, "class", 0, "target device class")
	sendCmd.Flags().Uint8Var(&sendSubID, "sub-id", 0, "target device sub-id")
	sendCmd.Flags().StringVar(&sendEndpoint, "endpoint", "app", "target endpoint: app|ep1|ep2|board_control")
	sendCmd.Flags().DurationVar(&sendWait, "wait", 2*time.Second, "how long to wait for a response")
	rootCmd.AddCommand(sendCmd)
}

var endpointsByName = map[string]caniot.Endpoint{
	"app":           caniot.EndpointApp,
	"ep1":           caniot.EndpointEp1,
	"ep2":           caniot.EndpointEp2,
	"board_control": caniot.EndpointBoardControl,
}

func runSend(cmd *cobra.Command, args []string) error {
	ep, ok := endpointsByName[sendEndpoint]
	if !ok {
		return fmt.Errorf("send: unknown --endpoint %q", sendEndpoint)
	}
	did := caniot.Did{Class: sendClass, SubID: sendSubID}

	req, err := buildRequest(did, ep, args)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	driver, err := openDriver()
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if closer, ok := driver.(io.Closer); ok {
		defer closer.Close()
	}

	if err := driver.Send(req, 0); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	deadline := time.Now().Add(sendWait)
	for time.Now().Before(deadline) {
		resp, err := driver.Recv()
		if errors.Is(err, caniot.ErrAgain) {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if resp.ID.Did() != did || resp.ID.Direction != caniot.DirectionResponse {
			continue
		}
		fmt.Println(resp.String())
		return nil
	}
	return fmt.Errorf("send: no response within %s", sendWait)
}

// buildRequest renders one of send's three request shapes as a Frame: a
// telemetry poll, a read_attribute query, or a write_attribute query.
func buildRequest(did caniot.Did, ep caniot.Endpoint, args []string) (caniot.Frame, error) {
	switch args[0] {
	case "telemetry":
		return caniot.Frame{ID: caniot.Identifier{
			Type: caniot.TypeTelemetry, Direction: caniot.DirectionQuery,
			Class: did.Class, SubID: did.SubID, Endpoint: ep,
		}}, nil

	case "read-attribute":
		if len(args) < 2 {
			return caniot.Frame{}, fmt.Errorf("read-attribute requires a KEY argument")
		}
		key, err := parseAttrKey(args[1])
		if err != nil {
			return caniot.Frame{}, err
		}
		f := caniot.Frame{ID: caniot.Identifier{
			Type: caniot.TypeReadAttribute, Direction: caniot.DirectionQuery,
			Class: did.Class, SubID: did.SubID, Endpoint: ep,
		}}
		payload := make([]byte, 2)
		payload[0] = byte(key)
		payload[1] = byte(key >> 8)
		f.SetPayload(payload)
		return f, nil

	case "write-attribute":
		if len(args) < 3 {
			return caniot.Frame{}, fmt.Errorf("write-attribute requires KEY and VALUE arguments")
		}
		key, err := parseAttrKey(args[1])
		if err != nil {
			return caniot.Frame{}, err
		}
		value, err := strconv.ParseUint(args[2], 0, 32)
		if err != nil {
			return caniot.Frame{}, fmt.Errorf("invalid VALUE %q: %w", args[2], err)
		}
		f := caniot.Frame{ID: caniot.Identifier{
			Type: caniot.TypeWriteAttribute, Direction: caniot.DirectionQuery,
			Class: did.Class, SubID: did.SubID, Endpoint: ep,
		}}
		payload := make([]byte, 6)
		payload[0] = byte(key)
		payload[1] = byte(key >> 8)
		payload[2] = byte(value)
		payload[3] = byte(value >> 8)
		payload[4] = byte(value >> 16)
		payload[5] = byte(value >> 24)
		f.SetPayload(payload)
		return f, nil

	default:
		return caniot.Frame{}, fmt.Errorf("unknown send kind %q: want telemetry|read-attribute|write-attribute", args[0])
	}
}

func parseAttrKey(s string) (caniot.AttrKey, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid KEY %q: %w", s, err)
	}
	return caniot.AttrKey(v), nil
}
