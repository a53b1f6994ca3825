package caniot

import (
	"errors"
	"fmt"
)

// ErrorCode is a member of the closed CANIOT protocol error taxonomy.
// Protocol error codes live in a dedicated negative range so a host
// embedding this package can distinguish them from transport-level errors
// returned by a Driver.
type ErrorCode int32

const (
	ErrInvalid        ErrorCode = -1  // EINVAL: malformed request, no response sent
	ErrFrame          ErrorCode = -2  // EFRAME: frame does not decode as a valid request
	ErrKeySection     ErrorCode = -3  // EKEYSECTION: section index out of range
	ErrKeyAttribute   ErrorCode = -4  // EKEYATTR: attribute index out of range within section
	ErrKeyPart        ErrorCode = -5  // EKEYPART: part index addresses past the attribute's size
	ErrClassAttr      ErrorCode = -6  // ECLSATTR: attribute restricted to a class the device is not
	ErrNoAttribute    ErrorCode = -7  // ENOATTR: no such attribute (custom_attr fallback exhausted)
	ErrReadAttribute  ErrorCode = -8  // EREADATTR: attribute read failed
	ErrWriteAttribute ErrorCode = -9  // EWRITEATTR: attribute write failed
	ErrReadOnlyAttr   ErrorCode = -10 // EROATTR: write against a non-writable attribute, or read of a hidden or unreadable one
	ErrHandlerCommand ErrorCode = -11 // EHANDLERC: no command handler registered
	ErrHandlerTelem   ErrorCode = -12 // EHANDLERT: no telemetry handler registered
	ErrUnexpected     ErrorCode = -13 // EUNEXPECTED: frame received but not targeted at this device
	ErrAgain          ErrorCode = -14 // EAGAIN: no frame pending; not a protocol-level error
	ErrNotSupported   ErrorCode = -15 // ENOTSUP: operation not supported by this build
	ErrNotImplemented ErrorCode = -16 // ENIMPL: operation recognised but not implemented
)

var errorText = map[ErrorCode]string{
	ErrInvalid:        "invalid request",
	ErrFrame:          "invalid frame",
	ErrKeySection:     "unknown attribute section",
	ErrKeyAttribute:   "unknown attribute index",
	ErrKeyPart:        "attribute part index out of range",
	ErrClassAttr:      "attribute restricted to another class",
	ErrNoAttribute:    "no such attribute",
	ErrReadAttribute:  "attribute read failed",
	ErrWriteAttribute: "attribute write failed",
	ErrReadOnlyAttr:   "attribute is not writable",
	ErrHandlerCommand: "no command handler registered",
	ErrHandlerTelem:   "no telemetry handler registered",
	ErrUnexpected:     "frame not targeted at this device",
	ErrAgain:          "no frame pending",
	ErrNotSupported:   "not supported",
	ErrNotImplemented: "not implemented",
}

func (c ErrorCode) Error() string {
	if s, ok := errorText[c]; ok {
		return s
	}
	return fmt.Sprintf("caniot: unknown error code %d", int32(c))
}

// AttributeError wraps an ErrorCode with the attribute key that was being
// resolved when it occurred, so dispatch can embed the key as the second
// word of an error frame's payload without plumbing it through
// a separate return value.
type AttributeError struct {
	Code ErrorCode
	Key  AttrKey
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s (key=0x%04x)", e.Code.Error(), uint16(e.Key))
}

func (e *AttributeError) Unwrap() error {
	return e.Code
}

// codeOf extracts the ErrorCode a core operation failed with, unwrapping
// AttributeError when present. nil input maps to the zero ErrorCode (no
// error); callers should check err != nil first.
func codeOf(err error) ErrorCode {
	if err == nil {
		return 0
	}
	var ae *AttributeError
	if errors.As(err, &ae) {
		return ae.Code
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	return ErrUnexpected
}
