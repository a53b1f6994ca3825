package caniot

// ReadAttribute resolves key and returns its current 4-byte wire word,
// zero-extended if the attribute is narrower than 4 bytes. If key does not
// resolve and the device's API also implements CustomAttrHandler, the read
// is delegated there instead of failing.
func (d *Device) ReadAttribute(key AttrKey) (uint32, error) {
	desc, err := Resolve(key)
	if err != nil {
		if h, ok := d.API.(CustomAttrHandler); ok {
			v, herr := h.ReadCustomAttr(d, key)
			if herr == nil {
				return v, nil
			}
		}
		return 0, err
	}

	if !classMatches(desc.Role.Class, d.Did().Class) {
		return 0, &AttributeError{Code: ErrClassAttr, Key: key}
	}
	if desc.Role.Hidden || !desc.Role.Readable {
		return 0, &AttributeError{Code: ErrReadOnlyAttr, Key: key}
	}

	if desc.SectionIdx == SectionIndexConfiguration && d.configDirty {
		if d.API != nil {
			if err := d.API.ConfigOnRead(d); err != nil {
				return 0, &AttributeError{Code: ErrReadAttribute, Key: key}
			}
		}
		d.configDirty = false
	}

	full := desc.Attr.Get(d)
	return wireWord(full, desc.PartOffset, desc.Size), nil
}

// WriteAttribute resolves key, writes value into the attribute's backing
// state, and applies the section-specific side effects (time-shift special
// case for system.time, the on_write callback for configuration). Like
// ReadAttribute, it falls back to CustomAttrHandler when key does not
// resolve.
func (d *Device) WriteAttribute(key AttrKey, value uint32) error {
	desc, err := Resolve(key)
	if err != nil {
		if h, ok := d.API.(CustomAttrHandler); ok {
			if herr := h.WriteCustomAttr(d, key, value); herr == nil {
				return nil
			}
		}
		return err
	}

	if !classMatches(desc.Role.Class, d.Did().Class) {
		return &AttributeError{Code: ErrClassAttr, Key: key}
	}
	if !desc.Role.Writable {
		return &AttributeError{Code: ErrReadOnlyAttr, Key: key}
	}

	full := desc.Attr.Get(d)
	patchWireWord(full, desc.PartOffset, desc.Size, value)

	switch desc.SectionIdx {
	case SectionIndexSystem:
		if key == AttrKeySystemTime {
			return d.writeSystemTime(desc, full, value)
		}
		if err := desc.Attr.Set(d, full); err != nil {
			return &AttributeError{Code: ErrWriteAttribute, Key: key}
		}
		return nil

	case SectionIndexConfiguration:
		if err := desc.Attr.Set(d, full); err != nil {
			return &AttributeError{Code: ErrWriteAttribute, Key: key}
		}
		if d.API == nil {
			return nil
		}
		before, _ := d.Driver.GetTime()
		if err := d.API.ConfigOnWrite(d); err != nil {
			return &AttributeError{Code: ErrWriteAttribute, Key: key}
		}
		after, _ := d.Driver.GetTime()
		d.shiftTimebase(int64(after) - int64(before))
		return nil

	default: // identification: never writable, unreachable via role check above
		return &AttributeError{Code: ErrReadOnlyAttr, Key: key}
	}
}

// writeSystemTime implements the system.time special case: the new value
// becomes the device's wall-clock time, the driver is told to adopt it, and
// every deadline derived from the old timebase is shifted by the observed
// delta so in-flight periods are preserved rather than reset.
func (d *Device) writeSystemTime(desc AccessDescriptor, full []byte, value uint32) error {
	before, _ := d.Driver.GetTime()
	newSec := readLE32(full)
	d.Driver.SetTime(newSec)
	after, _ := d.Driver.GetTime()
	delta := int64(after) - int64(before)

	d.shiftTimebase(delta)
	d.System.Time = newSec
	d.System.UptimeSynced = newSec - d.System.StartTime
	return nil
}

func (d *Device) shiftTimebase(delta int64) {
	if delta == 0 {
		return
	}
	d.System.StartTime = uint32(int64(d.System.StartTime) + delta)
	d.System.LastTelemetry = uint32(int64(d.System.LastTelemetry) + delta)
	d.System.LastTelemetryMs = uint32(int64(d.System.LastTelemetryMs) + delta*1000)
}

// classMatches reports whether an attribute restricted to attrClass is
// visible to a device of class devClass.
func classMatches(attrClass, devClass uint8) bool {
	return attrClass == ClassAll || attrClass == devClass
}

// wireWord extracts the little-endian 4-byte wire word for a part window,
// zero-extending when the attribute's natural size at this offset is
// narrower than 4 bytes.
func wireWord(full []byte, offset, size uint8) uint32 {
	var b [4]byte
	copy(b[:], full[offset:offset+size])
	return readLE32(b[:])
}

// patchWireWord writes the low size bytes of value, little-endian, into
// full at offset, leaving the rest of full untouched.
func patchWireWord(full []byte, offset, size uint8, value uint32) {
	var b [4]byte
	writeLE32(b[:], value)
	copy(full[offset:offset+size], b[:size])
}
