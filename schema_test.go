package caniot

import "testing"

func TestResolve_Totality(t *testing.T) {
	for sec := 0; sec < len(schema); sec++ {
		for attr := range schema[sec].Attributes {
			size := schema[sec].Attributes[attr].Size
			for part := uint8(0); part*4 < size; part++ {
				key := MakeAttrKey(uint8(sec), uint8(attr), part)
				if _, err := Resolve(key); err != nil {
					t.Fatalf("Resolve(section=%d,attr=%d,part=%d) unexpected error: %v", sec, attr, part, err)
				}
			}
		}
	}
}

func TestResolve_KeySectionOutOfRange(t *testing.T) {
	key := MakeAttrKey(uint8(len(schema)), 0, 0)
	_, err := Resolve(key)
	if codeOf(err) != ErrKeySection {
		t.Fatalf("Resolve out-of-range section: got %v, want ErrKeySection", err)
	}
}

func TestResolve_KeyAttrOutOfRange(t *testing.T) {
	n := len(schema[SectionIndexSystem].Attributes)
	key := MakeAttrKey(SectionIndexSystem, uint8(n), 0)
	_, err := Resolve(key)
	if codeOf(err) != ErrKeyAttribute {
		t.Fatalf("Resolve out-of-range attribute: got %v, want ErrKeyAttribute", err)
	}
}

func TestResolve_KeyPartOutOfRange(t *testing.T) {
	// version is 2 bytes wide; part=1 addresses byte offset 4, past its size.
	key := MakeAttrKey(SectionIndexIdentification, 1, 1)
	_, err := Resolve(key)
	if codeOf(err) != ErrKeyPart {
		t.Fatalf("Resolve part out of range: got %v, want ErrKeyPart", err)
	}
}

func TestResolve_ReadOnlySectionStripsWritable(t *testing.T) {
	for attr := range identificationSection.Attributes {
		key := MakeAttrKey(SectionIndexIdentification, uint8(attr), 0)
		desc, err := Resolve(key)
		if err != nil {
			t.Fatalf("Resolve(identification,%d): %v", attr, err)
		}
		if desc.Role.Writable {
			t.Fatalf("identification.%s resolved writable despite READONLY section role", desc.Attr.Name)
		}
	}
}

func TestWriteAttribute_IdentificationIsReadOnly(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	key := MakeAttrKey(SectionIndexIdentification, 1, 0) // version
	err := dev.WriteAttribute(key, 0xFFFF)
	if codeOf(err) != ErrReadOnlyAttr {
		t.Fatalf("write to identification.version: got %v, want ErrReadOnlyAttr", err)
	}
}

func TestReadAttribute_HiddenIsBlocked(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api)

	// received.ignored is marked Hidden in systemSection.
	var key AttrKey
	for i, a := range systemSection.Attributes {
		if a.Name == "received.ignored" {
			key = MakeAttrKey(SectionIndexSystem, uint8(i), 0)
		}
	}
	_, err := dev.ReadAttribute(key)
	if codeOf(err) != ErrReadOnlyAttr {
		t.Fatalf("read of hidden attribute: got %v, want ErrReadOnlyAttr", err)
	}
}

func TestAttribute_ClassGating(t *testing.T) {
	driver := &fakeDriver{}
	api := &testAPI{}
	dev := newTestDevice(driver, api) // class=1

	var key AttrKey
	for i, a := range configurationSection.Attributes {
		if a.Name == "cls0_gpio.outputs_default" {
			key = MakeAttrKey(SectionIndexConfiguration, uint8(i), 0)
		}
	}

	if _, err := dev.ReadAttribute(key); codeOf(err) != ErrClassAttr {
		t.Fatalf("class-0 attribute read on class-1 device: got %v, want ErrClassAttr", err)
	}
	if err := dev.WriteAttribute(key, 1); codeOf(err) != ErrClassAttr {
		t.Fatalf("class-0 attribute write on class-1 device: got %v, want ErrClassAttr", err)
	}

	dev.Identification.Did.Class = 0
	if _, err := dev.ReadAttribute(key); err != nil {
		t.Fatalf("class-0 attribute read on class-0 device: unexpected error %v", err)
	}
}
