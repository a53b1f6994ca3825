package caniot

// SectionRole is the access policy that applies to every attribute within
// a schema section, before any per-attribute role flags are consulted.
type SectionRole uint8

const (
	// SectionReadOnly strips Writable from every attribute it contains,
	// regardless of that attribute's own role flags.
	SectionReadOnly SectionRole = iota
	// SectionVolatile holds live RAM state; writes land directly in memory.
	SectionVolatile
	// SectionPersistent holds application-owned state; writes are surfaced
	// to the application via the config write-back callback.
	SectionPersistent
)

// RoleFlags describes whether an attribute can be read, written, or is
// hidden (ReadAttribute refuses hidden attributes), and whether it is
// restricted to a single device class.
type RoleFlags struct {
	Readable bool
	Writable bool
	Hidden   bool
	// Class is the device class this attribute is restricted to, or
	// ClassAll if it is accessible regardless of class.
	Class uint8
}

// ClassAll marks an attribute as accessible from every device class.
const ClassAll uint8 = 0xFF

// Attribute is one entry in a schema section's attribute table. Size is the
// attribute's natural byte width; Get/Set render/consume its full value as
// that many bytes, independent of the 4-byte part windows the wire protocol
// addresses it through (the resolver and engine slice those windows out of
// what Get/Set hand back).
type Attribute struct {
	Name string
	Size uint8
	Role RoleFlags
	Get  func(dev *Device) []byte
	Set  func(dev *Device, full []byte) error
}

// Section is one of the three top-level schema sections: identification,
// system, or configuration.
type Section struct {
	Name       string
	Role       SectionRole
	Attributes []Attribute
}

// roleAdjusted applies the section role adjustment: a read-only section
// strips Writable from every attribute regardless of its own flags.
func (s Section) roleAdjusted(r RoleFlags) RoleFlags {
	if s.Role == SectionReadOnly {
		r.Writable = false
	}
	return r
}

// Section indices, fixed by the schema.
const (
	SectionIndexIdentification uint8 = 0
	SectionIndexSystem         uint8 = 1
	SectionIndexConfiguration  uint8 = 2
)

// schema is the compile-time, read-only attribute catalogue. It never
// changes after init and holds no device-specific state itself; every
// Get/Set closure is parameterised by the *Device passed to it.
var schema = [3]Section{
	SectionIndexIdentification: identificationSection,
	SectionIndexSystem:         systemSection,
	SectionIndexConfiguration:  configurationSection,
}

// AccessDescriptor is the result of resolving an AttrKey: everything the
// attribute engine needs to perform a read or write without consulting the
// schema again.
type AccessDescriptor struct {
	Section     *Section
	SectionIdx  uint8
	Attr        *Attribute
	AttrIdx     uint8
	PartOffset  uint8 // part_idx * 4
	Size        uint8 // min(attribute.Size-PartOffset, 4)
	Role        RoleFlags
}

// Resolve decomposes key into (section, attribute, part) and locates the
// corresponding schema entry, applying the section role adjustment. It
// implements the resolver totality property: every structurally valid key
// resolves, and every invalid one yields exactly one of EKEYSECTION,
// EKEYATTR, EKEYPART.
func Resolve(key AttrKey) (AccessDescriptor, error) {
	secIdx := key.Section()
	if int(secIdx) >= len(schema) {
		return AccessDescriptor{}, &AttributeError{Code: ErrKeySection, Key: key}
	}
	sec := &schema[secIdx]

	attrIdx := key.Attribute()
	if int(attrIdx) >= len(sec.Attributes) {
		return AccessDescriptor{}, &AttributeError{Code: ErrKeyAttribute, Key: key}
	}
	attr := &sec.Attributes[attrIdx]

	partOffset := key.Part() * 4
	if partOffset >= attr.Size {
		return AccessDescriptor{}, &AttributeError{Code: ErrKeyPart, Key: key}
	}

	size := attr.Size - partOffset
	if size > 4 {
		size = 4
	}

	return AccessDescriptor{
		Section:    sec,
		SectionIdx: secIdx,
		Attr:       attr,
		AttrIdx:    attrIdx,
		PartOffset: partOffset,
		Size:       size,
		Role:       sec.roleAdjusted(attr.Role),
	}, nil
}
