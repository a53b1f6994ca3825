package caniot

// Identification is the device's read-only identity, supplied once at
// construction and never mutated by the core for the lifetime of the
// process. On a microcontroller target this memory would typically live in
// program flash rather than RAM; on a host it is an ordinary value.
type Identification struct {
	Did          Did
	Version      uint16
	Name         [32]byte
	MagicNumber  uint32
	BuildDate    uint32 // unix seconds, 0 if unknown
	BuildCommit  [20]byte
	Features     uint32
}

var identificationSection = Section{
	Name: "identification",
	Role: SectionReadOnly,
	Attributes: []Attribute{
		{Name: "did", Size: 1, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { return []byte{d.Identification.Did.Byte()} }},
		{Name: "version", Size: 2, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 2); writeLE16(b, d.Identification.Version); return b }},
		{Name: "name", Size: 32, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 32); copy(b, d.Identification.Name[:]); return b }},
		{Name: "magic_number", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Identification.MagicNumber); return b }},
		{Name: "build_date", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Identification.BuildDate); return b }},
		{Name: "build_commit", Size: 20, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 20); copy(b, d.Identification.BuildCommit[:]); return b }},
		{Name: "features", Size: 4, Role: RoleFlags{Readable: true, Class: ClassAll},
			Get: func(d *Device) []byte { b := make([]byte, 4); writeLE32(b, d.Identification.Features); return b }},
	},
}
