package metadata

// Snapshot is one immutable capture of a chain's types and pallets. All
// registries, pallets and params derive from exactly one snapshot and must
// be rebuilt, never patched, when the chain upgrades.
type Snapshot struct {
	Version     uint8
	Registry    *Registry
	Pallets     []PalletMeta
	Extrinsic   ExtrinsicMeta
	RuntimeType uint32

	// V15 additions; empty on V14 snapshots.
	APIs       []RuntimeAPI
	OuterEnums *OuterEnums
}

// PalletMeta is the raw decoded form of one pallet before call variants are
// resolved into Extrinsics.
type PalletMeta struct {
	Name      string
	Index     uint8
	Docs      []string
	CallType  *uint32
	EventType *uint32
	ErrorType *uint32
	Storage   *StorageMeta
	Constants []ConstantMeta
}

// StorageMeta describes one pallet's storage prefix and entries.
type StorageMeta struct {
	Prefix  string
	Entries []StorageEntry
}

// StorageModifier says whether a storage entry decodes to an Option or
// falls back to a default value.
type StorageModifier uint8

const (
	StorageOptional StorageModifier = iota
	StorageDefault
)

// StorageHasher enumerates the key hashers a storage map can declare.
type StorageHasher uint8

const (
	HasherBlake2_128 StorageHasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

// StorageEntry is one storage item. Plain is set for value entries; Map for
// keyed entries.
type StorageEntry struct {
	Name     string
	Modifier StorageModifier
	Plain    *uint32
	Map      *StorageMap
	Default  []byte
	Docs     []string
}

// StorageMap holds the hashers and key/value types of a map entry.
type StorageMap struct {
	Hashers []StorageHasher
	Key     uint32
	Value   uint32
}

// ConstantMeta is one pallet constant with its pre-encoded value.
type ConstantMeta struct {
	Name  string
	Type  uint32
	Value []byte
	Docs  []string
}

// SignedExtension is one entry of the extrinsic signed-extension pipeline.
type SignedExtension struct {
	Identifier       string
	Type             uint32
	AdditionalSigned uint32
}

// ExtrinsicMeta describes the chain's extrinsic format. The component type
// ids are only populated on V15 snapshots.
type ExtrinsicMeta struct {
	Version          uint8
	Type             uint32 // V14 only
	AddressType      uint32
	CallType         uint32
	SignatureType    uint32
	ExtraType        uint32
	SignedExtensions []SignedExtension
}

// RuntimeAPI is one runtime API trait exposed by a V15 snapshot.
type RuntimeAPI struct {
	Name    string
	Methods []RuntimeAPIMethod
	Docs    []string
}

// RuntimeAPIMethod is one method of a runtime API trait.
type RuntimeAPIMethod struct {
	Name   string
	Inputs []RuntimeAPIInput
	Output uint32
	Docs   []string
}

// RuntimeAPIInput is one named input of a runtime API method.
type RuntimeAPIInput struct {
	Name string
	Type uint32
}

// OuterEnums carries the V15 ids of the runtime's aggregate enums.
type OuterEnums struct {
	CallType  uint32
	EventType uint32
	ErrorType uint32
}
