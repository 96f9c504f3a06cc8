// Package config declares the tree of immutable-after-compile
// configuration nodes described in spec §3: the input to the Preprocessor
// and ParserFactory compile passes.
package config

import "reflect"

// Format identifies a stream's on-wire layout.
type Format string

const (
	Delimited   Format = "delimited"
	FixedLength Format = "fixedlength"
	XML         Format = "xml"
	CSV         Format = "csv"
)

// Mode constrains which directions a stream (or a member within it) may be
// used.
type Mode string

const (
	Read      Mode = "read"
	Write     Mode = "write"
	ReadWrite Mode = "readwrite"
)

// Order is the record-group dispatch discipline (spec §4.6).
type Order string

const (
	Sequential Order = "sequential"
	Unordered  Order = "unordered"
)

// BeanSpec describes the Go type backing a Complex property and any
// accessor-name overrides for its members.
type BeanSpec struct {
	Type reflect.Type
	// GetterOverrides/SetterOverrides map member name -> explicit accessor
	// name, consumed by accessor.Options.
	GetterOverrides map[string]string
	SetterOverrides map[string]string
}

// FieldConfig is a scalar position within a record.
type FieldConfig struct {
	Name string

	// Position is the ordinal for delimited formats (0-based).
	Position int
	// Offset/Length are used for fixed-length formats.
	Offset int
	Length int
	// PadChar fills unused width in fixed-length output; default ' '.
	PadChar byte

	Required bool
	Default  string

	// MinOccurs/MaxOccurs > 1 bind this field as a repeating scalar
	// (property.Collection) spanning MaxOccurs consecutive positions,
	// rather than a single value (spec §8 scenario 1). Both default to 1.
	MinOccurs int
	MaxOccurs int

	MinLength int
	MaxLength int // 0 means unbounded
	Regex     string
	// Expr is an optional field-validation expression, evaluated after
	// the built-in length/regex validation (SPEC_FULL.md §2.1).
	Expr string

	TypeName    string
	HandlerName string

	// CtorArgIndex, if >= 0, binds this field as a constructor argument
	// instead of a setter.
	CtorArgIndex int

	Mode Mode

	// Identifier marks this field as participating in record dispatch
	// (literal/regex/expr matched against incoming text before Parse).
	Identifier      bool
	IdentifierRegex string

	GetterName string
	SetterName string
}

// SegmentConfig is a named bundle of fields/segments bound to a member.
type SegmentConfig struct {
	Name string

	Bean *BeanSpec // nil for a plain pass-through segment

	Collection bool // true: bound member is a Collection property
	IsMap      bool // true: bound member is a Map property
	ElemType   reflect.Type
	// MapKeyField names the child field supplying each entry's key, when
	// IsMap is true.
	MapKeyField string

	Fields   []*FieldConfig
	Segments []*SegmentConfig

	MinOccurs int
	MaxOccurs int // 0 means unbounded

	CtorArgIndex int
	Mode         Mode

	GetterName string
	SetterName string
}

// RecordConfig describes one record definition within a stream or group.
type RecordConfig struct {
	Name string

	Bean *BeanSpec

	Fields   []*FieldConfig
	Segments []*SegmentConfig

	MinOccurs int
	MaxOccurs int

	// IdentifierExpr is an optional third identification tier beyond the
	// literal/regex identifier fields declared on individual FieldConfigs
	// (SPEC_FULL.md §2.1).
	IdentifierExpr string

	Mode Mode
}

// GroupConfig is a record group: a pushdown recognizer over its declared
// children, sequential or unordered (spec §4.6).
type GroupConfig struct {
	Name string

	Order Order

	MinOccurs int
	MaxOccurs int

	Records []*RecordConfig
	Groups  []*GroupConfig

	// AllowUnexpectedRecords is copied onto the compiled group node. The
	// Reader does not consult it: whether an unidentifiable record is
	// skipped or raised is decided by StreamConfig.AllowUnexpectedRecords
	// alone.
	AllowUnexpectedRecords bool
}

// StreamConfig is the root configuration node for one Stream.
type StreamConfig struct {
	Name   string
	Format Format
	Mode   Mode

	Order   Order
	Records []*RecordConfig
	Groups  []*GroupConfig

	AllowUnexpectedRecords bool

	// NullEscaping is not read when the stream is compiled or run: no
	// escaping handler is registered or configured from it. \0 decoding is
	// governed by the NullEscaping field of handler.EscapingStringHandler.
	NullEscaping bool
	// AllowProtectedAccess mirrors allow-protected-property-access.
	AllowProtectedAccess bool
}
