// Package parser implements the runtime parser tree: the textual side of a
// Stream (spec §3, §4.4). A parser node is bound to zero or one
// property.Component ("bound") or is unbound (structural groups, artificial
// segments). Field descriptors are format-specific (ordinal for delimited,
// offset+length for fixed-length).
package parser

import (
	"regexp"

	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/handler"
	"github.com/go-beanio/beanio/property"
)

type Kind int

const (
	Field Kind = iota
	Segment
	Record
	RecordGroup
	Stream
)

// FieldDescriptor locates a Field parser's text within a record token.
type FieldDescriptor struct {
	Position int // ordinal, delimited formats
	Offset   int // fixed-length formats
	Length   int
	PadChar  byte
	Required bool
	Default  string

	MinLength int
	MaxLength int
	Regex     *regexp.Regexp
	ValidateExpr Expr
}

// Identifier is the record-dispatch predicate attached to a Record parser
// (spec §4.6): literal, regex, or (enrichment, SPEC_FULL.md §2.1) a
// compiled expression, tried in that order of precedence.
type Identifier struct {
	FieldName string
	Literal   *string
	Regex     *regexp.Regexp
	Expr      Expr
}

// Expr is satisfied by a compiled github.com/expr-lang/expr program; kept
// as an interface here so this package does not need to import expr-lang
// directly (the compiler package owns compilation).
type Expr interface {
	Eval(env map[string]any) (any, error)
}

// Component is one node of the parser tree.
type Component struct {
	Kind     Kind
	Name     string
	Property *property.Component // nil when unbound

	Children []*Component
	Parent   *Component

	Field   *FieldDescriptor
	Handler handler.Handler

	MinOccurs int
	MaxOccurs int

	Order      config.Order
	Identifier *Identifier

	AllowUnexpectedRecords bool

	// MapKeyField names the child field supplying each entry's key, for a
	// Segment bound to a property.Map.
	MapKeyField string
}

func New(kind Kind, name string) *Component {
	return &Component{Kind: kind, Name: name, MinOccurs: 0, MaxOccurs: 1}
}

func (c *Component) AddChild(child *Component) {
	child.Parent = c
	c.Children = append(c.Children, child)
}

// Fields returns c's direct Field children, in declared order.
func (c *Component) Fields() []*Component {
	var out []*Component
	for _, ch := range c.Children {
		if ch.Kind == Field {
			out = append(out, ch)
		}
	}
	return out
}

// Records returns every Record parser reachable from c (recursing through
// Segment/RecordGroup/Stream nodes), in declared order. Used by the marshal
// driver (stream.Writer) to look up a Record definition by name; the
// unmarshal driver (stream.Reader) dispatches via a group-aware
// stream.groupCursor instead, since record identification must also honor
// each enclosing RecordGroup's declared Order and occurrence bounds.
func (c *Component) Records() []*Component {
	var out []*Component
	var walk func(*Component)
	walk = func(n *Component) {
		if n.Kind == Record {
			out = append(out, n)
			return
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(c)
	return out
}
