// Package property implements the runtime property tree: the in-memory
// side of a Stream, as described in spec §3/§4.4. A property is bound when
// its parent in the compiler's property stack is a non-Simple property;
// Complex parents aggregate named members, Collection parents aggregate
// ordered elements, and Map parents aggregate keyed entries. A Simple
// property can never have children.
package property

import (
	"fmt"
	"reflect"

	"github.com/go-beanio/beanio/accessor"
	"github.com/go-beanio/beanio/beanfactory"
)

type Kind int

const (
	Simple Kind = iota
	Complex
	Collection
	Map
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Complex:
		return "complex"
	case Collection:
		return "collection"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Component is one node of the property tree.
type Component struct {
	Kind     Kind
	Name     string
	Type     reflect.Type
	Accessor accessor.Accessor

	// IsIdentifier marks this property (or, once marked, any of its
	// ancestors) as participating in record identification.
	IsIdentifier bool

	Parent   *Component
	Children []*Component

	// CtorArgIndex is >= 0 when this property is bound as a constructor
	// argument rather than a setter-bound member.
	CtorArgIndex int

	// Constructor is resolved by UpdateConstructor once all constructor-
	// argument children are known; nil means "use the zero value".
	Constructor *beanfactory.Constructor
	ctorMatched []bool
}

// New creates a detached property node. Binding into a parent happens via
// AddChild, mirroring the compiler's push/pop discipline (spec §4.5).
func New(kind Kind, name string, typ reflect.Type) *Component {
	return &Component{Kind: kind, Name: name, Type: typ, CtorArgIndex: -1}
}

// AddChild appends child to p's children and sets its Parent, enforcing
// that Simple properties never acquire children.
func (p *Component) AddChild(child *Component) error {
	if p.Kind == Simple {
		return fmt.Errorf("property: cannot add child %q to simple property %q", child.Name, p.Name)
	}
	child.Parent = p
	p.Children = append(p.Children, child)
	return nil
}

// MarkIdentifier sets IsIdentifier on p and propagates it to every
// enclosing property, per the identifier-propagation invariant (spec §4.4,
// §8).
func (p *Component) MarkIdentifier() {
	for cur := p; cur != nil && !cur.IsIdentifier; cur = cur.Parent {
		cur.IsIdentifier = true
	}
}

// UpdateConstructor sorts p's constructor-argument children by CtorArgIndex,
// verifies contiguity 0..N-1, and selects the best-matching constructor
// from factory for p's bean type (spec §4.3, §4.5). It is invoked when the
// compiler pops a Complex property off the property stack.
func UpdateConstructor(p *Component, factory *beanfactory.Factory) error {
	if p.Kind != Complex {
		return nil
	}
	var args []*Component
	for _, c := range p.Children {
		if c.CtorArgIndex >= 0 {
			args = append(args, c)
		}
	}
	if len(args) == 0 {
		return nil
	}
	for i := range args {
		for j := i + 1; j < len(args); j++ {
			if args[j].CtorArgIndex < args[i].CtorArgIndex {
				args[i], args[j] = args[j], args[i]
			}
		}
	}
	for i, a := range args {
		if a.CtorArgIndex != i {
			return fmt.Errorf("property: constructor-argument indices on %q are not contiguous 0..%d", p.Name, len(args)-1)
		}
	}
	childTypes := make([]reflect.Type, len(args))
	for i, a := range args {
		childTypes[i] = a.Type
	}
	sel := beanfactory.Select(factory, p.Type, childTypes)
	p.ctorMatched = sel.Matched
	if sel.Constructor != nil {
		p.Constructor = sel.Constructor
	}
	return nil
}

// ConstructorArgs returns p's children ordered by CtorArgIndex (those that
// are constructor arguments), for use by the runtime when instantiating p.
func (p *Component) ConstructorArgs() []*Component {
	var args []*Component
	for _, c := range p.Children {
		if c.CtorArgIndex >= 0 {
			args = append(args, c)
		}
	}
	for i := range args {
		for j := i + 1; j < len(args); j++ {
			if args[j].CtorArgIndex < args[i].CtorArgIndex {
				args[i], args[j] = args[j], args[i]
			}
		}
	}
	return args
}

// SetterArgs returns p's children that are bound via accessor rather than
// constructor argument.
func (p *Component) SetterArgs() []*Component {
	var out []*Component
	for _, c := range p.Children {
		if c.CtorArgIndex < 0 {
			out = append(out, c)
		}
	}
	return out
}
