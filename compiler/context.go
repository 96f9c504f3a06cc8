// Package compiler implements the second compile pass, ParserFactory
// (spec §4.5): a single walk over the finalized (Preprocessor-validated)
// configuration tree that builds the parser tree and property tree in
// lockstep via two stacks, wiring accessors and selecting constructors as
// each Complex property is popped.
package compiler

import (
	"github.com/go-beanio/beanio/parser"
	"github.com/go-beanio/beanio/property"
)

// PropertyEntry is one slot of the property stack. Unbound is a distinct
// per-push value (not a shared singleton) so that two unbound scopes are
// never mistaken for the same sentinel by identity, per SPEC_FULL.md §4.
type PropertyEntry struct {
	Bound   *property.Component
	Unbound bool
}

// Context owns the two stacks maintained during the second compile pass.
// The parser stack depth always equals the count of currently-open parser
// scopes; the property stack is pushed/popped in lockstep and may hold
// Unbound entries where a parser scope binds no property. Recursive descent
// over the configuration tree still drives traversal (idiomatic Go), but
// both stacks are maintained explicitly here so the pairing invariant can
// be asserted rather than merely implied by call-stack nesting.
type Context struct {
	propertyStack []*PropertyEntry
	parserStack   []*parser.Component
}

func NewContext() *Context {
	return &Context{}
}

// PushParser opens a parser scope; it must be paired with a later PopParser
// once that scope's children have been finalized.
func (c *Context) PushParser(p *parser.Component) {
	c.parserStack = append(c.parserStack, p)
}

// PopParser closes the most recently opened parser scope.
func (c *Context) PopParser() *parser.Component {
	n := len(c.parserStack)
	if n == 0 {
		return nil
	}
	top := c.parserStack[n-1]
	c.parserStack = c.parserStack[:n-1]
	return top
}

// ParserDepth mirrors Depth for the parser stack, so callers can assert the
// two stacks are pushed/popped in lockstep.
func (c *Context) ParserDepth() int {
	return len(c.parserStack)
}

func (c *Context) PushBound(p *property.Component) {
	c.propertyStack = append(c.propertyStack, &PropertyEntry{Bound: p})
}

func (c *Context) PushUnbound() {
	c.propertyStack = append(c.propertyStack, &PropertyEntry{Unbound: true})
}

func (c *Context) Pop() *PropertyEntry {
	n := len(c.propertyStack)
	if n == 0 {
		return nil
	}
	top := c.propertyStack[n-1]
	c.propertyStack = c.propertyStack[:n-1]
	return top
}

// Top returns the current top-of-stack entry, or nil if empty.
func (c *Context) Top() *PropertyEntry {
	if len(c.propertyStack) == 0 {
		return nil
	}
	return c.propertyStack[len(c.propertyStack)-1]
}

// Depth reports the current stack depth, used by callers to assert the
// push/pop pairing invariant in tests.
func (c *Context) Depth() int {
	return len(c.propertyStack)
}
