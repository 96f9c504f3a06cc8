package compiler

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/go-beanio/beanio/accessor"
	"github.com/go-beanio/beanio/beanfactory"
	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/errs"
	"github.com/go-beanio/beanio/handler"
	"github.com/go-beanio/beanio/parser"
	"github.com/go-beanio/beanio/property"
)

var stringType = reflect.TypeOf("")

// Factory is ParserFactory: it consumes a Preprocessor-validated
// config.StreamConfig and produces the root parser.Component, wiring a
// property.Component tree alongside it in lockstep (spec §4.5).
type Factory struct {
	Registry *handler.Registry
	Beans    *beanfactory.Factory
	Format   config.Format

	AllowProtectedAccess bool
}

// NewFactory builds a Factory for cfg using the given type-handler registry
// and bean constructor factory, both shared across every Stream compiled
// from the same configuration source.
func NewFactory(registry *handler.Registry, beans *beanfactory.Factory, cfg *config.StreamConfig) *Factory {
	return &Factory{
		Registry:             registry,
		Beans:                beans,
		Format:               cfg.Format,
		AllowProtectedAccess: cfg.AllowProtectedAccess,
	}
}

// Compile runs the second compile pass over cfg, which must already have
// been through config.Preprocess. The returned parser.Component is the
// Stream root.
func (cf *Factory) Compile(cfg *config.StreamConfig) (*parser.Component, error) {
	ctx := NewContext()

	root := parser.New(parser.Stream, cfg.Name)
	root.Order = cfg.Order
	root.AllowUnexpectedRecords = cfg.AllowUnexpectedRecords

	ctx.PushParser(root)
	ctx.PushUnbound()

	for _, rc := range cfg.Records {
		rp, err := cf.compileRecord(ctx, rc, nil)
		if err != nil {
			return nil, err
		}
		root.AddChild(rp)
	}
	for _, gc := range cfg.Groups {
		gp, err := cf.compileGroup(ctx, gc)
		if err != nil {
			return nil, err
		}
		root.AddChild(gp)
	}

	ctx.Pop()
	ctx.PopParser()

	if ctx.Depth() != 0 || ctx.ParserDepth() != 0 {
		return nil, fmt.Errorf("compiler: unbalanced stack after compiling stream %q", cfg.Name)
	}

	return root, nil
}

func (cf *Factory) compileGroup(ctx *Context, gc *config.GroupConfig) (*parser.Component, error) {
	gp := parser.New(parser.RecordGroup, gc.Name)
	gp.MinOccurs = gc.MinOccurs
	gp.MaxOccurs = gc.MaxOccurs
	gp.Order = gc.Order
	gp.AllowUnexpectedRecords = gc.AllowUnexpectedRecords

	ctx.PushParser(gp)
	ctx.PushUnbound()

	for _, rc := range gc.Records {
		rp, err := cf.compileRecord(ctx, rc, nil)
		if err != nil {
			return nil, err
		}
		gp.AddChild(rp)
	}
	for _, sub := range gc.Groups {
		sp, err := cf.compileGroup(ctx, sub)
		if err != nil {
			return nil, err
		}
		gp.AddChild(sp)
	}

	ctx.Pop()
	ctx.PopParser()
	return gp, nil
}

// compileRecord builds the Record parser node for rc. parentBean, when
// non-nil, is unused today (records are always top-level bean roots) but
// kept for symmetry with compileSegment's signature.
func (cf *Factory) compileRecord(ctx *Context, rc *config.RecordConfig, parentBean *property.Component) (*parser.Component, error) {
	rp := parser.New(parser.Record, rc.Name)
	rp.MinOccurs = rc.MinOccurs
	rp.MaxOccurs = rc.MaxOccurs

	var prop *property.Component
	if rc.Bean != nil {
		prop = property.New(property.Complex, rc.Name, rc.Bean.Type)
		ctx.PushBound(prop)
	} else {
		ctx.PushUnbound()
	}
	ctx.PushParser(rp)

	var identifierField *config.FieldConfig
	for _, fc := range rc.Fields {
		fp, err := cf.compileField(ctx, fc, prop, rc.Bean)
		if err != nil {
			return nil, err
		}
		rp.AddChild(fp)
		if fc.Identifier && identifierField == nil {
			identifierField = fc
		}
	}
	for _, sc := range rc.Segments {
		sp, err := cf.compileSegment(ctx, sc, prop)
		if err != nil {
			return nil, err
		}
		rp.AddChild(sp)
	}

	if identifierField != nil {
		id := &parser.Identifier{FieldName: identifierField.Name}
		if identifierField.IdentifierRegex != "" {
			re, err := regexp.Compile(identifierField.IdentifierRegex)
			if err != nil {
				return nil, &errs.ConfigurationError{Path: rc.Name, Msg: fmt.Sprintf("invalid identifier regex: %v", err)}
			}
			id.Regex = re
		} else if identifierField.Default != "" {
			lit := identifierField.Default
			id.Literal = &lit
		}
		rp.Identifier = id
	}
	if rc.IdentifierExpr != "" {
		expr, err := compileExpr(rc.IdentifierExpr)
		if err != nil {
			return nil, &errs.ConfigurationError{Path: rc.Name, Msg: fmt.Sprintf("invalid identifier expression: %v", err)}
		}
		if rp.Identifier == nil {
			rp.Identifier = &parser.Identifier{}
		}
		rp.Identifier.Expr = expr
	}

	ctx.PopParser()
	entry := ctx.Pop()
	if prop != nil {
		if err := property.UpdateConstructor(prop, cf.Beans); err != nil {
			return nil, &errs.ConfigurationError{Path: rc.Name, Msg: err.Error()}
		}
		rp.Property = prop
	} else if entry != nil && entry.Bound != nil {
		rp.Property = entry.Bound
	}

	return rp, nil
}

// compileSegment builds the Segment parser node for sc, bound as a child of
// parent (parent may be nil for a structural, unbound segment).
func (cf *Factory) compileSegment(ctx *Context, sc *config.SegmentConfig, parent *property.Component) (*parser.Component, error) {
	sp := parser.New(parser.Segment, sc.Name)
	sp.MinOccurs = sc.MinOccurs
	sp.MaxOccurs = sc.MaxOccurs
	sp.MapKeyField = sc.MapKeyField

	var prop *property.Component
	var bean *config.BeanSpec

	switch {
	case sc.Collection:
		elemType := sc.ElemType
		if elemType == nil {
			elemType = stringType
		}
		prop = property.New(property.Collection, sc.Name, reflect.SliceOf(elemType))
	case sc.IsMap:
		elemType := sc.ElemType
		if elemType == nil {
			elemType = stringType
		}
		prop = property.New(property.Map, sc.Name, reflect.MapOf(stringType, elemType))
	case sc.Bean != nil:
		prop = property.New(property.Complex, sc.Name, sc.Bean.Type)
		bean = sc.Bean
	default:
		prop = property.New(property.Complex, sc.Name, nil)
	}

	if parent != nil {
		opts := accessor.Options{GetterName: sc.GetterName, SetterName: sc.SetterName, AllowProtected: cf.AllowProtectedAccess}
		acc, err := accessor.Resolve(memberOwnerType(parent), sc.Name, opts)
		if err != nil {
			return nil, &errs.ConfigurationError{Path: sc.Name, Msg: err.Error()}
		}
		prop.Accessor = acc
		if prop.Type == nil {
			prop.Type = acc.Type()
		}
		prop.CtorArgIndex = sc.CtorArgIndex
		if err := parent.AddChild(prop); err != nil {
			return nil, &errs.ConfigurationError{Path: sc.Name, Msg: err.Error()}
		}
	}

	ctx.PushBound(prop)
	ctx.PushParser(sp)

	for _, fc := range sc.Fields {
		fp, err := cf.compileField(ctx, fc, prop, bean)
		if err != nil {
			return nil, err
		}
		sp.AddChild(fp)
	}
	for _, sub := range sc.Segments {
		subp, err := cf.compileSegment(ctx, sub, prop)
		if err != nil {
			return nil, err
		}
		sp.AddChild(subp)
	}

	ctx.PopParser()
	ctx.Pop()

	if prop.Kind == property.Complex {
		if err := property.UpdateConstructor(prop, cf.Beans); err != nil {
			return nil, &errs.ConfigurationError{Path: sc.Name, Msg: err.Error()}
		}
	}
	sp.Property = prop
	return sp, nil
}

// compileField builds the Field parser node for fc, resolving its accessor
// (when parent is bound), scalar type, type handler, and validation rules.
func (cf *Factory) compileField(ctx *Context, fc *config.FieldConfig, parent *property.Component, bean *config.BeanSpec) (*parser.Component, error) {
	fp := parser.New(parser.Field, fc.Name)
	fp.MinOccurs = fc.MinOccurs
	fp.MaxOccurs = fc.MaxOccurs

	var scalarType reflect.Type
	var prop *property.Component

	if parent != nil && parent.Kind != property.Simple {
		var opts accessor.Options
		opts.GetterName = fc.GetterName
		opts.SetterName = fc.SetterName
		opts.AllowProtected = cf.AllowProtectedAccess
		if bean != nil {
			if g, ok := bean.GetterOverrides[fc.Name]; ok && opts.GetterName == "" {
				opts.GetterName = g
			}
			if s, ok := bean.SetterOverrides[fc.Name]; ok && opts.SetterName == "" {
				opts.SetterName = s
			}
		}

		if ownerType := memberOwnerType(parent); ownerType != nil {
			acc, err := accessor.Resolve(ownerType, fc.Name, opts)
			if err != nil {
				return nil, &errs.ConfigurationError{Path: fc.Name, Msg: err.Error()}
			}
			accType := acc.Type()
			if fc.MaxOccurs > 1 {
				scalarType = elemOf(accType)
				prop = property.New(property.Collection, fc.Name, accType)
			} else {
				scalarType = accType
				prop = property.New(property.Simple, fc.Name, accType)
			}
			prop.Accessor = acc
		}
	}

	if prop == nil {
		if fc.TypeName != "" {
			if t, ok := handler.TypeByName(fc.TypeName); ok {
				scalarType = t
			}
		}
		if scalarType == nil {
			scalarType = stringType
		}
		kind := property.Simple
		if fc.MaxOccurs > 1 {
			kind = property.Collection
		}
		prop = property.New(kind, fc.Name, scalarType)
	}

	prop.CtorArgIndex = fc.CtorArgIndex

	if parent != nil && parent.Kind != property.Simple && prop.Accessor != nil {
		if err := parent.AddChild(prop); err != nil {
			return nil, &errs.ConfigurationError{Path: fc.Name, Msg: err.Error()}
		}
	}
	if fc.Identifier {
		prop.MarkIdentifier()
	}

	h, err := cf.Registry.MustResolve(scalarType, string(cf.Format), fc.HandlerName)
	if err != nil {
		return nil, &errs.ConfigurationError{Path: fc.Name, Msg: err.Error()}
	}
	fp.Handler = h

	desc := &parser.FieldDescriptor{
		Position:  fc.Position,
		Offset:    fc.Offset,
		Length:    fc.Length,
		PadChar:   fc.PadChar,
		Required:  fc.Required,
		Default:   fc.Default,
		MinLength: fc.MinLength,
		MaxLength: fc.MaxLength,
	}
	if fc.Regex != "" {
		re, err := regexp.Compile(fc.Regex)
		if err != nil {
			return nil, &errs.ConfigurationError{Path: fc.Name, Msg: fmt.Sprintf("invalid field regex: %v", err)}
		}
		desc.Regex = re
	}
	if fc.Expr != "" {
		expr, err := compileExpr(fc.Expr)
		if err != nil {
			return nil, &errs.ConfigurationError{Path: fc.Name, Msg: fmt.Sprintf("invalid validation expression: %v", err)}
		}
		desc.ValidateExpr = expr
	}
	fp.Field = desc
	fp.Property = prop

	return fp, nil
}

// memberOwnerType is the struct type that parent's direct Field/Segment
// children's accessors should be resolved against. For a Complex property
// this is simply parent.Type, but a Collection or Map property's own Type
// is the container (a slice or map) — each Field/Segment belongs to one
// *element* of that container, so accessor resolution must use the
// element type instead, or every member inside a repeating segment would
// fail to resolve against e.g. a []Item slice type.
func memberOwnerType(parent *property.Component) reflect.Type {
	if parent == nil {
		return nil
	}
	switch parent.Kind {
	case property.Collection:
		return elemOf(parent.Type)
	case property.Map:
		if parent.Type != nil && parent.Type.Kind() == reflect.Map {
			return parent.Type.Elem()
		}
		return parent.Type
	default:
		return parent.Type
	}
}

// elemOf returns t's element type when t is a slice or array, otherwise t
// itself (used when a repeating field (MaxOccurs > 1) is bound to a slice
// member: the handler resolves against the element type, not the slice).
func elemOf(t reflect.Type) reflect.Type {
	if t == nil {
		return t
	}
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		return t.Elem()
	}
	return t
}
