package stanzamodel

import "fmt"

// childDescriptor is the common shape of every descriptor kind that can
// claim one or more child tags on a class: Child, ChildList, ChildText,
// ChildTag, ChildMap. class.go uses this to walk a class's declared
// properties uniformly when building its dispatch tables.
type childDescriptor interface {
	Tags() []Tag
}

// Class is the compiled schema for one stanza class: a TAG (optional — a
// class can be inner-only, dispatched solely as someone else's child), plus
// the four lookup tables spec.md §4.3 requires (ATTR_MAP, CHILD_MAP,
// TEXT_PROPERTY, COLLECTOR_PROPERTY). It is built once, by ClassBuilder, and
// is not modified thereafter: RegisterChild (spec.md §4.4) extends a
// descriptor's dispatch table, not any Class's ChildMap.
type Class struct {
	Name  string
	Tag   Tag
	HasTag bool

	UnknownChildPolicy UnknownChildPolicy
	UnknownAttrPolicy  UnknownAttrPolicy
	UnknownTextPolicy  UnknownTextPolicy

	AttrMap map[Tag]*Attr

	// ChildMap indexes every child-bearing descriptor (Child, ChildList,
	// ChildText, ChildTag, or *ChildMap descriptor) by the tags it claims.
	// Distinct from the ChildMap descriptor type in childmap.go — this is
	// the schema's internal dispatch table, spec.md's CHILD_MAP.
	ChildMap map[Tag]childDescriptor

	// ChildProps lists every child-bearing descriptor once, in declaration
	// order, for serialization (spec.md §4.8 walks properties, not tags).
	ChildProps []childDescriptor

	TextProperty      *Text
	CollectorProperty *Collector

	// ErrorHandler, if set, observes a ValidationError, FormatError, or
	// unexpected-child failure raised while parsing an instance of this
	// class: it is called with the offending descriptor (nil for an
	// unexpected child of the class's own element, since no descriptor
	// claims the tag; the ChildText or ChildTag descriptor for an unexpected
	// child inside its element), the raw value or raw event that triggered
	// the failure, and the error
	// itself, before that error propagates. It never recovers — parsing
	// still fails — its only role is observation (spec.md §4.5/§7).
	ErrorHandler func(descriptor any, rawArgs any, err error)
}

// reportError invokes c.ErrorHandler, if set, then returns err unchanged so
// call sites can wrap their return statement with it.
func (c *Class) reportError(descriptor any, rawArgs any, err error) error {
	if err != nil && c.ErrorHandler != nil {
		c.ErrorHandler(descriptor, rawArgs, err)
	}
	return err
}

// ClassBuilder incrementally assembles a Class, checking spec.md §4.3's
// invariants (I1-I5) as each descriptor is added rather than only at the
// end, so a violation's SchemaError names the offending descriptor.
type ClassBuilder struct {
	class  *Class
	sealed bool
}

// NewClassBuilder starts building a class named name. tagString may be ""
// for an inner-only class with no TAG of its own (I5 requires a
// well-formed, non-empty TAG only when one is declared).
func NewClassBuilder(name string, tagString string) (*ClassBuilder, error) {
	c := &Class{
		Name:               name,
		UnknownChildPolicy: UnknownChildFail,
		UnknownAttrPolicy:  UnknownAttrFail,
		UnknownTextPolicy:  UnknownTextFail,
		AttrMap:            make(map[Tag]*Attr),
		ChildMap:           make(map[Tag]childDescriptor),
	}
	if tagString != "" {
		tag, err := NormalizeTagString(tagString)
		if err != nil {
			return nil, fmt.Errorf("stanzamodel: class %s: %w", name, err)
		}
		c.Tag = tag
		c.HasTag = true
	}
	return &ClassBuilder{class: c}, nil
}

// WithUnknownChildPolicy sets the class's reaction to an unplaceable child.
func (b *ClassBuilder) WithUnknownChildPolicy(p UnknownChildPolicy) *ClassBuilder {
	b.class.UnknownChildPolicy = p
	return b
}

// WithUnknownAttrPolicy sets the class's reaction to an unplaceable
// attribute.
func (b *ClassBuilder) WithUnknownAttrPolicy(p UnknownAttrPolicy) *ClassBuilder {
	b.class.UnknownAttrPolicy = p
	return b
}

// WithUnknownTextPolicy sets the class's reaction to unplaceable character
// data.
func (b *ClassBuilder) WithUnknownTextPolicy(p UnknownTextPolicy) *ClassBuilder {
	b.class.UnknownTextPolicy = p
	return b
}

// WithErrorHandler installs the class's observational error hook (spec.md
// §4.5); see Class.ErrorHandler.
func (b *ClassBuilder) WithErrorHandler(h func(descriptor any, rawArgs any, err error)) *ClassBuilder {
	b.class.ErrorHandler = h
	return b
}

// AddAttr registers an Attr descriptor. Fails (I2) if a *distinct* Attr
// already claims the same tag; re-adding the same descriptor (e.g. via two
// Inherit calls that both reach it through a common ancestor) is a no-op.
func (b *ClassBuilder) AddAttr(a *Attr) error {
	if existing, ok := b.class.AttrMap[a.Tag]; ok && existing != a {
		return &SchemaError{
			Class:  b.class.Name,
			Reason: fmt.Sprintf("two Attr descriptors share attribute tag %s (existing codec %T, new %T)", a.Tag, existing.Codec, a.Codec),
		}
	}
	b.class.AttrMap[a.Tag] = a
	return nil
}

// AddText registers the class's Text descriptor. Fails (I1) if the class
// already has a distinct Text property; re-adding the same Text descriptor
// the class already has (inherited through multiple paths) is a no-op. A
// class may have both a Text and a Collector property.
func (b *ClassBuilder) AddText(t *Text) error {
	if b.class.TextProperty == t {
		return nil
	}
	if b.class.TextProperty != nil {
		return &SchemaError{Class: b.class.Name, Reason: "class already has a Text property"}
	}
	b.class.TextProperty = t
	return nil
}

// AddCollector registers the class's Collector descriptor. Fails (I1) if the
// class already has a distinct Collector property; re-adding the same
// Collector descriptor the class already has is a no-op.
func (b *ClassBuilder) AddCollector(c *Collector) error {
	if b.class.CollectorProperty == c {
		return nil
	}
	if b.class.CollectorProperty != nil {
		return &SchemaError{Class: b.class.Name, Reason: "class already has a Collector property"}
	}
	b.class.CollectorProperty = c
	return nil
}

// addChildTags claims every tag in tags for descriptor desc, failing (I3) if
// any is already claimed by a different child-bearing descriptor.
func (b *ClassBuilder) addChildTags(desc childDescriptor, tags []Tag) error {
	for _, t := range tags {
		if existing, ok := b.class.ChildMap[t]; ok && existing != desc {
			return &SchemaError{
				Class:  b.class.Name,
				Reason: fmt.Sprintf("two child-bearing descriptors share child tag %s", t),
			}
		}
	}
	for _, t := range tags {
		b.class.ChildMap[t] = desc
	}
	return nil
}

// AddChild registers a Child descriptor, claiming every tag of every class
// it admits.
func (b *ClassBuilder) AddChild(c *Child) error {
	if err := b.addChildTags(c, c.Tags()); err != nil {
		return err
	}
	b.class.ChildProps = append(b.class.ChildProps, c)
	return nil
}

// AddChildList registers a ChildList descriptor.
func (b *ClassBuilder) AddChildList(c *ChildList) error {
	if err := b.addChildTags(c, c.Tags()); err != nil {
		return err
	}
	b.class.ChildProps = append(b.class.ChildProps, c)
	return nil
}

// AddChildText registers a ChildText descriptor.
func (b *ClassBuilder) AddChildText(c *ChildText) error {
	if err := b.addChildTags(c, c.Tags()); err != nil {
		return err
	}
	b.class.ChildProps = append(b.class.ChildProps, c)
	return nil
}

// AddChildTag registers a ChildTag descriptor.
func (b *ClassBuilder) AddChildTag(c *ChildTag) error {
	if err := b.addChildTags(c, c.Tags()); err != nil {
		return err
	}
	b.class.ChildProps = append(b.class.ChildProps, c)
	return nil
}

// AddChildMap registers a ChildMap descriptor.
func (b *ClassBuilder) AddChildMap(c *ChildMap) error {
	if err := b.addChildTags(c, c.Tags()); err != nil {
		return err
	}
	b.class.ChildProps = append(b.class.ChildProps, c)
	return nil
}

// Inherit copies a base class's attribute, child, text and collector tables
// into the class under construction, the way a Go embedding of a base
// StanzaClass would. Fails under the same invariants as the direct Add*
// methods if the base's tables collide with what has already been added.
func (b *ClassBuilder) Inherit(base *Class) error {
	for _, a := range base.AttrMap {
		if err := b.AddAttr(a); err != nil {
			return fmt.Errorf("inheriting from %s: %w", base.Name, err)
		}
	}
	if base.TextProperty != nil {
		if err := b.AddText(base.TextProperty); err != nil {
			return fmt.Errorf("inheriting from %s: %w", base.Name, err)
		}
	}
	if base.CollectorProperty != nil {
		if err := b.AddCollector(base.CollectorProperty); err != nil {
			return fmt.Errorf("inheriting from %s: %w", base.Name, err)
		}
	}
	for _, desc := range base.ChildProps {
		if err := b.addChildTags(desc, desc.Tags()); err != nil {
			return fmt.Errorf("inheriting from %s: %w", base.Name, err)
		}
		listed := false
		for _, p := range b.class.ChildProps {
			if p == desc {
				listed = true
				break
			}
		}
		if !listed {
			b.class.ChildProps = append(b.class.ChildProps, desc)
		}
	}
	return nil
}

// Build finalizes the class. The returned Class is safe to share across
// goroutines for reading (neither parsing nor RegisterChild mutates it).
func (b *ClassBuilder) Build() *Class {
	b.sealed = true
	return b.class
}

// RegisterChild adds cls as an admissible alternative on an existing Child
// descriptor, claiming cls's TAG in the descriptor's own dispatch table.
// This is spec.md §4.4's late-registration hook. It updates no Class: a
// class built before this call, including the one the descriptor was first
// added to, keeps its old ChildMap and does not route cls's TAG to the
// descriptor; a class built afterward picks the new TAG up through Tags().
func (c *Child) RegisterChild(cls *Class) error { return c.dispatch.register(cls) }

// RegisterChild adds cls as an admissible alternative on an existing
// ChildList descriptor, claiming cls's TAG.
func (c *ChildList) RegisterChild(cls *Class) error { return c.dispatch.register(cls) }

// RegisterChild adds cls as an admissible alternative on an existing
// ChildMap descriptor, claiming cls's TAG.
func (c *ChildMap) RegisterChild(cls *Class) error { return c.dispatch.register(cls) }
