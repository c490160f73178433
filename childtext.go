package stanzamodel

import "github.com/wilkmaciej/stanzabind/stanzatype"

// ChildText is a scalar descriptor mapping to the text content of exactly
// one named child element. spec.md §3/§4.2.
type ChildText struct {
	Tag          Tag
	Codec        stanzatype.Codec
	ChildPolicy  UnknownChildPolicy
	AttrPolicy   UnknownAttrPolicy
	Default      any
	Validator    stanzatype.Validator
	ValidateMode ValidateMode

	// DeclarePrefix, if set, is the namespace prefix the emitted child
	// element serializes under (spec.md §3's declare_prefix), instead of a
	// bare default-namespace xmlns declaration.
	DeclarePrefix string
}

// NewChildText builds a ChildText bound to the child element named by
// tagString.
func NewChildText(tagString string, codec stanzatype.Codec, opts ...ChildTextOption) (*ChildText, error) {
	tag, err := NormalizeTagString(tagString)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = stanzatype.String{}
	}
	ct := &ChildText{Tag: tag, Codec: codec, ChildPolicy: UnknownChildFail, AttrPolicy: UnknownAttrFail, ValidateMode: ValidateFromRecv}
	for _, opt := range opts {
		opt(ct)
	}
	return ct, nil
}

type ChildTextOption func(*ChildText)

func ChildTextWithDefault(value any) ChildTextOption { return func(c *ChildText) { c.Default = value } }
func ChildTextWithChildPolicy(p UnknownChildPolicy) ChildTextOption {
	return func(c *ChildText) { c.ChildPolicy = p }
}
func ChildTextWithAttrPolicy(p UnknownAttrPolicy) ChildTextOption {
	return func(c *ChildText) { c.AttrPolicy = p }
}
func ChildTextWithValidator(v stanzatype.Validator, mode ValidateMode) ChildTextOption {
	return func(c *ChildText) { c.Validator = v; c.ValidateMode = mode }
}
func ChildTextWithDeclarePrefix(prefix string) ChildTextOption {
	return func(c *ChildText) { c.DeclarePrefix = prefix }
}

func (c *ChildText) Tags() []Tag { return []Tag{c.Tag} }

func (c *ChildText) Read(inst *Instance) any {
	if v, ok := inst.get(c); ok {
		return v
	}
	return c.Default
}

// Write stores value on inst, applying the validator gate appropriate to
// source (CODE vs RECV). Returns a *ValidationError if rejected.
func (c *ChildText) Write(inst *Instance, value any, source ValueSource) error {
	if c.validates(source) && c.Validator != nil && !c.Validator.Validate(value) {
		return &ValidationError{Descriptor: "ChildText(" + c.Tag.String() + ")", Value: value}
	}
	inst.set(c, value)
	return nil
}

func (c *ChildText) validates(source ValueSource) bool {
	if source == SourceCode {
		return c.ValidateMode.FromCode()
	}
	return c.ValidateMode.FromRecv()
}

func (c *ChildText) feedValue(inst *Instance, joined string) error {
	value, err := c.Codec.Parse(joined)
	if err != nil {
		return &FormatError{Value: joined, Reason: "text of child " + c.Tag.String(), Err: err}
	}
	return c.Write(inst, value, SourceRecv)
}

// Emit creates a child element at el with this descriptor's tag, whose text
// is the formatted stored value, unless the value is the null default.
func (c *ChildText) Emit(inst *Instance, el *Element) {
	value := c.Read(inst)
	if value == nil {
		return
	}
	child := el.NewChild(c.Tag)
	child.Prefix = c.DeclarePrefix
	child.SetText(c.Codec.Format(value))
}
