package stanzamodel

import "github.com/wilkmaciej/stanzabind/stanzatype"

// Attr is a scalar descriptor owning one XML attribute. spec.md §3/§4.2.
type Attr struct {
	Tag          Tag
	Codec        stanzatype.Codec
	Default      any
	Required     bool
	Validator    stanzatype.Validator
	ValidateMode ValidateMode
}

// NewAttr builds an Attr bound to the attribute named by tag (normalized via
// NormalizeTagString) using codec for conversion. codec defaults to
// stanzatype.String{} if nil.
func NewAttr(tagString string, codec stanzatype.Codec, opts ...AttrOption) (*Attr, error) {
	tag, err := NormalizeTagString(tagString)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = stanzatype.String{}
	}
	a := &Attr{Tag: tag, Codec: codec, ValidateMode: ValidateFromRecv}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AttrOption configures an Attr at construction time.
type AttrOption func(*Attr)

func WithDefault(value any) AttrOption       { return func(a *Attr) { a.Default = value } }
func WithRequired() AttrOption                { return func(a *Attr) { a.Required = true } }
func WithValidator(v stanzatype.Validator, mode ValidateMode) AttrOption {
	return func(a *Attr) { a.Validator = v; a.ValidateMode = mode }
}

// Read returns the stored value, or the descriptor's default if unset.
func (a *Attr) Read(inst *Instance) any {
	if v, ok := inst.get(a); ok {
		return v
	}
	return a.Default
}

// Write stores value on inst, applying the validator gate appropriate to
// source (CODE vs RECV). Returns a *ValidationError if rejected.
func (a *Attr) Write(inst *Instance, value any, source ValueSource) error {
	if a.validates(source) && a.Validator != nil && !a.Validator.Validate(value) {
		return &ValidationError{Descriptor: "Attr(" + a.Tag.String() + ")", Value: value}
	}
	inst.set(a, value)
	return nil
}

func (a *Attr) validates(source ValueSource) bool {
	if source == SourceCode {
		return a.ValidateMode.FromCode()
	}
	return a.ValidateMode.FromRecv()
}

// feedValue parses the raw attribute text and writes it with SourceRecv,
// called by the unit-parser per spec.md §4.5 step 2.
func (a *Attr) feedValue(inst *Instance, text string) error {
	value, err := a.Codec.Parse(text)
	if err != nil {
		return &FormatError{Value: text, Reason: "attribute " + a.Tag.String(), Err: err}
	}
	return a.Write(inst, value, SourceRecv)
}

// Emit writes the formatted attribute onto the serialization sink's element
// builder, unless the stored value equals the null default.
func (a *Attr) Emit(inst *Instance, el *Element) {
	value := a.Read(inst)
	if value == nil {
		return
	}
	el.SetAttr(a.Tag, a.Codec.Format(value))
}
