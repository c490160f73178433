package stanzamodel

import "github.com/wilkmaciej/stanzabind/stanzatype"

// Text is the scalar descriptor owning an element's concatenated character
// data. spec.md §3/§4.2.
type Text struct {
	Codec        stanzatype.Codec
	Default      any
	Validator    stanzatype.Validator
	ValidateMode ValidateMode
}

// NewText builds a Text descriptor. codec defaults to stanzatype.String{}.
func NewText(codec stanzatype.Codec, opts ...TextOption) *Text {
	if codec == nil {
		codec = stanzatype.String{}
	}
	t := &Text{Codec: codec, ValidateMode: ValidateFromRecv}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TextOption configures a Text at construction time.
type TextOption func(*Text)

func TextWithDefault(value any) TextOption { return func(t *Text) { t.Default = value } }
func TextWithValidator(v stanzatype.Validator, mode ValidateMode) TextOption {
	return func(t *Text) { t.Validator = v; t.ValidateMode = mode }
}

func (t *Text) Read(inst *Instance) any {
	if v, ok := inst.get(t); ok {
		return v
	}
	return t.Default
}

func (t *Text) Write(inst *Instance, value any, source ValueSource) error {
	if t.validates(source) && t.Validator != nil && !t.Validator.Validate(value) {
		return &ValidationError{Descriptor: "Text", Value: value}
	}
	inst.set(t, value)
	return nil
}

func (t *Text) validates(source ValueSource) bool {
	if source == SourceCode {
		return t.ValidateMode.FromCode()
	}
	return t.ValidateMode.FromRecv()
}

// feedValue parses the joined text buffer and writes it with SourceRecv.
func (t *Text) feedValue(inst *Instance, joined string) error {
	value, err := t.Codec.Parse(joined)
	if err != nil {
		return &FormatError{Value: joined, Reason: "element text", Err: err}
	}
	return t.Write(inst, value, SourceRecv)
}

// Emit writes the formatted text as character data, unless the stored value
// equals the null default.
func (t *Text) Emit(inst *Instance, el *Element) {
	value := t.Read(inst)
	if value == nil {
		return
	}
	el.SetText(t.Codec.Format(value))
}
