package stanzamodel

import "fmt"

// SchemaError reports a class-construction or registration violation: an
// ambiguous descriptor, a malformed TAG, or a duplicate tag registration.
// Raised eagerly, never during parsing (spec.md §7).
type SchemaError struct {
	Class  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("stanzamodel: schema error in %s: %s", e.Class, e.Reason)
}

// FormatError reports that a Codec's Parse could not interpret its input
// text, or that a tag string/tuple failed to normalize.
type FormatError struct {
	Value  string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stanzamodel: cannot parse %q: %s: %v", e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("stanzamodel: cannot parse %q: %s", e.Value, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports that a Validator rejected a value whose source bit
// was enabled in the descriptor's ValidateMode.
type ValidationError struct {
	Descriptor string
	Value      any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stanzamodel: invalid value for %s: %v", e.Descriptor, e.Value)
}

// UnexpectedChildError reports a child element the schema's policy marks
// FAIL for.
type UnexpectedChildError struct {
	Parent Tag
	Child  Tag
}

func (e *UnexpectedChildError) Error() string {
	return fmt.Sprintf("stanzamodel: unexpected child %s on %s", e.Child, e.Parent)
}

// UnexpectedAttributeError reports an attribute the schema's policy marks
// FAIL for.
type UnexpectedAttributeError struct {
	Parent Tag
	Attr   Tag
}

func (e *UnexpectedAttributeError) Error() string {
	return fmt.Sprintf("stanzamodel: unexpected attribute %s on %s", e.Attr, e.Parent)
}

// UnexpectedTextError reports character data received by a class with no
// Text descriptor.
type UnexpectedTextError struct {
	Parent Tag
}

func (e *UnexpectedTextError) Error() string {
	return fmt.Sprintf("stanzamodel: unexpected text on %s", e.Parent)
}

// MissingAttributeError reports a required Attr absent from the input.
type MissingAttributeError struct {
	Parent Tag
	Attr   Tag
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("stanzamodel: missing required attribute %s on %s", e.Attr, e.Parent)
}

// UnknownTopLevelTagError reports a dispatcher start-element whose tag is
// not registered. EventArgs carries the raw start-event (namespace, local,
// attrs) for inspection, per spec.md §6 S6.
type UnknownTopLevelTagError struct {
	EventArgs StartEvent
}

func (e *UnknownTopLevelTagError) Error() string {
	return fmt.Sprintf("stanzamodel: unhandled top-level element: %s",
		Tag{Namespace: e.EventArgs.Namespace, Local: e.EventArgs.Local})
}
