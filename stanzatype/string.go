package stanzatype

// String is the identity codec: XML text is the value, verbatim. It is the
// default codec for Text/Attr/ChildText descriptors that don't specify one.
type String struct{}

func (String) Parse(text string) (any, error) { return text, nil }
func (String) Format(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
