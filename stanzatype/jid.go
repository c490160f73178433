package stanzatype

import "strings"

// JID is a composite value of the form node@domain/resource, with node and
// resource optional — the address format XMPP entities are identified by
// (RFC 6122). It is the canonical example of a composite codec value: the
// 'to'/'from' attributes of stanzas bind to this type.
type JID struct {
	Node     string
	Domain   string
	Resource string
}

func (j JID) String() string {
	var sb strings.Builder
	if j.Node != "" {
		sb.WriteString(j.Node)
		sb.WriteByte('@')
	}
	sb.WriteString(j.Domain)
	if j.Resource != "" {
		sb.WriteByte('/')
		sb.WriteString(j.Resource)
	}
	return sb.String()
}

// JIDCodec parses/formats the JID composite type.
type JIDCodec struct{}

func (JIDCodec) Parse(text string) (any, error) {
	rest := text
	var node, resource string

	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		resource = rest[idx+1:]
		rest = rest[:idx]
	}
	if idx := strings.IndexByte(rest, '@'); idx != -1 {
		node = rest[:idx]
		rest = rest[idx+1:]
	}
	if rest == "" {
		return nil, &FormatError{Value: text, Reason: "JID must have a domain part"}
	}
	return JID{Node: node, Domain: rest, Resource: resource}, nil
}

func (JIDCodec) Format(value any) string {
	j, ok := value.(JID)
	if !ok {
		return ""
	}
	return j.String()
}
