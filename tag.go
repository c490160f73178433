package stanzamodel

import "strings"

// NoNamespace is the distinguished marker for a Tag that carries no
// namespace. It is the empty string, so a Tag built from the bare-string
// form "local" and one built from the two-component form
// (NoNamespace, "local") normalize to the same value.
const NoNamespace = ""

// XMLNamespaceURI is the namespace reserved for the "xml:" prefix (e.g.
// xml:lang, xml:space). It is predefined by the XML specification itself,
// so WriteXML never emits a declaration for it — "xml:" is always in scope.
const XMLNamespaceURI = "http://www.w3.org/XML/1998/namespace"

// Tag identifies an XML element or attribute as (namespace URI, local name).
// Two tags are equal iff both components are equal.
type Tag struct {
	Namespace string
	Local     string
}

// String renders the ElementTree boundary form: "{uri}local" when
// namespaced, "local" when not. See spec.md §4.1.
func (t Tag) String() string {
	if t.Namespace == NoNamespace {
		return t.Local
	}
	return "{" + t.Namespace + "}" + t.Local
}

// NormalizeTagString accepts either the ElementTree form "{uri}local" or the
// bare form "local" and returns the canonical Tag. It fails with a
// *FormatError on a malformed "uri}local" missing its leading brace, or on
// an empty local name.
func NormalizeTagString(s string) (Tag, error) {
	if s == "" {
		return Tag{}, &FormatError{Value: s, Reason: "tag must not be empty"}
	}
	if idx := strings.IndexByte(s, '}'); idx != -1 {
		if s[0] != '{' {
			return Tag{}, &FormatError{Value: s, Reason: "not a valid etree-format tag"}
		}
		namespace := s[1:idx]
		local := s[idx+1:]
		if local == "" {
			return Tag{}, &FormatError{Value: s, Reason: "tag local name must not be empty"}
		}
		return Tag{Namespace: namespace, Local: local}, nil
	}
	return Tag{Namespace: NoNamespace, Local: s}, nil
}

// NormalizeTagParts accepts a two-component (namespace, local) pair — the
// namespace may be NoNamespace — and validates it into a canonical Tag.
func NormalizeTagParts(namespace, local string) (Tag, error) {
	if local == "" {
		return Tag{}, &FormatError{Value: local, Reason: "tag local name must not be empty"}
	}
	return Tag{Namespace: namespace, Local: local}, nil
}

// Normalize is idempotent: normalizing an already-canonical Tag returns it
// unchanged (spec.md §8 P4). It exists so callers that pass a Tag through
// code expecting "anything tag-shaped" can call it uniformly alongside
// NormalizeTagString/NormalizeTagParts.
func Normalize(t Tag) (Tag, error) {
	return NormalizeTagParts(t.Namespace, t.Local)
}
