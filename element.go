package stanzamodel

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Element is the engine's in-memory XML tree: the sink that descriptor
// Emit methods write into, and the verbatim subtree representation a
// Collector stores for children its owning class does not otherwise
// understand. It plays the role the teacher's pooled XMLElement plays for
// parsed trees, adapted here into a read/write builder used for
// serialization rather than XPath navigation.
type Element struct {
	Tag      Tag
	Attrs    []AttrValue
	Text     string
	Children []*Element

	// Prefix, when non-empty, is the preferred namespace prefix for this
	// element's own tag (spec.md §3's declare_prefix on ChildText/ChildTag),
	// used instead of a bare default-namespace xmlns declaration. It affects
	// only this element, not its children.
	Prefix string
}

var elementPool = sync.Pool{
	New: func() any { return &Element{} },
}

// NewElement returns a fresh, possibly pool-recycled Element for tag.
func NewElement(tag Tag) *Element {
	e := elementPool.Get().(*Element)
	e.Tag = tag
	return e
}

// Release returns e and its entire subtree to the pool. Callers that hold
// onto an Element returned by a Collector (or build one of their own)
// should not call Release until done with it; skipping Release just means
// the next NewElement allocates instead of reusing.
func (e *Element) Release() {
	for _, c := range e.Children {
		c.Release()
	}
	e.Tag = Tag{}
	e.Attrs = e.Attrs[:0]
	e.Text = ""
	e.Children = e.Children[:0]
	e.Prefix = ""
	elementPool.Put(e)
}

// NewChild appends a fresh child element named tag and returns it.
func (e *Element) NewChild(tag Tag) *Element {
	child := NewElement(tag)
	e.Children = append(e.Children, child)
	return child
}

// SetAttr sets (overwriting any previous value) the attribute named tag.
func (e *Element) SetAttr(tag Tag, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Tag == tag {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, AttrValue{Tag: tag, Value: value})
}

// SetText overwrites e's text content.
func (e *Element) SetText(s string) { e.Text = s }

// AppendText concatenates s onto e's existing text content; used while
// accumulating text chunks during Collector subtree construction, where a
// SAX source may deliver one element's character data in several events.
func (e *Element) AppendText(s string) { e.Text += s }

// AppendTree appends sub as a child verbatim — the Collector's
// re-serialization path, which reproduces a captured subtree byte-for-byte
// in shape without re-walking any schema.
func (e *Element) AppendTree(sub *Element) {
	e.Children = append(e.Children, sub)
}

// WriteXML serializes e and its subtree as well-formed XML onto w. Each
// element declares its own namespace via a bare xmlns attribute whenever its
// namespace differs from the inherited one (mirroring the incremental
// namespace-scoping an ElementTree-style writer performs), unless e.Prefix
// requests a prefixed declaration instead. Attributes carrying a namespace
// of their own (XML attributes never inherit the element's default
// namespace) get a generated prefix declared alongside them, since a raw
// namespace URI is never a legal XML prefix.
func (e *Element) WriteXML(w io.Writer) error {
	return e.writeXML(w, NoNamespace)
}

func (e *Element) writeXML(w io.Writer, inheritedNS string) error {
	var sb strings.Builder
	sb.WriteByte('<')
	if e.Prefix != "" && e.Tag.Namespace != NoNamespace {
		sb.WriteString(e.Prefix)
		sb.WriteByte(':')
	}
	sb.WriteString(e.Tag.Local)
	switch {
	case e.Prefix != "" && e.Tag.Namespace != NoNamespace:
		sb.WriteString(` xmlns:`)
		sb.WriteString(e.Prefix)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(e.Tag.Namespace))
		sb.WriteByte('"')
	case e.Tag.Namespace != inheritedNS:
		sb.WriteString(` xmlns="`)
		sb.WriteString(escapeAttr(e.Tag.Namespace))
		sb.WriteByte('"')
	}

	attrPrefixes := allocateAttrPrefixes(e.Attrs)
	for uri, prefix := range attrPrefixes {
		sb.WriteString(` xmlns:`)
		sb.WriteString(prefix)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(uri))
		sb.WriteByte('"')
	}
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		if prefix := attrPrefix(a.Tag.Namespace, attrPrefixes); prefix != "" {
			sb.WriteString(prefix)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Tag.Local)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteByte('"')
	}

	tagLabel := e.Tag.Local
	if e.Prefix != "" && e.Tag.Namespace != NoNamespace {
		tagLabel = e.Prefix + ":" + e.Tag.Local
	}

	if e.Text == "" && len(e.Children) == 0 {
		sb.WriteString("/>")
		_, err := io.WriteString(w, sb.String())
		return err
	}
	sb.WriteByte('>')
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	if e.Text != "" {
		if _, err := io.WriteString(w, escapeText(e.Text)); err != nil {
			return err
		}
	}
	// A prefixed element declares no default namespace, so its children
	// still inherit the default in scope around it.
	ns := inheritedNS
	if e.Tag.Namespace != inheritedNS && (e.Prefix == "" || e.Tag.Namespace == NoNamespace) {
		ns = e.Tag.Namespace
	}
	for _, child := range e.Children {
		if err := child.writeXML(w, ns); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "</%s>", tagLabel); err != nil {
		return err
	}
	return nil
}

// allocateAttrPrefixes assigns a synthetic "nsN" prefix to every distinct
// namespace used by a namespaced attribute in attrs, in first-seen order,
// skipping XMLNamespaceURI (which always uses the predefined "xml" prefix
// and needs no declaration). The returned map is keyed by namespace URI.
func allocateAttrPrefixes(attrs []AttrValue) map[string]string {
	var prefixes map[string]string
	n := 0
	for _, a := range attrs {
		uri := a.Tag.Namespace
		if uri == NoNamespace || uri == XMLNamespaceURI {
			continue
		}
		if prefixes == nil {
			prefixes = make(map[string]string)
		}
		if _, ok := prefixes[uri]; ok {
			continue
		}
		n++
		prefixes[uri] = fmt.Sprintf("ns%d", n)
	}
	return prefixes
}

func attrPrefix(uri string, allocated map[string]string) string {
	if uri == NoNamespace {
		return ""
	}
	if uri == XMLNamespaceURI {
		return "xml"
	}
	return allocated[uri]
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
