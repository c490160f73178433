package stanzamodel

import (
	"bytes"
	"io"
	"strings"

	"github.com/orisano/gosax"
)

// SAXDriver turns a gosax token stream into the engine's internal Event
// sequence: ("start", ns, local, attrs), ("text", chunk), ("end"). gosax
// hands back raw element names and an unparsed attribute byte-run per
// start-tag; namespace resolution (xmlns bookkeeping, prefix lookup for
// element and attribute names) is ported from the teacher's
// `extractNamespaces`/`handleStartElement`, adapted from building a pooled
// XMLElement tree to emitting a flat event per gosax token instead.
type SAXDriver struct {
	r       *gosax.Reader
	nsStack []map[string]string
	pending []Event
}

// NewSAXDriver wraps reader in a gosax tokenizer sized the way the teacher
// sizes its own streaming reader.
func NewSAXDriver(reader io.Reader) *SAXDriver {
	return &SAXDriver{r: gosax.NewReaderSize(reader, 1024*1024)}
}

// Next returns the next Event. ok is false at end of input; err is non-nil
// only on a malformed document.
func (d *SAXDriver) Next() (ev Event, ok bool, err error) {
	if len(d.pending) > 0 {
		ev, d.pending = d.pending[0], d.pending[1:]
		return ev, true, nil
	}
	for {
		e, err := d.r.Event()
		if err != nil {
			return Event{}, false, err
		}
		switch e.Type() {
		case gosax.EventEOF:
			return Event{}, false, nil
		case gosax.EventStart:
			name, attrs := gosax.Name(e.Bytes)
			start, end, hasEnd := d.buildStart(name, attrs, e.Bytes)
			if hasEnd {
				d.pending = append(d.pending, end)
			}
			return start, true, nil
		case gosax.EventEnd:
			d.popNamespaces()
			return Event{Kind: EventEnd}, true, nil
		case gosax.EventText:
			if len(e.Bytes) == 0 {
				continue
			}
			return Event{Kind: EventText, Text: unescapeXML(string(e.Bytes))}, true, nil
		case gosax.EventCData:
			content := stripCData(e.Bytes)
			if content == "" {
				continue
			}
			return Event{Kind: EventText, Text: content}, true, nil
		case gosax.EventComment:
			continue
		default:
			continue
		}
	}
}

func (d *SAXDriver) buildStart(name, attrs, fullTag []byte) (start Event, end Event, hasEnd bool) {
	nameStr := string(name)
	prefix, local := splitPrefix(nameStr)

	var declared map[string]string
	if len(attrs) > 0 && bytes.Contains(attrs, []byte("xmlns")) {
		declared = extractNamespaces(attrs)
	}
	var parentNS map[string]string
	if len(d.nsStack) > 0 {
		parentNS = d.nsStack[len(d.nsStack)-1]
	}
	nsContext := mergeNamespaces(parentNS, declared)

	namespaceURI := NoNamespace
	if nsContext != nil {
		if prefix != "" {
			namespaceURI = nsContext[prefix]
		} else {
			namespaceURI = nsContext[""]
		}
	}

	rawAttrs := parseRawAttributes(attrs)
	values := make([]AttrValue, 0, len(rawAttrs))
	for _, ra := range rawAttrs {
		if ra.Name == "xmlns" || strings.HasPrefix(ra.Name, "xmlns:") {
			continue
		}
		aprefix, alocal := splitPrefix(ra.Name)
		ans := NoNamespace
		if aprefix != "" && nsContext != nil {
			ans = nsContext[aprefix]
		}
		values = append(values, AttrValue{Tag: Tag{Namespace: ans, Local: alocal}, Value: unescapeXML(ra.Value)})
	}

	d.nsStack = append(d.nsStack, nsContext)

	startEv := Event{Kind: EventStart, Start: StartEvent{Namespace: namespaceURI, Local: local, Attrs: values}}

	isSelfClosing := len(fullTag) >= 2 && fullTag[len(fullTag)-2] == '/' && fullTag[len(fullTag)-1] == '>'
	if isSelfClosing {
		d.popNamespaces()
		return startEv, Event{Kind: EventEnd}, true
	}
	return startEv, Event{}, false
}

func (d *SAXDriver) popNamespaces() {
	if len(d.nsStack) > 0 {
		d.nsStack = d.nsStack[:len(d.nsStack)-1]
	}
}

func splitPrefix(name string) (prefix, local string) {
	if idx := strings.IndexByte(name, ':'); idx != -1 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

func mergeNamespaces(parent, declared map[string]string) map[string]string {
	if len(declared) == 0 {
		return parent
	}
	merged := make(map[string]string, len(parent)+len(declared))
	for k, v := range parent {
		merged[k] = v
	}
	for k, v := range declared {
		merged[k] = v
	}
	return merged
}

type rawAttr struct {
	Name  string
	Value string
}

// parseRawAttributes splits a gosax attribute byte-run into name/value
// pairs, ported from the teacher's inline attribute scanner.
func parseRawAttributes(attrs []byte) []rawAttr {
	if len(attrs) == 0 {
		return nil
	}
	var out []rawAttr
	i := 0
	for i < len(attrs) {
		for i < len(attrs) && isSpace(attrs[i]) {
			i++
		}
		if i >= len(attrs) {
			break
		}
		nameStart := i
		for i < len(attrs) && attrs[i] != '=' {
			i++
		}
		if i >= len(attrs) {
			break
		}
		name := string(bytes.TrimSpace(attrs[nameStart:i]))
		i++
		for i < len(attrs) && (attrs[i] == ' ' || attrs[i] == '\t') {
			i++
		}
		if i >= len(attrs) {
			break
		}
		quote := attrs[i]
		if quote != '"' && quote != '\'' {
			break
		}
		i++
		valueStart := i
		for i < len(attrs) && attrs[i] != quote {
			i++
		}
		value := string(attrs[valueStart:i])
		i++
		out = append(out, rawAttr{Name: name, Value: value})
	}
	return out
}

// extractNamespaces scans a gosax attribute byte-run for xmlns / xmlns:*
// declarations.
func extractNamespaces(attrs []byte) map[string]string {
	var namespaces map[string]string
	for _, ra := range parseRawAttributes(attrs) {
		switch {
		case ra.Name == "xmlns":
			if namespaces == nil {
				namespaces = make(map[string]string, 2)
			}
			namespaces[""] = ra.Value
		case strings.HasPrefix(ra.Name, "xmlns:"):
			if namespaces == nil {
				namespaces = make(map[string]string, 2)
			}
			namespaces[ra.Name[len("xmlns:"):]] = ra.Value
		}
	}
	return namespaces
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func stripCData(content []byte) string {
	const prefix, suffix = "<![CDATA[", "]]>"
	if len(content) < len(prefix)+len(suffix) {
		return ""
	}
	return string(content[len(prefix) : len(content)-len(suffix)])
}

var xmlEntityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return xmlEntityReplacer.Replace(s)
}
