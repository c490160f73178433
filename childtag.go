package stanzamodel

// ChildTag is a scalar descriptor recording the identity of a child element
// chosen from a closed set of tags, carrying no payload of its own.
// spec.md §3/§4.2.
type ChildTag struct {
	tags        map[Tag]struct{}
	AllowNone   bool
	Default     *Tag
	ChildPolicy UnknownChildPolicy
	AttrPolicy  UnknownAttrPolicy
	TextPolicy  UnknownTextPolicy

	// DeclarePrefix, if set, is the namespace prefix the emitted element
	// serializes under (spec.md §3's declare_prefix), instead of a bare
	// default-namespace xmlns declaration.
	DeclarePrefix string
}

// NewChildTag builds a ChildTag admitting any tag in tagStrings.
func NewChildTag(tagStrings []string, opts ...ChildTagOption) (*ChildTag, error) {
	tags := make(map[Tag]struct{}, len(tagStrings))
	for _, s := range tagStrings {
		t, err := NormalizeTagString(s)
		if err != nil {
			return nil, err
		}
		tags[t] = struct{}{}
	}
	ct := &ChildTag{
		tags:        tags,
		AllowNone:   true,
		ChildPolicy: UnknownChildFail,
		AttrPolicy:  UnknownAttrFail,
		TextPolicy:  UnknownTextFail,
	}
	for _, opt := range opts {
		opt(ct)
	}
	return ct, nil
}

type ChildTagOption func(*ChildTag)

func ChildTagWithDefault(t Tag) ChildTagOption {
	return func(c *ChildTag) { c.Default = &t }
}
func ChildTagDisallowNone() ChildTagOption { return func(c *ChildTag) { c.AllowNone = false } }
func ChildTagWithChildPolicy(p UnknownChildPolicy) ChildTagOption {
	return func(c *ChildTag) { c.ChildPolicy = p }
}
func ChildTagWithAttrPolicy(p UnknownAttrPolicy) ChildTagOption {
	return func(c *ChildTag) { c.AttrPolicy = p }
}
func ChildTagWithTextPolicy(p UnknownTextPolicy) ChildTagOption {
	return func(c *ChildTag) { c.TextPolicy = p }
}
func ChildTagWithDeclarePrefix(prefix string) ChildTagOption {
	return func(c *ChildTag) { c.DeclarePrefix = prefix }
}

func (c *ChildTag) Tags() []Tag {
	out := make([]Tag, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	return out
}

// Read returns the recorded tag, or the descriptor's Default if unset (nil
// unless ChildTagWithDefault was given).
func (c *ChildTag) Read(inst *Instance) *Tag {
	if v, ok := inst.get(c); ok {
		t := v.(Tag)
		return &t
	}
	return c.Default
}

// Write records t as the chosen tag. Writing nil fails if AllowNone is
// false.
func (c *ChildTag) Write(inst *Instance, t *Tag) error {
	if t == nil {
		if !c.AllowNone {
			return &SchemaError{Reason: "ChildTag does not allow None"}
		}
		delete(inst.props, c)
		return nil
	}
	inst.set(c, *t)
	return nil
}

// Emit creates an empty element with the recorded tag, unless unset.
func (c *ChildTag) Emit(inst *Instance, el *Element) {
	t := c.Read(inst)
	if t == nil {
		return
	}
	child := el.NewChild(*t)
	child.Prefix = c.DeclarePrefix
}
