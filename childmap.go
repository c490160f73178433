package stanzamodel

// ChildMap groups heterogeneous children by their own TAG into Tag →
// ordered sequence. Ordering within each sequence is insertion order;
// ordering across tags for serialization follows first-seen tag order
// (spec.md §4.2/§9 Open Questions — this is the stable ordering this
// implementation chooses and documents, per the Open Question on ChildMap
// iteration order).
type ChildMap struct {
	dispatch *childDispatch
}

// NewChildMap builds a ChildMap admitting any of classes, keyed by their
// TAG.
func NewChildMap(classes []*Class) (*ChildMap, error) {
	d, err := newChildDispatch(classes)
	if err != nil {
		return nil, err
	}
	return &ChildMap{dispatch: d}, nil
}

func (c *ChildMap) Tags() []Tag { return c.dispatch.Tags() }

type childMapValue struct {
	order []Tag
	byTag map[Tag][]*Instance
}

// Read returns the grouped children, materializing an empty mapping on
// first access.
func (c *ChildMap) Read(inst *Instance) map[Tag][]*Instance {
	v := c.value(inst)
	return v.byTag
}

// Order returns the tags in first-seen order, for callers that want a
// deterministic walk of Read()'s map.
func (c *ChildMap) Order(inst *Instance) []Tag {
	v := c.value(inst)
	out := make([]Tag, len(v.order))
	copy(out, v.order)
	return out
}

func (c *ChildMap) value(inst *Instance) *childMapValue {
	v, ok := inst.get(c)
	if !ok {
		mv := &childMapValue{byTag: make(map[Tag][]*Instance)}
		inst.set(c, mv)
		return mv
	}
	return v.(*childMapValue)
}

func (c *ChildMap) append(inst *Instance, tag Tag, value *Instance) {
	v := c.value(inst)
	if _, ok := v.byTag[tag]; !ok {
		v.order = append(v.order, tag)
	}
	v.byTag[tag] = append(v.byTag[tag], value)
}

// Emit serializes every group in first-seen tag order, preserving insertion
// order within each group.
func (c *ChildMap) Emit(inst *Instance, el *Element) error {
	v := c.value(inst)
	for _, tag := range v.order {
		for _, child := range v.byTag[tag] {
			if err := serializeInto(child, el); err != nil {
				return err
			}
		}
	}
	return nil
}
