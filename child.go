package stanzamodel

// childDispatch is the shared tag→class dispatch table used by Child,
// ChildList and ChildMap: each admits a fixed set of StanzaClasses and
// selects among them by the incoming start-element's TAG. spec.md §4.2.
type childDispatch struct {
	classes []*Class
	tagMap  map[Tag]*Class
}

func newChildDispatch(classes []*Class) (*childDispatch, error) {
	d := &childDispatch{tagMap: make(map[Tag]*Class, len(classes))}
	for _, c := range classes {
		if err := d.register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// register adds cls to the dispatch table. It fails if cls's TAG is already
// claimed — the tags among admitted classes must be unique (spec.md §4.2
// Child).
func (d *childDispatch) register(cls *Class) error {
	if !cls.HasTag {
		return &SchemaError{Class: cls.Name, Reason: "child class has no TAG"}
	}
	if existing, ok := d.tagMap[cls.Tag]; ok {
		return &SchemaError{
			Class:  cls.Name,
			Reason: "ambiguous children: " + existing.Name + " and " + cls.Name + " share the same TAG " + cls.Tag.String(),
		}
	}
	d.tagMap[cls.Tag] = cls
	d.classes = append(d.classes, cls)
	return nil
}

// Tags returns every tag this dispatch table currently claims.
func (d *childDispatch) Tags() []Tag {
	tags := make([]Tag, 0, len(d.tagMap))
	for t := range d.tagMap {
		tags = append(tags, t)
	}
	return tags
}

func (d *childDispatch) lookup(t Tag) (*Class, bool) {
	c, ok := d.tagMap[t]
	return c, ok
}

// Child is the scalar descriptor matching any one of a fixed set of
// StanzaClasses, identified by TAG. Re-assignment overwrites.
type Child struct {
	dispatch *childDispatch
	Default  *Instance
}

// NewChild builds a Child admitting any of classes, keyed by their TAG.
func NewChild(classes []*Class) (*Child, error) {
	d, err := newChildDispatch(classes)
	if err != nil {
		return nil, err
	}
	return &Child{dispatch: d}, nil
}

func (c *Child) Tags() []Tag { return c.dispatch.Tags() }

// Read returns the stored child instance, or the descriptor default if
// unset.
func (c *Child) Read(inst *Instance) *Instance {
	if v, ok := inst.get(c); ok {
		return v.(*Instance)
	}
	return c.Default
}

// Write assigns the child instance, overwriting any previous value.
func (c *Child) Write(inst *Instance, value *Instance) {
	inst.set(c, value)
}

// Emit serializes the stored child, unless it is nil.
func (c *Child) Emit(inst *Instance, el *Element) error {
	child := c.Read(inst)
	if child == nil {
		return nil
	}
	return serializeInto(child, el)
}

// ChildList is like Child but appends matching children to an ordered
// sequence instead of overwriting a scalar; the default is always an empty
// sequence, materialized lazily on first access.
type ChildList struct {
	dispatch *childDispatch
}

// NewChildList builds a ChildList admitting any of classes, keyed by their
// TAG.
func NewChildList(classes []*Class) (*ChildList, error) {
	d, err := newChildDispatch(classes)
	if err != nil {
		return nil, err
	}
	return &ChildList{dispatch: d}, nil
}

func (c *ChildList) Tags() []Tag { return c.dispatch.Tags() }

// Read returns the list of stored children, materializing an empty slice on
// first access.
func (c *ChildList) Read(inst *Instance) []*Instance {
	v, ok := inst.get(c)
	if !ok {
		list := []*Instance{}
		inst.set(c, list)
		return list
	}
	return v.([]*Instance)
}

func (c *ChildList) append(inst *Instance, value *Instance) {
	list := c.Read(inst)
	list = append(list, value)
	inst.set(c, list)
}

// Emit serializes every stored child in insertion order.
func (c *ChildList) Emit(inst *Instance, el *Element) error {
	for _, child := range c.Read(inst) {
		if err := serializeInto(child, el); err != nil {
			return err
		}
	}
	return nil
}
