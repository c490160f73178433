package stanzamodel

// Collector is the catch-all descriptor: it accepts any child element the
// owning class's normal dispatch did not claim, preserving the full subtree
// (tag, attributes, text, nested children) as an Element tree rather than a
// typed value. At most one Collector is reachable on any class, counting
// inherited ones (spec.md §4.3 I1). Grounded on the Python original's
// `stanza_model.Collector` plus the depth-cursor subtree builder in
// `make_from_args`.
type Collector struct{}

// NewCollector builds a Collector descriptor. It takes no configuration: an
// unclaimed child is always captured verbatim.
func NewCollector() *Collector { return &Collector{} }

// Read returns the collected subtrees in arrival order, materializing an
// empty slice on first access.
func (c *Collector) Read(inst *Instance) []*Element {
	v, ok := inst.get(c)
	if !ok {
		list := []*Element{}
		inst.set(c, list)
		return list
	}
	return v.([]*Element)
}

func (c *Collector) append(inst *Instance, el *Element) {
	list := c.Read(inst)
	list = append(list, el)
	inst.set(c, list)
}

// Emit re-serializes every collected subtree verbatim into el.
func (c *Collector) Emit(inst *Instance, el *Element) {
	for _, sub := range c.Read(inst) {
		el.AppendTree(sub)
	}
}
