package stanzamodel

// StanzaParser is the top-level dispatcher: it watches a flat sequence of
// Events for a start-element whose tag matches a registered Class, spins up
// a UnitParser to consume that element's entire subtree, and hands back the
// completed Instance once its matching end-element arrives. Unlike a
// UnitParser, a StanzaParser is long-lived — one instance processes every
// top-level stanza a connection sees. spec.md §4.6.
type StanzaParser struct {
	classes map[Tag]*Class
	active  *UnitParser
}

// NewStanzaParser returns an empty dispatcher with no registered classes.
func NewStanzaParser() *StanzaParser {
	return &StanzaParser{classes: make(map[Tag]*Class)}
}

// AddClass registers cls as a recognized top-level stanza. It fails if cls
// has no TAG, or if another registered class already claims the same tag.
func (p *StanzaParser) AddClass(cls *Class) error {
	if !cls.HasTag {
		return &SchemaError{Class: cls.Name, Reason: "top-level class has no TAG"}
	}
	if existing, ok := p.classes[cls.Tag]; ok && existing != cls {
		return &SchemaError{Class: cls.Name, Reason: "tag " + cls.Tag.String() + " already claimed by " + existing.Name}
	}
	p.classes[cls.Tag] = cls
	return nil
}

// RemoveClass unregisters the class currently claiming tag, if any.
func (p *StanzaParser) RemoveClass(tag Tag) {
	delete(p.classes, tag)
}

// GetTagMap returns a snapshot of every tag currently dispatched and the
// class it resolves to.
func (p *StanzaParser) GetTagMap() map[Tag]*Class {
	out := make(map[Tag]*Class, len(p.classes))
	for t, c := range p.classes {
		out[t] = c
	}
	return out
}

// Feed advances the dispatcher by one event. It returns a non-nil Instance
// exactly when that event closed a complete top-level stanza; it returns a
// non-nil error if the event violates the active stanza's schema, or if a
// new top-level start-element's tag is not registered
// (*UnknownTopLevelTagError).
func (p *StanzaParser) Feed(ev Event) (*Instance, error) {
	if p.active != nil {
		if err := p.active.Feed(ev); err != nil {
			p.active = nil
			return nil, err
		}
		if p.active.Done() {
			inst, err := p.active.Result()
			p.active = nil
			return inst, err
		}
		return nil, nil
	}

	if ev.Kind != EventStart {
		return nil, nil
	}
	cls, ok := p.classes[ev.Start.Tag()]
	if !ok {
		return nil, &UnknownTopLevelTagError{EventArgs: ev.Start}
	}
	up, err := NewUnitParser(cls, ev.Start)
	if err != nil {
		return nil, err
	}
	p.active = up
	return nil, nil
}
