package stanzamodel

// Serialize builds a standalone Element tree for inst, suitable for
// WriteXML. It is the entry point a caller uses on a top-level stanza
// instance; serializeInto is its recursive counterpart used by
// Child/ChildList/ChildMap to append a nested instance onto an
// already-open parent element. spec.md §4.8.
func Serialize(inst *Instance) (*Element, error) {
	cls := inst.Class()
	if !cls.HasTag {
		return nil, &SchemaError{Class: cls.Name, Reason: "cannot serialize a class with no TAG"}
	}
	el := NewElement(cls.Tag)
	if err := fillElement(inst, el); err != nil {
		return nil, err
	}
	return el, nil
}

// serializeInto appends a new child element representing inst onto parent
// and fills it from inst's properties.
func serializeInto(inst *Instance, parent *Element) error {
	cls := inst.Class()
	if !cls.HasTag {
		return &SchemaError{Class: cls.Name, Reason: "cannot serialize a class with no TAG"}
	}
	el := parent.NewChild(cls.Tag)
	return fillElement(inst, el)
}

// fillElement walks every descriptor of inst's class and asks each to
// contribute its portion of el: attributes, text, collected subtrees, then
// children in declaration order.
func fillElement(inst *Instance, el *Element) error {
	cls := inst.Class()
	for _, a := range cls.AttrMap {
		a.Emit(inst, el)
	}
	if cls.TextProperty != nil {
		cls.TextProperty.Emit(inst, el)
	}
	if cls.CollectorProperty != nil {
		cls.CollectorProperty.Emit(inst, el)
	}
	for _, desc := range cls.ChildProps {
		switch d := desc.(type) {
		case *Child:
			if err := d.Emit(inst, el); err != nil {
				return err
			}
		case *ChildList:
			if err := d.Emit(inst, el); err != nil {
				return err
			}
		case *ChildText:
			d.Emit(inst, el)
		case *ChildTag:
			d.Emit(inst, el)
		case *ChildMap:
			if err := d.Emit(inst, el); err != nil {
				return err
			}
		}
	}
	return nil
}
