package stanzamodel

import (
	"fmt"
	"strings"
)

// frame is one level of an explicit parse stack: the state machine driving
// a single open XML element through "start"/"text"/"end" events. This
// replaces the suspendable-generator approach of the Python original with
// an explicit push-parser, per spec.md §5 and §9's redesign guidance — no
// goroutines, no channels, the whole engine stays single-threaded and
// cooperative. Grounded on the teacher's `parseState{stack []*XMLElement}`
// push/pop idiom, generalized from a concrete element stack to a
// polymorphic frame stack.
type frame interface {
	// handleStart reacts to a nested start-element. It either returns a new
	// frame to push (the nested element's own handler) or an error. Every
	// frame in this engine returns one or the other; on a nil, nil return
	// frameStack pushes nothing, so the nested element's later events would
	// go to the current frame.
	handleStart(ev StartEvent) (frame, error)
	// handleText reacts to a character-data chunk belonging to the
	// currently open element.
	handleText(text string) error
	// handleEnd finalizes the frame: it is called once, when this frame's
	// own element closes, and is responsible for invoking whatever
	// completion callback it was built with.
	handleEnd() error
}

// frameStack drives one XML subtree: at any moment, all events are
// dispatched to its top frame, and a frame's handleStart return value (if
// non-nil) is pushed to become the new top.
type frameStack struct {
	frames []frame
}

func (s *frameStack) push(f frame) { s.frames = append(s.frames, f) }

func (s *frameStack) top() frame { return s.frames[len(s.frames)-1] }

func (s *frameStack) empty() bool { return len(s.frames) == 0 }

// handle dispatches one Event to the stack, pushing or popping as needed.
func (s *frameStack) handle(ev Event) error {
	if s.empty() {
		return fmt.Errorf("stanzamodel: event received after parser completed")
	}
	switch ev.Kind {
	case EventStart:
		child, err := s.top().handleStart(ev.Start)
		if err != nil {
			return err
		}
		if child != nil {
			s.push(child)
		}
	case EventText:
		if err := s.top().handleText(ev.Text); err != nil {
			return err
		}
	case EventEnd:
		if err := s.top().handleEnd(); err != nil {
			return err
		}
		s.frames = s.frames[:len(s.frames)-1]
	}
	return nil
}

// UnitParser drives the events belonging to exactly one top-level stanza
// (or other independently-parsed unit) through to a completed Instance.
// spec.md §4.5/§5: one UnitParser is fed events until its stack empties,
// at which point Result returns the built instance.
type UnitParser struct {
	stack  frameStack
	result *Instance
	err    error
	done   bool
}

// NewUnitParser starts parsing an instance of cls from its already-seen
// opening StartEvent.
func NewUnitParser(cls *Class, start StartEvent) (*UnitParser, error) {
	p := &UnitParser{}
	f, err := newClassFrame(cls, start, func(inst *Instance) error {
		p.result = inst
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.stack.push(f)
	return p, nil
}

// Feed advances the parser by one event. It returns an error (and marks the
// parser done) if the event violates the schema; once Done reports true, no
// further Feed calls are valid.
func (p *UnitParser) Feed(ev Event) error {
	if p.done {
		return fmt.Errorf("stanzamodel: unit parser already finished")
	}
	if err := p.stack.handle(ev); err != nil {
		p.err = err
		p.done = true
		return err
	}
	if p.stack.empty() {
		p.done = true
	}
	return nil
}

// Done reports whether the unit's closing "end" event has been consumed.
func (p *UnitParser) Done() bool { return p.done }

// Result returns the completed instance, or the error that aborted parsing.
func (p *UnitParser) Result() (*Instance, error) { return p.result, p.err }

// classFrame parses the events belonging to one open element bound to a
// Class: it consumes the element's attributes up front (at construction,
// from the already-seen StartEvent), then dispatches nested starts to
// whichever child-bearing descriptor claims the tag, accumulates character
// data for TextProperty, and on handleEnd validates required attributes
// were all seen, feeds the accumulated text, and invokes onDone with the
// finished Instance.
type classFrame struct {
	class   *Class
	inst    *Instance
	textBuf strings.Builder
	onDone  func(*Instance) error
}

func newClassFrame(cls *Class, start StartEvent, onDone func(*Instance) error) (*classFrame, error) {
	inst := NewInstance(cls)
	seen := make(map[Tag]bool, len(start.Attrs))
	for _, av := range start.Attrs {
		a, ok := cls.AttrMap[av.Tag]
		if !ok {
			if cls.UnknownAttrPolicy == UnknownAttrDrop {
				continue
			}
			return nil, &UnexpectedAttributeError{Parent: cls.Tag, Attr: av.Tag}
		}
		if err := a.feedValue(inst, av.Value); err != nil {
			return nil, cls.reportError(a, av.Value, err)
		}
		seen[av.Tag] = true
	}
	for tag, a := range cls.AttrMap {
		if !seen[tag] && a.Required {
			return nil, &MissingAttributeError{Parent: cls.Tag, Attr: tag}
		}
	}
	return &classFrame{class: cls, inst: inst, onDone: onDone}, nil
}

func (f *classFrame) handleStart(ev StartEvent) (frame, error) {
	tag := ev.Tag()
	if desc, ok := f.class.ChildMap[tag]; ok {
		switch d := desc.(type) {
		case *Child:
			childCls, _ := d.dispatch.lookup(tag)
			return newClassFrame(childCls, ev, func(child *Instance) error {
				d.Write(f.inst, child)
				return nil
			})
		case *ChildList:
			childCls, _ := d.dispatch.lookup(tag)
			return newClassFrame(childCls, ev, func(child *Instance) error {
				d.append(f.inst, child)
				return nil
			})
		case *ChildMap:
			childCls, _ := d.dispatch.lookup(tag)
			return newClassFrame(childCls, ev, func(child *Instance) error {
				d.append(f.inst, tag, child)
				return nil
			})
		case *ChildText:
			return newChildTextFrame(d, ev, f.inst, f.class)
		case *ChildTag:
			return newChildTagFrame(d, ev, f.inst, f.class)
		}
	}
	if f.class.CollectorProperty != nil {
		collector := f.class.CollectorProperty
		return newCollectorFrame(ev, func(el *Element) { collector.append(f.inst, el) }), nil
	}
	if f.class.UnknownChildPolicy == UnknownChildDrop {
		return &dropFrame{}, nil
	}
	return nil, f.class.reportError(nil, ev, &UnexpectedChildError{Parent: f.class.Tag, Child: tag})
}

func (f *classFrame) handleText(text string) error {
	f.textBuf.WriteString(text)
	return nil
}

func (f *classFrame) handleEnd() error {
	if f.class.TextProperty != nil {
		if err := f.class.TextProperty.feedValue(f.inst, f.textBuf.String()); err != nil {
			return f.class.reportError(f.class.TextProperty, f.textBuf.String(), err)
		}
	} else if f.textBuf.Len() > 0 && f.class.UnknownTextPolicy != UnknownTextDrop {
		return &UnexpectedTextError{Parent: f.class.Tag}
	}
	if f.onDone != nil {
		return f.onDone(f.inst)
	}
	return nil
}

// childTextFrame parses the events belonging to a ChildText-bound element:
// it rejects (or drops, per AttrPolicy) any attribute on the element itself,
// rejects (or drops, per ChildPolicy) any nested child, accumulates
// character data, and on handleEnd parses the accumulated text into the
// owning instance via the descriptor's Codec.
type childTextFrame struct {
	desc       *ChildText
	parentInst *Instance
	class      *Class
	textBuf    strings.Builder
}

func newChildTextFrame(desc *ChildText, start StartEvent, parentInst *Instance, class *Class) (*childTextFrame, error) {
	if len(start.Attrs) > 0 && desc.AttrPolicy == UnknownAttrFail {
		return nil, &UnexpectedAttributeError{Parent: desc.Tag, Attr: start.Attrs[0].Tag}
	}
	return &childTextFrame{desc: desc, parentInst: parentInst, class: class}, nil
}

func (f *childTextFrame) handleStart(ev StartEvent) (frame, error) {
	if f.desc.ChildPolicy == UnknownChildDrop {
		return &dropFrame{}, nil
	}
	return nil, f.class.reportError(f.desc, ev, &UnexpectedChildError{Parent: f.desc.Tag, Child: ev.Tag()})
}

func (f *childTextFrame) handleText(text string) error {
	f.textBuf.WriteString(text)
	return nil
}

func (f *childTextFrame) handleEnd() error {
	if err := f.desc.feedValue(f.parentInst, f.textBuf.String()); err != nil {
		return f.class.reportError(f.desc, f.textBuf.String(), err)
	}
	return nil
}

// childTagFrame parses the events belonging to a ChildTag-bound element: it
// never has text or attribute descriptors of its own, so any attribute
// present, any nested child, or any text (whitespace included) is gated by the
// descriptor's respective policy. On handleEnd it records the element's own
// tag as the value.
type childTagFrame struct {
	desc       *ChildTag
	tag        Tag
	parentInst *Instance
	class      *Class
}

func newChildTagFrame(desc *ChildTag, start StartEvent, parentInst *Instance, class *Class) (*childTagFrame, error) {
	if len(start.Attrs) > 0 && desc.AttrPolicy == UnknownAttrFail {
		return nil, &UnexpectedAttributeError{Parent: start.Tag(), Attr: start.Attrs[0].Tag}
	}
	return &childTagFrame{desc: desc, tag: start.Tag(), parentInst: parentInst, class: class}, nil
}

func (f *childTagFrame) handleStart(ev StartEvent) (frame, error) {
	if f.desc.ChildPolicy == UnknownChildDrop {
		return &dropFrame{}, nil
	}
	return nil, f.class.reportError(f.desc, ev, &UnexpectedChildError{Parent: f.tag, Child: ev.Tag()})
}

func (f *childTagFrame) handleText(text string) error {
	if f.desc.TextPolicy == UnknownTextDrop {
		return nil
	}
	return &UnexpectedTextError{Parent: f.tag}
}

func (f *childTagFrame) handleEnd() error {
	return f.desc.Write(f.parentInst, &f.tag)
}

// collectorFrame builds a verbatim Element subtree for a child the owning
// class does not place through its ordinary descriptors, ported from the
// depth-cursor subtree builder the Python original calls `make_from_args`.
// Because frameStack already threads nested start/end pairs through the
// stack, a collectorFrame only needs to track the single Element it is
// building; nested elements get their own collectorFrame whose result is
// already attached to the parent by construction, so only the outermost
// frame carries an onDone callback.
type collectorFrame struct {
	el     *Element
	onDone func(*Element)
}

func newCollectorFrame(start StartEvent, onDone func(*Element)) *collectorFrame {
	el := NewElement(start.Tag())
	for _, av := range start.Attrs {
		el.SetAttr(av.Tag, av.Value)
	}
	return &collectorFrame{el: el, onDone: onDone}
}

func (f *collectorFrame) handleStart(ev StartEvent) (frame, error) {
	child := f.el.NewChild(ev.Tag())
	for _, av := range ev.Attrs {
		child.SetAttr(av.Tag, av.Value)
	}
	return &collectorFrame{el: child}, nil
}

func (f *collectorFrame) handleText(text string) error {
	f.el.AppendText(text)
	return nil
}

func (f *collectorFrame) handleEnd() error {
	if f.onDone != nil {
		f.onDone(f.el)
	}
	return nil
}

// dropFrame discards an entire unplaceable subtree: every nested start
// pushes another dropFrame, every end just pops, mirroring the teacher's
// depth-counting drop handler without needing an explicit depth variable —
// the frame stack's own length does that job.
type dropFrame struct{}

func (f *dropFrame) handleStart(ev StartEvent) (frame, error) { return &dropFrame{}, nil }
func (f *dropFrame) handleText(text string) error             { return nil }
func (f *dropFrame) handleEnd() error                          { return nil }
