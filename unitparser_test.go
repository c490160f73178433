package stanzamodel

import (
	"testing"

	"github.com/wilkmaciej/stanzabind/stanzatype"
)

func buildMessageClass(t *testing.T, opts ...func(*ClassBuilder)) (*Class, *Attr, *Attr, *ChildText, *Collector) {
	t.Helper()
	idAttr, err := NewAttr("id", stanzatype.String{}, WithRequired())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	toAttr, err := NewAttr("to", stanzatype.String{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := NewChildText("{jabber:client}body", stanzatype.String{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	collector := NewCollector()

	b, err := NewClassBuilder("message", "{jabber:client}message")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.AddAttr(idAttr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddAttr(toAttr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddChildText(body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddCollector(collector); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b.Build(), idAttr, toAttr, body, collector
}

func startEv(namespace, local string, attrs ...AttrValue) Event {
	return Event{Kind: EventStart, Start: StartEvent{Namespace: namespace, Local: local, Attrs: attrs}}
}

func textEv(s string) Event { return Event{Kind: EventText, Text: s} }
func endEv() Event          { return Event{Kind: EventEnd} }

func TestUnitParserHappyPath(t *testing.T) {
	cls, idAttr, toAttr, body, collector := buildMessageClass(t)

	start := startEv("jabber:client", "message",
		AttrValue{Tag: Tag{Local: "id"}, Value: "msg-1"},
		AttrValue{Tag: Tag{Local: "to"}, Value: "juliet@example.com"},
	)
	up, err := NewUnitParser(cls, start.Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := []Event{
		startEv("jabber:client", "body"),
		textEv("hello"),
		endEv(), // </body>
		startEv("urn:example:ext", "extra", AttrValue{Tag: Tag{Local: "foo"}, Value: "bar"}),
		textEv("stuff"),
		endEv(), // </extra>
		endEv(), // </message>
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed(%+v): %v", ev, err)
		}
	}
	if !up.Done() {
		t.Fatal("expected parser to be done")
	}
	inst, err := up.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := idAttr.Read(inst); got != "msg-1" {
		t.Errorf("id = %v", got)
	}
	if got := toAttr.Read(inst); got != "juliet@example.com" {
		t.Errorf("to = %v", got)
	}
	if got := body.Read(inst); got != "hello" {
		t.Errorf("body = %v", got)
	}

	collected := collector.Read(inst)
	if len(collected) != 1 {
		t.Fatalf("expected 1 collected element, got %d", len(collected))
	}
	el := collected[0]
	if el.Tag != (Tag{Namespace: "urn:example:ext", Local: "extra"}) {
		t.Errorf("collected tag = %+v", el.Tag)
	}
	if el.Text != "stuff" {
		t.Errorf("collected text = %q", el.Text)
	}
	if len(el.Attrs) != 1 || el.Attrs[0].Value != "bar" {
		t.Errorf("collected attrs = %+v", el.Attrs)
	}
}

func TestUnitParserMissingRequiredAttr(t *testing.T) {
	cls, _, _, _, _ := buildMessageClass(t)
	start := startEv("jabber:client", "message")
	if _, err := NewUnitParser(cls, start.Start); err == nil {
		t.Fatal("expected MissingAttributeError")
	} else if _, ok := err.(*MissingAttributeError); !ok {
		t.Fatalf("expected *MissingAttributeError, got %T: %v", err, err)
	}
}

func TestUnitParserUnexpectedAttrFailsByDefault(t *testing.T) {
	cls, _, _, _, _ := buildMessageClass(t)
	start := startEv("jabber:client", "message",
		AttrValue{Tag: Tag{Local: "id"}, Value: "msg-1"},
		AttrValue{Tag: Tag{Local: "unknown"}, Value: "x"},
	)
	if _, err := NewUnitParser(cls, start.Start); err == nil {
		t.Fatal("expected UnexpectedAttributeError")
	} else if _, ok := err.(*UnexpectedAttributeError); !ok {
		t.Fatalf("expected *UnexpectedAttributeError, got %T: %v", err, err)
	}
}

func TestUnitParserUnexpectedChildWithoutCollectorFails(t *testing.T) {
	idAttr, err := NewAttr("id", stanzatype.String{}, WithRequired())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("ping", "{urn:xmpp:ping}ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddAttr(idAttr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	start := startEv("urn:xmpp:ping", "ping", AttrValue{Tag: Tag{Local: "id"}, Value: "1"})
	up, err := NewUnitParser(cls, start.Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = up.Feed(startEv("urn:xmpp:ping", "unexpected"))
	if err == nil {
		t.Fatal("expected UnexpectedChildError")
	}
	if _, ok := err.(*UnexpectedChildError); !ok {
		t.Fatalf("expected *UnexpectedChildError, got %T: %v", err, err)
	}
}

// TestUnitParserTextProperty exercises a class bound directly to a Text
// property (as opposed to a ChildText on some parent), including text
// interspersed with a collected child, matching spec's "append to a local
// buffer, across the whole element body" accumulation.
func TestUnitParserTextProperty(t *testing.T) {
	body := NewText(stanzatype.String{})
	b, err := NewClassBuilder("note", "{urn:test}note")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddText(body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddCollector(NewCollector()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	start := startEv("urn:test", "note")
	up, err := NewUnitParser(cls, start.Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		textEv("hello "),
		startEv("urn:test", "aside"),
		endEv(),
		textEv("world"),
		endEv(), // </note>
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed(%+v): %v", ev, err)
		}
	}
	inst, err := up.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := body.Read(inst); got != "hello world" {
		t.Errorf("text = %q", got)
	}
}

// TestUnitParserUnexpectedTextIsDeferredPastChildren confirms character data
// with no TEXT_PROPERTY to receive it only fails once the whole element body
// (including any interspersed children) has been consumed, not on the first
// text event — matching spec's "append to a local buffer ... if non-empty at
// the end, raise UnexpectedText" ordering rather than failing eagerly.
func TestUnitParserUnexpectedTextIsDeferredPastChildren(t *testing.T) {
	b, err := NewClassBuilder("ping", "{urn:xmpp:ping}ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.WithUnknownChildPolicy(UnknownChildDrop)
	cls := b.Build()
	up, err := NewUnitParser(cls, startEv("urn:xmpp:ping", "ping").Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The dropped child and the stray text are both accepted as they
	// arrive; only once the element closes does the buffered text turn
	// into an error, since ping has no Text property to receive it.
	for i, ev := range []Event{
		startEv("urn:xmpp:ping", "noise"),
		endEv(),
		textEv("stray"),
	} {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed[%d](%+v): %v", i, ev, err)
		}
	}
	if up.Done() {
		t.Fatal("parser should not be done yet — </ping> not seen")
	}

	err = up.Feed(endEv())
	if err == nil {
		t.Fatal("expected UnexpectedTextError once the element closes")
	}
	if _, ok := err.(*UnexpectedTextError); !ok {
		t.Fatalf("expected *UnexpectedTextError, got %T: %v", err, err)
	}
}

// TestUnitParserErrorHandlerObservesFailureWithoutRecovering exercises
// spec's optional stanza_error_handler hook: it must be invoked with the
// offending descriptor, the raw value that failed, and the error itself,
// and parsing must still fail afterward — the hook never recovers.
func TestUnitParserErrorHandlerObservesFailureWithoutRecovering(t *testing.T) {
	var gotDescriptor, gotRawArgs any
	var gotErr error
	calls := 0

	idAttr, err := NewAttr("id", stanzatype.Integer{}, WithRequired())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("widget", "{urn:test}widget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.WithErrorHandler(func(descriptor, rawArgs any, err error) {
		calls++
		gotDescriptor, gotRawArgs, gotErr = descriptor, rawArgs, err
	})
	if err := b.AddAttr(idAttr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	start := startEv("urn:test", "widget", AttrValue{Tag: Tag{Local: "id"}, Value: "not-a-number"})
	_, err = NewUnitParser(cls, start.Start)
	if err == nil {
		t.Fatal("expected a FormatError from the Integer codec")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
	if calls != 1 {
		t.Fatalf("expected the error handler to be called exactly once, got %d", calls)
	}
	if gotDescriptor != idAttr {
		t.Errorf("expected the hook to receive the failing Attr descriptor, got %v", gotDescriptor)
	}
	if gotRawArgs != "not-a-number" {
		t.Errorf("expected the hook to receive the raw attribute text, got %v", gotRawArgs)
	}
	if gotErr != err {
		t.Errorf("expected the hook to receive the same error that propagated, got %v", gotErr)
	}
}

func TestUnitParserUnknownChildDropPolicyIgnoresSubtree(t *testing.T) {
	idAttr, err := NewAttr("id", stanzatype.String{}, WithRequired())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("ping", "{urn:xmpp:ping}ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.WithUnknownChildPolicy(UnknownChildDrop)
	if err := b.AddAttr(idAttr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	start := startEv("urn:xmpp:ping", "ping", AttrValue{Tag: Tag{Local: "id"}, Value: "1"})
	up, err := NewUnitParser(cls, start.Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		startEv("urn:xmpp:ping", "noise"),
		startEv("urn:xmpp:ping", "nested"),
		endEv(),
		endEv(),
		endEv(), // </ping>
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed(%+v): %v", ev, err)
		}
	}
	if !up.Done() {
		t.Fatal("expected parser to be done")
	}
	if _, err := up.Result(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
