package stanzamodel

import (
	"testing"

	"github.com/wilkmaciej/stanzabind/stanzatype"
)

func buildItemClass(t *testing.T, local string) (*Class, *Attr) {
	t.Helper()
	v, err := NewAttr("v", stanzatype.String{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder(local, "{urn:test}"+local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddAttr(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b.Build(), v
}

func TestChildListAccumulatesInOrder(t *testing.T) {
	itemA, vAttr := buildItemClass(t, "item-a")
	list, err := NewChildList([]*Class{itemA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("container", "{urn:test}container")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddChildList(list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	up, err := NewUnitParser(cls, startEv("urn:test", "container").Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		startEv("urn:test", "item-a", AttrValue{Tag: Tag{Local: "v"}, Value: "1"}),
		endEv(),
		startEv("urn:test", "item-a", AttrValue{Tag: Tag{Local: "v"}, Value: "2"}),
		endEv(),
		endEv(),
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	inst, err := up.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := list.Read(inst)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := vAttr.Read(items[0]); got != "1" {
		t.Errorf("items[0].v = %v", got)
	}
	if got := vAttr.Read(items[1]); got != "2" {
		t.Errorf("items[1].v = %v", got)
	}
}

func TestChildMapGroupsByTagInFirstSeenOrder(t *testing.T) {
	itemA, _ := buildItemClass(t, "item-a")
	itemB, _ := buildItemClass(t, "item-b")
	cm, err := NewChildMap([]*Class{itemA, itemB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("box", "{urn:test}box")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddChildMap(cm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	up, err := NewUnitParser(cls, startEv("urn:test", "box").Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		startEv("urn:test", "item-a"), endEv(),
		startEv("urn:test", "item-b"), endEv(),
		startEv("urn:test", "item-a"), endEv(),
		endEv(),
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	inst, err := up.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := cm.Order(inst)
	if len(order) != 2 || order[0] != itemA.Tag || order[1] != itemB.Tag {
		t.Fatalf("unexpected first-seen order: %+v", order)
	}
	grouped := cm.Read(inst)
	if len(grouped[itemA.Tag]) != 2 {
		t.Errorf("expected 2 item-a instances, got %d", len(grouped[itemA.Tag]))
	}
	if len(grouped[itemB.Tag]) != 1 {
		t.Errorf("expected 1 item-b instance, got %d", len(grouped[itemB.Tag]))
	}
}

func TestChildTagRecordsChosenTag(t *testing.T) {
	ct, err := NewChildTag([]string{"{urn:test}yes", "{urn:test}no"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewClassBuilder("choice", "{urn:test}choice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.AddChildTag(ct); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cls := b.Build()

	up, err := NewUnitParser(cls, startEv("urn:test", "choice").Start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		startEv("urn:test", "yes"),
		endEv(),
		endEv(),
	}
	for _, ev := range events {
		if err := up.Feed(ev); err != nil {
			t.Fatalf("Feed: %v", err)
		}
	}
	inst, err := up.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ct.Read(inst)
	if got == nil || *got != (Tag{Namespace: "urn:test", Local: "yes"}) {
		t.Fatalf("got %+v", got)
	}
}

func TestChildTagDisallowNoneRejectsNilWrite(t *testing.T) {
	ct, err := NewChildTag([]string{"{urn:test}yes"}, ChildTagDisallowNone())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inst := NewInstance(&Class{Name: "x"})
	if err := ct.Write(inst, nil); err == nil {
		t.Fatal("expected error writing nil when AllowNone is false")
	}
}

// TestRegisterChildIsNotRetroactive exercises spec's documented limitation:
// a class built before RegisterChild is called does not see the newly
// admitted alternative, but a class built afterward, sharing the same
// descriptor, does.
func TestRegisterChildIsNotRetroactive(t *testing.T) {
	itemA, _ := buildItemClass(t, "item-a")
	itemB, _ := buildItemClass(t, "item-b")

	child, err := NewChild([]*Class{itemA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before, err := NewClassBuilder("before", "{urn:test}before")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := before.AddChild(child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	beforeClass := before.Build()

	if err := child.RegisterChild(itemB); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := NewClassBuilder("after", "{urn:test}after")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := after.AddChild(child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	afterClass := after.Build()

	if _, ok := beforeClass.ChildMap[itemB.Tag]; ok {
		t.Error("class built before RegisterChild must not see the new tag")
	}
	if _, ok := afterClass.ChildMap[itemB.Tag]; !ok {
		t.Error("class built after RegisterChild must see the new tag")
	}
}
