// Command stanzadump reads XMPP-shaped XML from stdin (or a file named on
// the command line) and logs each top-level jabber:client <message> stanza
// it recognizes, then re-serializes it to stdout.
package main

import (
	"log"
	"os"

	"github.com/wilkmaciej/stanzabind"
	"github.com/wilkmaciej/stanzabind/stanzatype"
)

const clientNS = "jabber:client"

var (
	toAttr, fromAttr, idAttr, typeAttr *stanzamodel.Attr
	bodyDesc, subjectDesc              *stanzamodel.ChildText
	collectorDesc                      *stanzamodel.Collector
	messageClass                       *stanzamodel.Class
)

func mustAttr(name string, opts ...stanzamodel.AttrOption) *stanzamodel.Attr {
	a, err := stanzamodel.NewAttr(name, stanzatype.String{}, opts...)
	if err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	return a
}

func mustChildText(name string) *stanzamodel.ChildText {
	c, err := stanzamodel.NewChildText(name, stanzatype.String{})
	if err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	return c
}

func init() {
	toAttr = mustAttr("to")
	fromAttr = mustAttr("from")
	idAttr = mustAttr("id")
	typeAttr = mustAttr("type", stanzamodel.WithDefault("normal"))
	bodyDesc = mustChildText("{" + clientNS + "}body")
	subjectDesc = mustChildText("{" + clientNS + "}subject")
	collectorDesc = stanzamodel.NewCollector()

	b, err := stanzamodel.NewClassBuilder("message", "{"+clientNS+"}message")
	if err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	for _, a := range []*stanzamodel.Attr{toAttr, fromAttr, idAttr, typeAttr} {
		if err := b.AddAttr(a); err != nil {
			log.Fatalf("stanzadump: %v", err)
		}
	}
	if err := b.AddChildText(bodyDesc); err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	if err := b.AddChildText(subjectDesc); err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	if err := b.AddCollector(collectorDesc); err != nil {
		log.Fatalf("stanzadump: %v", err)
	}
	messageClass = b.Build()
}

func main() {
	var in *os.File = os.Stdin
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatalf("stanzadump: %v", err)
		}
		defer f.Close()
		in = f
	}

	dispatcher := stanzamodel.NewStanzaParser()
	if err := dispatcher.AddClass(messageClass); err != nil {
		log.Fatalf("stanzadump: %v", err)
	}

	driver := stanzamodel.NewSAXDriver(in)
	count := 0
	for {
		ev, ok, err := driver.Next()
		if err != nil {
			log.Fatalf("stanzadump: malformed input: %v", err)
		}
		if !ok {
			break
		}
		inst, err := dispatcher.Feed(ev)
		if err != nil {
			log.Printf("stanzadump: dropping stanza: %v", err)
			continue
		}
		if inst == nil {
			continue
		}
		count++
		logMessage(inst)
	}
	log.Printf("stanzadump: processed %d message stanza(s)", count)
}

func logMessage(inst *stanzamodel.Instance) {
	to, _ := toAttr.Read(inst).(string)
	from, _ := fromAttr.Read(inst).(string)
	kind, _ := typeAttr.Read(inst).(string)
	log.Printf("message type=%s to=%q from=%q", kind, to, from)

	if body := bodyDesc.Read(inst); body != nil {
		log.Printf("  body: %v", body)
	}
	if subject := subjectDesc.Read(inst); subject != nil {
		log.Printf("  subject: %v", subject)
	}

	el, err := stanzamodel.Serialize(inst)
	if err != nil {
		log.Printf("  (could not re-serialize: %v)", err)
		return
	}
	if err := el.WriteXML(os.Stdout); err != nil {
		log.Printf("  (write error: %v)", err)
		return
	}
	os.Stdout.Write([]byte("\n"))
}
