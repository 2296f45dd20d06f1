package events

import (
	"testing"
	"time"
)

func seedLog() *EventLog {
	el := NewEventLog(nil)
	el.Append(GameEvent{ID: "e1", Type: EventTypeGameInitialized, Phase: 1})
	el.Append(GameEvent{ID: "e2", Type: EventTypeTileClaimed, ActorID: "0", Phase: 1})
	el.Append(GameEvent{ID: "e3", Type: EventTypeTileClaimed, ActorID: "1", Phase: 1})
	el.Append(GameEvent{ID: "e4", Type: EventTypeMarketBuy, ActorID: "0", Phase: 2})
	return el
}

func TestEventLogGetByActor(t *testing.T) {
	el := seedLog()

	got := el.GetByActor("0")
	if len(got) != 2 || got[0].ID != "e2" || got[1].ID != "e4" {
		t.Errorf("Expected e2,e4 for actor 0, got %+v", got)
	}
	if got := el.GetByActor("9"); got != nil {
		t.Errorf("Expected nothing for unknown actor, got %+v", got)
	}
}

func TestEventLogGetByType(t *testing.T) {
	el := seedLog()

	got := el.GetByType(EventTypeTileClaimed)
	if len(got) != 2 {
		t.Fatalf("Expected 2 claim events, got %d", len(got))
	}
	if got[0].ActorID != "0" || got[1].ActorID != "1" {
		t.Errorf("Expected claims in append order, got %+v", got)
	}
}

func TestEventLogHistoryIsACopy(t *testing.T) {
	el := seedLog()

	h := el.History()
	if len(h) != 4 || el.Len() != 4 {
		t.Fatalf("Expected 4 events, got %d/%d", len(h), el.Len())
	}
	h[0].ID = "mangled"
	if el.History()[0].ID != "e1" {
		t.Error("Mutating the returned slice changed the log")
	}
}

// channelPersister records write-through calls for inspection.
type channelPersister struct {
	got chan GameEvent
}

func (p *channelPersister) Append(event GameEvent) error {
	p.got <- event
	return nil
}

func TestEventLogWritesThroughToPersister(t *testing.T) {
	p := &channelPersister{got: make(chan GameEvent, 1)}
	el := NewEventLog(p)

	el.Append(GameEvent{ID: "e1", Type: EventTypeGameEnded, Phase: 5})
	select {
	case ev := <-p.got:
		if ev.ID != "e1" || ev.Type != EventTypeGameEnded {
			t.Errorf("Persisted wrong event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Persister never received the event")
	}
}
