package services

// Test yardımcıları: ws.EventPublisher'ın kayıt tutan sahte implementasyonu.
// Service'lerdeki tüm broadcast çağrıları senkron olduğu için event'ler
// assert anında kayıtlıdır; Eventually gerekmez.

import (
	"sync"

	"github.com/logit-app/rtc/ws"
)

type recordedEvent struct {
	Scope   string // "all" | "user" | "chat"
	Target  string // userID ya da chatID
	Exclude string
	Event   ws.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{}
}

func (p *fakePublisher) record(e recordedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePublisher) BroadcastToAll(event ws.Event) {
	p.record(recordedEvent{Scope: "all", Event: event})
}

func (p *fakePublisher) BroadcastToAllExcept(excludeUserID string, event ws.Event) {
	p.record(recordedEvent{Scope: "all", Exclude: excludeUserID, Event: event})
}

func (p *fakePublisher) BroadcastToUser(userID string, event ws.Event) {
	p.record(recordedEvent{Scope: "user", Target: userID, Event: event})
}

func (p *fakePublisher) BroadcastToChat(chatID string, event ws.Event) {
	p.record(recordedEvent{Scope: "chat", Target: chatID, Event: event})
}

func (p *fakePublisher) BroadcastToChatExcept(chatID, excludeUserID string, event ws.Event) {
	p.record(recordedEvent{Scope: "chat", Target: chatID, Exclude: excludeUserID, Event: event})
}

func (p *fakePublisher) GetOnlineUserIDs() []string {
	return nil
}

// all, kaydedilen event'lerin kopyasını döner.
func (p *fakePublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]recordedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// withOp, verilen op ile kaydedilen event'leri döner.
func (p *fakePublisher) withOp(op string) []recordedEvent {
	var out []recordedEvent
	for _, e := range p.all() {
		if e.Event.Op == op {
			out = append(out, e)
		}
	}
	return out
}

// reset, kayıtları temizler (kurulum broadcast'lerini ayıklamak için).
func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
