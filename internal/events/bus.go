// Package events provides typed publish/subscribe topics. Publishing
// delivers synchronously to every current subscriber in subscription order.
package events

import (
	"sync"

	"github.com/jask/cncdeck/internal/machine"
)

// Token identifies a subscription.
type Token uint64

// Topic is a named channel carrying payloads of type T.
type Topic[T any] struct {
	name string

	mu    sync.Mutex
	next  Token
	order []Token
	byTok map[Token]func(T)
}

// NewTopic returns an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name, byTok: map[Token]func(T){}}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns its token.
func (t *Topic[T]) Subscribe(fn func(T)) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.byTok[t.next] = fn
	t.order = append(t.order, t.next)
	return t.next
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (t *Topic[T]) Unsubscribe(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byTok[tok]; !ok {
		return
	}
	delete(t.byTok, tok)
	for i, o := range t.order {
		if o == tok {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
}

// Publish calls every subscriber with payload and returns how many ran.
func (t *Topic[T]) Publish(payload T) int {
	t.mu.Lock()
	fns := make([]func(T), 0, len(t.order))
	for _, tok := range t.order {
		fns = append(fns, t.byTok[tok])
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(payload)
	}
	return len(fns)
}

// Subscribers returns the number of subscriptions.
func (t *Topic[T]) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// TopicUpdateMachineProfiles is the wire name of the machine list event.
const TopicUpdateMachineProfiles = "updateMachineProfiles"

// Bus groups the topics used by the control panel. It is created by the
// composition root and handed to the panes that need it.
type Bus struct {
	UpdateMachineProfiles *Topic[[]machine.Profile]
}

// NewBus returns a bus with every topic ready.
func NewBus() *Bus {
	return &Bus{
		UpdateMachineProfiles: NewTopic[[]machine.Profile](TopicUpdateMachineProfiles),
	}
}
