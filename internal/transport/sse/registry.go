package sse

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

const subscriberBufSize = 32

// Subscriber is one open event stream bound to a user. Frames arrive on
// C in publish order; a subscriber that cannot keep up has frames
// dropped rather than blocking the publisher.
type Subscriber struct {
	C chan []byte
}

func newSubscriber() *Subscriber {
	return &Subscriber{C: make(chan []byte, subscriberBufSize)}
}

// Registry maps user ids to their open subscribers and fans events out
// to all of them. It holds no durable state: restarting the process
// loses only live-push capability until clients reconnect.
type Registry struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[uuid.UUID]map[*Subscriber]struct{}),
	}
}

// Register opens a subscriber for userID. The caller owns the
// subscriber's lifecycle and must Unregister it when the transport
// closes.
func (r *Registry) Register(userID uuid.UUID) *Subscriber {
	sub := newSubscriber()

	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		r.subs[userID] = set
	}
	set[sub] = struct{}{}

	log.Printf("sse: user %s connected (%d streams)", userID, len(set))
	return sub
}

// Unregister drops the subscriber; the user's entry goes away entirely
// once its last stream closes.
func (r *Registry) Unregister(userID uuid.UUID, sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[userID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(r.subs, userID)
	}
}

// Publish serializes the payload once and fans the framed event out to
// every stream the user has open. No streams is a silent no-op: live
// delivery is best-effort, the inbox is the source of truth.
func (r *Registry) Publish(userID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("sse: marshal error for %q event: %v", event, err)
		return
	}
	frame := formatEvent(event, data)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for sub := range r.subs[userID] {
		select {
		case sub.C <- frame:
		default:
			// Slow or closing stream; dropping beats blocking the caller.
		}
	}
}

// Streams reports how many streams a user currently has open.
func (r *Registry) Streams(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[userID])
}
