package services

import (
	"sync"

	"github.com/nicawallet/wallet-api/models"
)

// Subscription is a live view over one user's ledger. C carries full
// replacement snapshots, never diffs. The channel is conflating: a slow
// consumer only ever skips intermediate snapshots, it never sees a partial
// one and never blocks writers.
type Subscription struct {
	C <-chan []models.Transaction

	ch     chan []models.Transaction
	hub    *snapshotHub
	userID string
	id     int
	once   sync.Once
}

// Cancel detaches the subscription and closes C. It is synchronous with
// respect to delivery: once Cancel returns, nothing more is sent. Safe to
// call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.hub != nil {
			s.hub.cancel(s.userID, s.id)
		}
		close(s.ch)
	})
}

// snapshotHub fans snapshots out to per-user subscribers. Publication and
// cancellation share one lock, which is what makes Cancel synchronous.
type snapshotHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*Subscription
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[string]map[int]*Subscription)}
}

func (h *snapshotHub) subscribe(userID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan []models.Transaction, 1)
	sub := &Subscription{C: ch, ch: ch, hub: h, userID: userID, id: h.nextID}

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]*Subscription)
	}
	h.subs[userID][sub.id] = sub
	return sub
}

func (h *snapshotHub) cancel(userID string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[userID]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.subs, userID)
		}
	}
}

// publish delivers a snapshot to every live subscriber of the user. The
// buffered channel holds the latest snapshot only: if the consumer has not
// drained the previous one it is replaced.
func (h *snapshotHub) publish(userID string, snapshot []models.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[userID] {
		select {
		case sub.ch <- snapshot:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snapshot:
			default:
			}
		}
	}
}

// sendInitial delivers the first snapshot to a newly opened subscription. It
// runs under the same lock as cancel, and only touches the channel while the
// subscription is still registered: cancellation always wins the race, and a
// concurrent publish cannot be clobbered by an older snapshot.
func (h *snapshotHub) sendInitial(sub *Subscription, snapshot []models.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.userID][sub.id]; !ok {
		return
	}
	select {
	case sub.ch <- snapshot:
	default:
	}
}

// cancelAll collects a user's subscriptions and cancels them. Used on logout
// and account deletion, where the session itself goes away.
func (h *snapshotHub) cancelAll(userID string) {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs[userID]))
	for _, sub := range h.subs[userID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	// Cancel re-acquires the lock, so it runs outside the critical section.
	for _, sub := range subs {
		sub.Cancel()
	}
}
