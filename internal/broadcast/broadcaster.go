package broadcast

import (
	"sync"
	"time"

	"auction-engine/internal/models"
	"auction-engine/utils"
)

// EventType enumerates the events the engine publishes. One type per event
// kind; handlers switch on the type instead of string-matching names.
type EventType string

const (
	EventNewBid        EventType = "new_bid"
	EventAuctionUpdate EventType = "auction_update"
	EventAuctionEnded  EventType = "auction_ended"
)

// Event is one published message. Exactly one payload field is set,
// determined by Type.
type Event struct {
	Type      EventType `json:"type"`
	AuctionID string    `json:"auction_id"`

	Bid        *models.Bid           `json:"bid,omitempty"`
	Update     *AuctionUpdatePayload `json:"update,omitempty"`
	WinningBid *models.Bid           `json:"winning_bid,omitempty"`
}

// AuctionUpdatePayload carries the new authoritative bid/end-time pair.
type AuctionUpdatePayload struct {
	CurrentBid int64     `json:"current_bid"`
	EndTime    time.Time `json:"end_time"`
}

// Session is one connected client. Events arrive on C; a session that falls
// behind has events dropped rather than ever blocking a publisher.
type Session struct {
	ID     string
	UserID string
	C      chan Event

	mu     sync.Mutex
	topics map[string]bool
	closed bool
}

// send delivers an event without blocking. Returns false if dropped.
func (s *Session) send(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.C <- ev:
		return true
	default:
		return false
	}
}

// Broadcaster fans events out to the sessions subscribed to each auction.
// Delivery is best-effort with no replay; a reconnecting client must re-fetch
// auction state through the read path.
type Broadcaster struct {
	mu     sync.RWMutex
	topics map[string]*topic
}

// topic holds the subscriber set for one auction. The topic lock is held
// across a full fan-out so every subscriber observes the same event order
// for that auction.
type topic struct {
	mu       sync.Mutex
	sessions map[*Session]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{topics: make(map[string]*topic)}
}

// Connect registers a new session for the given user.
func (b *Broadcaster) Connect(userID string) *Session {
	return &Session{
		ID:     utils.GenerateID(),
		UserID: userID,
		C:      make(chan Event, 64),
		topics: make(map[string]bool),
	}
}

func (b *Broadcaster) topicFor(auctionID string) *topic {
	b.mu.RLock()
	t, ok := b.topics[auctionID]
	b.mu.RUnlock()
	if ok {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok = b.topics[auctionID]; ok {
		return t
	}
	t = &topic{sessions: make(map[*Session]bool)}
	b.topics[auctionID] = t
	return t
}

// Subscribe adds the session to an auction's subscriber set.
func (b *Broadcaster) Subscribe(s *Session, auctionID string) {
	t := b.topicFor(auctionID)
	t.mu.Lock()
	t.sessions[s] = true
	t.mu.Unlock()

	s.mu.Lock()
	s.topics[auctionID] = true
	s.mu.Unlock()
}

// Unsubscribe removes the session from an auction's subscriber set.
func (b *Broadcaster) Unsubscribe(s *Session, auctionID string) {
	b.mu.RLock()
	t, ok := b.topics[auctionID]
	b.mu.RUnlock()
	if ok {
		t.mu.Lock()
		delete(t.sessions, s)
		t.mu.Unlock()
	}

	s.mu.Lock()
	delete(s.topics, auctionID)
	s.mu.Unlock()
}

// Disconnect removes the session from every subscription and closes its
// event channel.
func (b *Broadcaster) Disconnect(s *Session) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	topics := make([]string, 0, len(s.topics))
	for id := range s.topics {
		topics = append(topics, id)
	}
	s.topics = make(map[string]bool)
	s.mu.Unlock()

	for _, auctionID := range topics {
		b.mu.RLock()
		t, ok := b.topics[auctionID]
		b.mu.RUnlock()
		if ok {
			t.mu.Lock()
			delete(t.sessions, s)
			t.mu.Unlock()
		}
	}
	close(s.C)
}

// Publish fans an event out to every session subscribed to its auction.
// Events for one auction reach all subscribers in publish order.
func (b *Broadcaster) Publish(ev Event) {
	t := b.topicFor(ev.AuctionID)

	t.mu.Lock()
	defer t.mu.Unlock()

	dropped := 0
	for s := range t.sessions {
		if !s.send(ev) {
			dropped++
		}
	}
	if dropped > 0 {
		utils.Warn("dropped events for slow subscribers", map[string]any{
			"auction_id": ev.AuctionID,
			"event":      string(ev.Type),
			"dropped":    dropped,
		})
	}
}

// SubscriberCount reports how many sessions watch an auction.
func (b *Broadcaster) SubscriberCount(auctionID string) int {
	b.mu.RLock()
	t, ok := b.topics[auctionID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
