package chat

import (
	"sync"

	"github.com/vbonduro/nutribot/internal/domain"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Kind string

const (
	KindUser        Kind = "user"
	KindPlaceholder Kind = "placeholder"
	KindHelp        Kind = "help"
	KindResult      Kind = "result"
)

// Message is one rendered turn in the conversation. HTML is safe to insert
// into a page as-is; user text is escaped.
type Message struct {
	ID             string                 `json:"id"`
	Role           Role                   `json:"role"`
	Kind           Kind                   `json:"kind"`
	HTML           string                 `json:"html"`
	Recommendation *domain.Recommendation `json:"recommendation,omitempty"`
}

// Final reports whether m ends a turn.
func (m Message) Final() bool {
	return m.Kind == KindHelp || m.Kind == KindResult
}

// Sink receives turns in display order. Append may be called from the
// presenter's timer goroutine, so implementations must be safe for concurrent use.
type Sink interface {
	Append(Message)
}

// Transcript is an append-only, in-memory Sink.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

func (t *Transcript) Append(m Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, m)
}

// Messages returns a snapshot of everything appended so far.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

// ChanSink forwards turns to a buffered channel. Sends never block: if the
// reader has gone away and the buffer is full, the turn is dropped.
type ChanSink struct {
	ch chan Message
}

// NewChanSink returns a sink buffered for size messages.
func NewChanSink(size int) *ChanSink {
	return &ChanSink{ch: make(chan Message, size)}
}

func (s *ChanSink) Append(m Message) {
	select {
	case s.ch <- m:
	default:
	}
}

func (s *ChanSink) C() <-chan Message {
	return s.ch
}
