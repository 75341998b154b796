// Package chat runs one conversational turn at a time: it echoes the user,
// answers help directly, and otherwise posts a placeholder before the
// recommendation arrives after a short simulated thinking delay.
package chat

import (
	"html/template"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/nutribot/internal/domain"
	"github.com/vbonduro/nutribot/internal/parser"
	"github.com/vbonduro/nutribot/internal/recommend"
)

// DefaultDelay is the simulated thinking time before a result turn.
const DefaultDelay = 700 * time.Millisecond

type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting-result"
	}
	return "idle"
}

// Scheduler runs f once after d. It must not block the caller.
type Scheduler func(d time.Duration, f func())

func afterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type Option func(*Presenter)

func WithDelay(d time.Duration) Option {
	return func(p *Presenter) { p.delay = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) { p.logger = logger }
}

// WithScheduler replaces time.AfterFunc, mainly so tests can run the deferred
// continuation synchronously.
func WithScheduler(s Scheduler) Option {
	return func(p *Presenter) { p.schedule = s }
}

type Presenter struct {
	engine   *recommend.Engine
	sink     Sink
	delay    time.Duration
	schedule Scheduler
	logger   *slog.Logger
	pending  atomic.Int32
}

func NewPresenter(engine *recommend.Engine, sink Sink, opts ...Option) *Presenter {
	p := &Presenter{
		engine:   engine,
		sink:     sink,
		delay:    DefaultDelay,
		schedule: afterFunc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsHelp reports whether text asks for the usage message.
func IsHelp(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "help")
}

// Submit starts a turn for raw. Blank input is ignored and Submit returns
// false. Submissions are not serialized: a second Submit during the delay
// schedules its own result and both land on the sink.
func (p *Presenter) Submit(raw string) bool {
	text := strings.TrimSpace(raw)
	if text == "" {
		return false
	}

	p.sink.Append(newMessage(RoleUser, KindUser, template.HTMLEscapeString(text), nil))

	if IsHelp(text) {
		p.sink.Append(p.helpMessage())
		return true
	}

	// The placeholder is left in place once the result arrives.
	p.sink.Append(newMessage(RoleBot, KindPlaceholder, placeholderHTML, nil))

	p.pending.Add(1)
	p.schedule(p.delay, func() {
		defer p.pending.Add(-1)
		p.sink.Append(p.Reply(text))
	})
	return true
}

// State reports whether any submitted turn is still waiting for its result.
func (p *Presenter) State() State {
	if p.pending.Load() > 0 {
		return StateAwaiting
	}
	return StateIdle
}

// Reply parses text and renders the recommendation turn without any delay.
func (p *Presenter) Reply(text string) Message {
	intent := parser.Parse(text)
	rec := p.engine.Recommend(intent)

	p.logger.Debug("recommendation ready",
		"weight", rec.Weight,
		"goal", rec.Goal,
		"craving", rec.Craving,
		"match", rec.Match,
		"items", len(rec.Items),
	)

	html, err := Render(rec)
	if err != nil {
		p.logger.Error("failed to render recommendation", "error", err)
		html = template.HTMLEscapeString("Sorry, I could not put that recommendation together.")
	}
	return newMessage(RoleBot, KindResult, html, &rec)
}

func (p *Presenter) helpMessage() Message {
	html, err := RenderHelp()
	if err != nil {
		p.logger.Error("failed to render help", "error", err)
		html = "Try: 70kg craving nachos want to lose weight"
	}
	return newMessage(RoleBot, KindHelp, html, nil)
}

func newMessage(role Role, kind Kind, html string, rec *domain.Recommendation) Message {
	return Message{
		ID:             uuid.NewString(),
		Role:           role,
		Kind:           kind,
		HTML:           html,
		Recommendation: rec,
	}
}
