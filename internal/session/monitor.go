package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ryssroad/discord-ai/config"
	"github.com/ryssroad/discord-ai/internal/dialog"
	"github.com/ryssroad/discord-ai/internal/llm"
	"github.com/ryssroad/discord-ai/internal/model"
	"github.com/ryssroad/discord-ai/internal/timing"
)

const (
	fetchLimit          = 50
	personalContextSize = 10
	channelContextSize  = 20
	errorBackoff        = 30 * time.Second
	dedupWindow         = 4096
)

// Transport is the channel-facing surface one session needs.
type Transport interface {
	FetchRecent(ctx context.Context, limit int) ([]model.RawMessage, error)
	Send(ctx context.Context, content string, replyTo *model.ReplyRef) error
	SignalTyping(ctx context.Context) error
}

// Store is the durable message log and audit trail.
type Store interface {
	SaveMessage(ctx context.Context, accountID string, rec model.DialogRecord, isBot bool) error
	MessageExists(ctx context.Context, accountID, messageID string) (bool, error)
	GetDialogContext(ctx context.Context, accountID, userID string, limit int) (model.DialogContext, error)
	SaveLog(ctx context.Context, accountID, text string) error
}

// Status is a point-in-time snapshot of one session, for the ops surface.
type Status struct {
	AccountID    string    `json:"account_id"`
	ChannelID    string    `json:"channel_id"`
	State        string    `json:"state"`
	LastPollAt   time.Time `json:"last_poll_at"`
	RepliesSent  int64     `json:"replies_sent"`
	AmbientPosts int64     `json:"ambient_posts"`
	Failures     int64     `json:"failures"`
}

// Monitor drives one account's continuous loop: sleep, fetch, classify,
// select, respond, ambient-check, repeat. It owns all per-account state and
// shares nothing with other sessions except the store.
type Monitor struct {
	accountID string
	channelID string

	transport Transport
	store     Store
	generator llm.Provider
	emulator  *timing.Emulator
	logger    *zap.Logger

	pollInterval  [2]float64
	interResponse [2]float64
	ambientProb   float64

	rng       *rand.Rand
	processed *dedupSet
	sleep     func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	status Status
}

func NewMonitor(
	acc config.AccountConfig,
	eng config.EngineConfig,
	tr Transport,
	st Store,
	gen llm.Provider,
	logger *zap.Logger,
) *Monitor {
	return &Monitor{
		accountID:     acc.UserID,
		channelID:     acc.ChannelID,
		transport:     tr,
		store:         st,
		generator:     gen,
		emulator:      &timing.Emulator{},
		logger:        logger,
		pollInterval:  [2]float64{eng.PollIntervalMin, eng.PollIntervalMax},
		interResponse: [2]float64{eng.InterResponseMin, eng.InterResponseMax},
		ambientProb:   eng.AmbientProbability,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		processed:     newDedupSet(dedupWindow),
		sleep:         timing.SleepContext,
		status:        Status{AccountID: acc.UserID, ChannelID: acc.ChannelID, State: "sleeping"},
	}
}

// Run loops forever until the context is cancelled. Iteration failures are
// logged and answered with a fixed backoff; the session never stops itself.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("start monitoring loop", zap.String("account", m.accountID))

	for {
		m.setState("sleeping")
		if err := m.sleep(ctx, m.uniformDelay(m.pollInterval)); err != nil {
			return err
		}

		out := m.iterate(ctx)
		if out.failure() {
			m.bumpFailures()
			m.logger.Error("monitor iteration failed",
				zap.String("account", m.accountID),
				zap.Error(out.err))
			m.setState("backoff")
			if err := m.sleep(ctx, errorBackoff); err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// iterate runs one fetch-classify-select-respond cycle.
func (m *Monitor) iterate(ctx context.Context) outcome {
	m.setState("fetching")
	raw, err := m.transport.FetchRecent(ctx, fetchLimit)
	if err != nil {
		// A failed fetch means "nothing to do this cycle", not an error.
		m.logger.Warn("fetch failed, skipping cycle",
			zap.String("account", m.accountID),
			zap.Error(err))
		return noData()
	}
	m.markPolled()
	if len(raw) == 0 {
		return noData()
	}

	m.setState("classifying")
	fresh := raw[:0:0]
	for _, msg := range raw {
		if !m.processed.has(msg.ID) {
			fresh = append(fresh, msg)
		}
	}
	buckets := dialog.Classify(fresh, m.accountID)

	m.setState("selecting")
	selected := dialog.Select(m.rng, buckets)

	var firstFailure outcome
	for i, rec := range selected {
		if skip, out := m.alreadyStored(ctx, rec.ID); out.failure() {
			firstFailure = pickFailure(firstFailure, out)
			continue
		} else if skip {
			m.processed.add(rec.ID)
			continue
		}

		// One bad reply must not abort the rest of the cycle.
		if out := m.respond(ctx, raw, rec); out.failure() {
			firstFailure = pickFailure(firstFailure, out)
			continue
		}

		m.processed.add(rec.ID)
		m.bumpReplies()

		if i < len(selected)-1 {
			if err := m.sleep(ctx, m.uniformDelay(m.interResponse)); err != nil {
				return failed(outcomeTransportFailed, err)
			}
		}
	}
	if firstFailure.failure() {
		return firstFailure
	}

	if len(selected) == 0 {
		if out := m.ambientCheck(ctx, raw); out.failure() {
			return out
		}
	}

	m.setState("sleeping")
	return ok()
}

// respond handles one selected message end to end: persist it, assemble
// context, generate, emulate typing, send, persist the reply, audit.
func (m *Monitor) respond(ctx context.Context, raw []model.RawMessage, rec model.DialogRecord) outcome {
	m.setState("responding")

	if err := m.store.SaveMessage(ctx, m.accountID, rec, false); err != nil {
		m.logger.Error("failed to persist incoming message",
			zap.String("account", m.accountID),
			zap.Error(err))
	}

	personalCtx, err := m.store.GetDialogContext(ctx, m.accountID, rec.AuthorID, personalContextSize)
	if err != nil {
		// Degrade to an empty context rather than dropping the reply.
		m.logger.Warn("dialog context unavailable, using empty",
			zap.String("account", m.accountID),
			zap.String("user", rec.AuthorID),
			zap.Error(err))
		personalCtx = model.DialogContext{UserID: rec.AuthorID}
	}

	personal := make([]string, 0, len(personalCtx.Messages))
	for _, msg := range personalCtx.Messages {
		personal = append(personal, msg.Content)
	}

	reply, err := m.generator.Generate(ctx, llm.GenerateRequest{
		PersonalHistory: personal,
		ChannelContext:  channelContext(raw),
		CurrentMessage:  rec.Content,
		IsReply:         true,
	})
	if err != nil {
		return failed(outcomeGenerationFailed, fmt.Errorf("generate reply to %s: %w", rec.ID, err))
	}

	m.humanizeSend(ctx, reply)
	if err := m.transport.Send(ctx, reply, &model.ReplyRef{
		MessageID: rec.ID,
		ChannelID: m.channelID,
	}); err != nil {
		return failed(outcomeTransportFailed, err)
	}

	m.persistReply(ctx, reply, rec.ID)
	m.audit(ctx, fmt.Sprintf("[SEND] Replied to user %s, msgId=%s\nContent=%s",
		rec.AuthorID, rec.ID, reply))
	return ok()
}

// ambientCheck posts an unprompted remark at low probability when nothing in
// the batch deserved a reply.
func (m *Monitor) ambientCheck(ctx context.Context, raw []model.RawMessage) outcome {
	if m.rng.Float64() >= m.ambientProb {
		return ok()
	}
	m.setState("responding")
	m.logger.Debug("posting ambient message", zap.String("account", m.accountID))

	reply, err := m.generator.Generate(ctx, llm.GenerateRequest{
		ChannelContext: channelContext(raw),
		IsReply:        false,
	})
	if err != nil {
		return failed(outcomeGenerationFailed, fmt.Errorf("generate ambient post: %w", err))
	}

	m.humanizeSend(ctx, reply)
	if err := m.transport.Send(ctx, reply, nil); err != nil {
		return failed(outcomeTransportFailed, err)
	}

	m.persistReply(ctx, reply, "")
	m.audit(ctx, fmt.Sprintf("[SEND] Unprompted channel message.\nContent=%s", reply))
	m.bumpAmbient()
	return ok()
}

// humanizeSend emulates the typing indicator for one drawn duration, then
// waits a second independently drawn duration before the actual post. The
// double draw reproduces the observed behavior of the original bots.
func (m *Monitor) humanizeSend(ctx context.Context, reply string) {
	length := utf8.RuneCountInString(reply)

	m.emulator.EmulateTyping(ctx, m.transport, timing.TypingDuration(m.rng, length))
	_ = m.sleep(ctx, timing.TypingDuration(m.rng, length))
}

func (m *Monitor) persistReply(ctx context.Context, reply, referencedID string) {
	rec := model.DialogRecord{
		ID:                  "bot_" + uuid.NewString(),
		Content:             reply,
		AuthorID:            m.accountID,
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
		ReferencedMessageID: referencedID,
	}
	if err := m.store.SaveMessage(ctx, m.accountID, rec, true); err != nil {
		m.logger.Error("failed to persist reply",
			zap.String("account", m.accountID),
			zap.Error(err))
	}
}

func (m *Monitor) audit(ctx context.Context, text string) {
	if err := m.store.SaveLog(ctx, m.accountID, text); err != nil {
		m.logger.Error("failed to write audit log",
			zap.String("account", m.accountID),
			zap.Error(err))
	}
}

// alreadyStored consults the durable store for a message id, covering dedup
// across restarts and past the in-memory window.
func (m *Monitor) alreadyStored(ctx context.Context, id string) (bool, outcome) {
	exists, err := m.store.MessageExists(ctx, m.accountID, id)
	if err != nil {
		return false, failed(outcomeStoreFailed, err)
	}
	return exists, ok()
}

func channelContext(raw []model.RawMessage) []string {
	start := 0
	if len(raw) > channelContextSize {
		start = len(raw) - channelContextSize
	}
	contents := make([]string, 0, len(raw)-start)
	for _, msg := range raw[start:] {
		contents = append(contents, msg.Content)
	}
	return contents
}

func (m *Monitor) uniformDelay(bounds [2]float64) time.Duration {
	lo, hi := bounds[0], bounds[1]
	if hi < lo {
		hi = lo
	}
	seconds := lo + m.rng.Float64()*(hi-lo)
	return time.Duration(seconds * float64(time.Second))
}

func pickFailure(current, next outcome) outcome {
	if current.failure() {
		return current
	}
	return next
}

// Status returns a snapshot for the ops surface.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) setState(state string) {
	m.mu.Lock()
	m.status.State = state
	m.mu.Unlock()
}

func (m *Monitor) markPolled() {
	m.mu.Lock()
	m.status.LastPollAt = time.Now()
	m.mu.Unlock()
}

func (m *Monitor) bumpReplies() {
	m.mu.Lock()
	m.status.RepliesSent++
	m.mu.Unlock()
}

func (m *Monitor) bumpAmbient() {
	m.mu.Lock()
	m.status.AmbientPosts++
	m.mu.Unlock()
}

func (m *Monitor) bumpFailures() {
	m.mu.Lock()
	m.status.Failures++
	m.mu.Unlock()
}
