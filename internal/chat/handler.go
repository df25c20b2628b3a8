package chat

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipechat/internal/domain"
	"recipechat/internal/postprocess"
)

const (
	WelcomeText     = "Welcome to the Recipe Generator! Please enter your nutritional values and dietary requirements."
	ApologyText     = "Sorry, I could not generate a recipe right now. Please try again in a moment."
	UnavailableText = "The recipe generator is unavailable"
)

// State is the observable state of a chat session.
type State int

const (
	Idle State = iota
	Generating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	default:
		return "unknown"
	}
}

// Sender delivers an outbound chat message to the user.
type Sender interface {
	Send(msg domain.Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg domain.Message) error

func (f SenderFunc) Send(msg domain.Message) error { return f(msg) }

// Handler reacts to the events of one chat session.
// Messages are not serialized: several generations may run at once and their
// replies may arrive out of order.
type Handler struct {
	id       string
	app      *App
	sender   Sender
	logger   *zap.Logger
	inFlight atomic.Int32
	wg       sync.WaitGroup
}

func NewHandler(app *App, sender Sender, logger *zap.Logger) *Handler {
	id := uuid.NewString()
	return &Handler{
		id:     id,
		app:    app,
		sender: sender,
		logger: logger.With(zap.String("session_id", id)),
	}
}

// ID returns the session identifier.
func (h *Handler) ID() string { return h.id }

// State reports Generating while at least one message is being answered.
func (h *Handler) State() State {
	if h.inFlight.Load() > 0 {
		return Generating
	}
	return Idle
}

// Welcome returns the greeting emitted on session start.
func (h *Handler) Welcome() domain.Message {
	return domain.Message{Author: domain.AuthorSystem, Content: WelcomeText}
}

// OnSessionStart emits the welcome message.
func (h *Handler) OnSessionStart(ctx context.Context) {
	h.logger.Info("session started", zap.Bool("available", h.app.Available()))
	h.send(h.Welcome())
}

// OnMessage answers text on a separate goroutine and returns immediately.
func (h *Handler) OnMessage(ctx context.Context, text string) {
	h.inFlight.Add(1)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.inFlight.Add(-1)
		h.send(h.respond(ctx, text))
	}()
}

// Respond answers text synchronously. Transports that already run work off
// their event loop call this directly.
func (h *Handler) Respond(ctx context.Context, text string) domain.Message {
	h.inFlight.Add(1)
	defer h.inFlight.Add(-1)
	return h.respond(ctx, text)
}

// OnAudioChunk accepts audio input and ignores it.
func (h *Handler) OnAudioChunk(ctx context.Context, chunk []byte) {
	h.logger.Debug("audio chunk ignored", zap.Int("bytes", len(chunk)))
}

// Wait blocks until every message dispatched with OnMessage has been answered.
func (h *Handler) Wait() { h.wg.Wait() }

func (h *Handler) respond(ctx context.Context, text string) domain.Message {
	if !h.app.Available() {
		h.logger.Warn("message received while unavailable", zap.Error(h.app.Reason()))
		return domain.Message{
			Author:  domain.AuthorSystem,
			Content: UnavailableText + ": " + h.app.Reason().Error(),
		}
	}
	h.logger.Info("message received", zap.Int("len", len(text)))
	answer, err := h.app.Context().Pipeline.Run(ctx, text)
	if err != nil {
		h.logger.Error("pipeline failed", zap.Error(err))
		return domain.Message{Author: domain.AuthorBot, Content: ApologyText}
	}
	return domain.Message{Author: domain.AuthorBot, Content: postprocess.Clean(answer)}
}

func (h *Handler) send(msg domain.Message) {
	if h.sender == nil {
		return
	}
	if err := h.sender.Send(msg); err != nil {
		h.logger.Warn("send failed", zap.String("author", msg.Author), zap.Error(err))
	}
}
