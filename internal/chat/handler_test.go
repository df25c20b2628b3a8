package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipechat/internal/docstore/memory"
	"recipechat/internal/domain"
)

type fakePipeline struct {
	answer  string
	err     error
	release chan struct{}
}

func (p *fakePipeline) Run(ctx context.Context, query string) (string, error) {
	if p.release != nil {
		<-p.release
	}
	return p.answer, p.err
}

type recorder struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (r *recorder) Send(msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) messages() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Message(nil), r.msgs...)
}

func readyApp(p domain.AnswerPipeline) *App {
	return Ready(&AppContext{Store: memory.NewStorage(), Pipeline: p})
}

func TestHandler_SessionStartSendsWelcome(t *testing.T) {
	rec := &recorder{}
	h := NewHandler(readyApp(&fakePipeline{}), rec, zap.NewNop())

	h.OnSessionStart(context.Background())

	require.Len(t, rec.messages(), 1)
	assert.Equal(t, domain.Message{Author: "System", Content: WelcomeText}, rec.messages()[0])
}

func TestHandler_OnMessageSendsCleanedAnswer(t *testing.T) {
	rec := &recorder{}
	h := NewHandler(readyApp(&fakePipeline{answer: "Intro\nStep 1: mix.\nStep 2: bake."}), rec, zap.NewNop())

	h.OnMessage(context.Background(), "low carb cake")
	h.Wait()

	require.Len(t, rec.messages(), 1)
	assert.Equal(t, domain.Message{Author: "Bot", Content: "Step 1: mix.\nStep 2: bake."}, rec.messages()[0])
	assert.Equal(t, Idle, h.State())
}

func TestHandler_OnMessageDoesNotBlock(t *testing.T) {
	rec := &recorder{}
	p := &fakePipeline{answer: "Intro\nDone.", release: make(chan struct{})}
	h := NewHandler(readyApp(p), rec, zap.NewNop())

	done := make(chan struct{})
	go func() {
		h.OnMessage(context.Background(), "first")
		h.OnMessage(context.Background(), "second")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnMessage blocked on the pipeline")
	}
	assert.Equal(t, Generating, h.State())
	assert.Empty(t, rec.messages())

	close(p.release)
	h.Wait()
	assert.Equal(t, Idle, h.State())
	assert.Len(t, rec.messages(), 2)
}

func TestHandler_GenerationErrorBecomesApology(t *testing.T) {
	err := &domain.GenerationError{Model: "m", Err: errors.New("401 unauthorized")}
	h := NewHandler(readyApp(&fakePipeline{err: err}), nil, zap.NewNop())

	msg := h.Respond(context.Background(), "anything")
	assert.Equal(t, domain.Message{Author: "Bot", Content: ApologyText}, msg)
}

func TestHandler_Unavailable(t *testing.T) {
	rec := &recorder{}
	app := Unavailable(&domain.DatasetLoadError{Source: "HC-85/open-food-facts", Err: errors.New("timeout")})
	h := NewHandler(app, rec, zap.NewNop())

	h.OnSessionStart(context.Background())
	h.OnMessage(context.Background(), "high protein dinner")
	h.Wait()

	msgs := rec.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, WelcomeText, msgs[0].Content)
	assert.Equal(t, "System", msgs[1].Author)
	assert.Contains(t, msgs[1].Content, UnavailableText)
	assert.Contains(t, msgs[1].Content, "HC-85/open-food-facts")
}

func TestHandler_AudioChunkIgnored(t *testing.T) {
	rec := &recorder{}
	h := NewHandler(readyApp(&fakePipeline{}), rec, zap.NewNop())

	h.OnAudioChunk(context.Background(), []byte{0x01, 0x02})

	assert.Empty(t, rec.messages())
	assert.Equal(t, Idle, h.State())
}

func TestHandler_SendErrorIsLogged(t *testing.T) {
	h := NewHandler(readyApp(&fakePipeline{}), SenderFunc(func(domain.Message) error {
		return errors.New("closed")
	}), zap.NewNop())

	assert.NotPanics(t, func() { h.OnSessionStart(context.Background()) })
}

func TestHandler_IDsAreUnique(t *testing.T) {
	app := readyApp(&fakePipeline{})
	a := NewHandler(app, nil, zap.NewNop())
	b := NewHandler(app, nil, zap.NewNop())

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestApp_Lifecycle(t *testing.T) {
	ready := readyApp(&fakePipeline{})
	assert.True(t, ready.Available())
	assert.NoError(t, ready.Reason())
	assert.NoError(t, ready.Close())

	down := Unavailable(nil)
	assert.False(t, down.Available())
	assert.Nil(t, down.Context())
	assert.EqualError(t, down.Reason(), "not initialized")
	assert.NoError(t, down.Close())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "generating", Generating.String())
}
