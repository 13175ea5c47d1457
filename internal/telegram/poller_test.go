package telegram

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"testCraftBot/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func conflictErr() error {
	return &tgbotapi.Error{
		Code:    http.StatusConflict,
		Message: "Conflict: terminated by other getUpdates request",
	}
}

// fakeSource программируется через pollFn; probe- и drain-запросы
// отличаются нулевым таймаутом.
type fakeSource struct {
	mu            sync.Mutex
	events        []string
	webhookActive bool
	pollFn        func(offset int64, timeout, limit int) ([]models.Update, error)
}

func (f *fakeSource) record(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeSource) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.events))
	copy(out, f.events)

	return out
}

func (f *fakeSource) GetUpdates(offset int64, timeout, limit int) ([]models.Update, error) {
	return f.pollFn(offset, timeout, limit)
}

func (f *fakeSource) WebhookActive() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.webhookActive, nil
}

func (f *fakeSource) DeleteWebhook(dropPending bool) error {
	if dropPending {
		f.record("deleteWebhook(drop)")
	} else {
		f.record("deleteWebhook")
	}

	return nil
}

type recordingHandler struct {
	mu      sync.Mutex
	updates []models.Update
}

func (h *recordingHandler) HandleUpdate(_ context.Context, u models.Update) {
	h.mu.Lock()
	h.updates = append(h.updates, u)
	h.mu.Unlock()
}

func (h *recordingHandler) seen() []models.Update {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.Update, len(h.updates))
	copy(out, h.updates)

	return out
}

func newTestPoller(source UpdateSource, handler UpdateHandler) *Poller {
	p := NewPoller(discardLogger(), source, handler)
	p.retryDelay = time.Millisecond
	p.restartDelay = time.Millisecond
	p.drainPause = time.Millisecond

	return p
}

func TestStartWithoutCredentialFails(t *testing.T) {
	p := NewPoller(discardLogger(), nil, nil)

	require.False(t, p.Start(context.Background()))
	require.False(t, p.Running())
}

func TestConcurrentStartYieldsOneLoop(t *testing.T) {
	var active, violations atomic.Int32

	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		if timeout == 0 {
			return nil, nil
		}
		if cur := active.Add(1); cur > 1 {
			violations.Add(1)
		}
		defer active.Add(-1)
		time.Sleep(2 * time.Millisecond)

		return nil, nil
	}

	p := newTestPoller(source, &recordingHandler{})
	defer p.Stop()

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- p.Start(context.Background())
		}()
	}

	first := <-results
	second := <-results

	require.True(t, first)
	require.Equal(t, first, second)
	require.True(t, p.Running())

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, violations.Load(), "more than one concurrent long poll")
}

func TestOffsetAdvancesAfterBatch(t *testing.T) {
	var delivered atomic.Bool

	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		if timeout == 0 {
			return nil, nil
		}
		if delivered.CompareAndSwap(false, true) {
			return []models.Update{
				{ID: 41, Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "/start"}},
				{ID: 42, Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "/start"}},
			}, nil
		}
		time.Sleep(time.Millisecond)

		return nil, nil
	}

	handler := &recordingHandler{}
	p := newTestPoller(source, handler)
	defer p.Stop()

	require.True(t, p.Start(context.Background()))

	require.Eventually(t, func() bool {
		return p.Offset() == 43
	}, time.Second, time.Millisecond)

	seen := handler.seen()
	require.Len(t, seen, 2)
	require.Equal(t, int64(41), seen[0].ID)
	require.Equal(t, int64(42), seen[1].ID)
}

func TestPreflightRemovesWebhook(t *testing.T) {
	source := &fakeSource{webhookActive: true}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		time.Sleep(time.Millisecond)

		return nil, nil
	}

	p := newTestPoller(source, &recordingHandler{})
	defer p.Stop()

	require.True(t, p.Start(context.Background()))
	require.Contains(t, source.recorded(), "deleteWebhook(drop)")
}

func TestConflictRecovery(t *testing.T) {
	var phase atomic.Int32 // 0: конфликт, 1: после очистки, 2: батч отдан

	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		if timeout == 0 {
			return nil, nil
		}
		switch {
		case phase.CompareAndSwap(0, 1):
			return nil, conflictErr()
		case phase.CompareAndSwap(1, 2):
			source.record("batch")
			return []models.Update{
				{ID: 5, Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "/start"}},
			}, nil
		default:
			time.Sleep(time.Millisecond)
			return nil, nil
		}
	}

	handler := &recordingHandler{}
	p := newTestPoller(source, handler)
	defer p.Stop()

	require.True(t, p.Start(context.Background()))

	require.Eventually(t, func() bool {
		return p.Offset() == 6
	}, time.Second, time.Millisecond)

	require.True(t, p.Running())

	// очистка должна случиться до возобновления обработки
	events := source.recorded()
	require.Contains(t, events, "deleteWebhook(drop)")
	drop, batch := -1, -1
	for i, e := range events {
		if e == "deleteWebhook(drop)" && drop == -1 {
			drop = i
		}
		if e == "batch" {
			batch = i
		}
	}
	require.Less(t, drop, batch, "webhook must be cleared before polling resumes")

	require.Len(t, handler.seen(), 1)
}

func TestConflictRestartFailureStopsPermanently(t *testing.T) {
	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		// конкурент не отпускает credential: конфликт на каждом запросе
		return nil, conflictErr()
	}

	handler := &recordingHandler{}
	p := newTestPoller(source, handler)

	require.True(t, p.Start(context.Background()))

	require.Eventually(t, func() bool {
		return !p.Running()
	}, time.Second, time.Millisecond)

	require.Empty(t, handler.seen())

	// рестарт после фатального конфликта не происходит сам по себе
	time.Sleep(10 * time.Millisecond)
	require.False(t, p.Running())
}

func TestStopDropsInflightResult(t *testing.T) {
	release := make(chan struct{})

	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		if timeout == 0 {
			return nil, nil
		}
		<-release

		return []models.Update{
			{ID: 9, Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "/start"}},
		}, nil
	}

	handler := &recordingHandler{}
	p := newTestPoller(source, handler)

	require.True(t, p.Start(context.Background()))
	require.True(t, p.Running())

	p.Stop()
	close(release)

	time.Sleep(10 * time.Millisecond)

	// долгий poll завершился после Stop: батч отброшен, курсор не сдвинут
	require.Empty(t, handler.seen())
	require.Equal(t, int64(0), p.Offset())
	require.False(t, p.Running())
}

func TestStartWaitsForPreviousLoop(t *testing.T) {
	release := make(chan struct{})
	var first atomic.Bool
	first.Store(true)
	var active, violations atomic.Int32

	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		if timeout == 0 {
			return nil, nil
		}
		if cur := active.Add(1); cur > 1 {
			violations.Add(1)
		}
		defer active.Add(-1)
		if first.CompareAndSwap(true, false) {
			<-release
			return nil, nil
		}
		time.Sleep(time.Millisecond)

		return nil, nil
	}

	p := newTestPoller(source, &recordingHandler{})

	require.True(t, p.Start(context.Background()))
	p.Stop()

	started := make(chan bool, 1)
	go func() {
		started <- p.Start(context.Background())
	}()

	// пока старый long-poll висит, новый цикл не поднимается
	select {
	case <-started:
		t.Fatal("second Start completed before the previous loop finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	require.True(t, <-started)
	require.True(t, p.Running())
	require.Zero(t, violations.Load(), "overlapping long polls")

	p.Stop()
}

func TestStartAfterStop(t *testing.T) {
	source := &fakeSource{}
	source.pollFn = func(offset int64, timeout, limit int) ([]models.Update, error) {
		time.Sleep(time.Millisecond)

		return nil, nil
	}

	p := newTestPoller(source, &recordingHandler{})

	require.True(t, p.Start(context.Background()))
	p.Stop()

	require.Eventually(t, func() bool {
		return !p.Running()
	}, time.Second, time.Millisecond)

	require.True(t, p.Start(context.Background()))
	defer p.Stop()
	require.True(t, p.Running())
}
