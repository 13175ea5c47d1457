package telegram

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"testCraftBot/internal/domain/models"
	"testCraftBot/internal/pkg/logger/sl"
	tgclient "testCraftBot/internal/pkg/tg"
)

type UpdateSource interface {
	GetUpdates(offset int64, timeout int, limit int) ([]models.Update, error)
	WebhookActive() (bool, error)
	DeleteWebhook(dropPending bool) error
}

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u models.Update)
}

type pollerState int

const (
	stateStopped pollerState = iota
	stateStarting
	stateRunning
	stateRecovering
)

// Poller — единственный в процессе потребитель update-очереди.
// Платформа сама следит за тем, чтобы consumer был один на credential,
// и отвечает 409 второму; локальный mutex — лишь быстрый отказ для
// конкурентных Start.
type Poller struct {
	log     *slog.Logger
	source  UpdateSource
	handler UpdateHandler

	mu          sync.Mutex
	state       pollerState
	inflight    chan struct{}
	startResult bool
	cancel      context.CancelFunc
	done        chan struct{}

	offset atomic.Int64

	pollTimeout   int
	updateLimit   int
	retryDelay    time.Duration
	restartDelay  time.Duration
	drainAttempts int
	drainPause    time.Duration
}

func NewPoller(log *slog.Logger, source UpdateSource, handler UpdateHandler) *Poller {
	return &Poller{
		log:           log,
		source:        source,
		handler:       handler,
		pollTimeout:   10,
		updateLimit:   100,
		retryDelay:    3 * time.Second,
		restartDelay:  5 * time.Second,
		drainAttempts: 3,
		drainPause:    time.Second,
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state == stateRunning || p.state == stateRecovering
}

// Offset — следующий запрашиваемый update id; не убывает.
func (p *Poller) Offset() int64 {
	return p.offset.Load()
}

// Start идемпотентен: конкурентные вызовы дожидаются одной общей
// попытки запуска и наблюдают один и тот же результат. false означает
// невосстановимую ошибку конфигурации (нет credential).
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	switch p.state {
	case stateRunning, stateRecovering:
		p.mu.Unlock()
		return true
	case stateStarting:
		ch := p.inflight
		p.mu.Unlock()
		<-ch

		p.mu.Lock()
		defer p.mu.Unlock()
		return p.startResult
	}
	p.state = stateStarting
	p.inflight = make(chan struct{})
	ch := p.inflight
	p.mu.Unlock()

	ok := p.start(ctx)

	p.mu.Lock()
	if !ok && p.state == stateStarting {
		p.state = stateStopped
	}
	p.startResult = ok
	p.mu.Unlock()
	close(ch)

	return ok
}

// Stop кооперативен: дальнейшие итерации не планируются, но уже
// ушедший long-poll не прерывается — его результат будет отброшен
// по проверке контекста.
func (p *Poller) Stop() {
	const op = "Poller.Stop"

	p.mu.Lock()
	if p.state == stateStopped {
		p.mu.Unlock()
		return
	}
	p.state = stateStopped
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	p.log.Info("polling stop requested", slog.String("op", op))
}

func (p *Poller) start(ctx context.Context) bool {
	const op = "Poller.start"

	log := p.log.With(slog.String("op", op))

	if p.source == nil {
		log.Error("bot credential is not configured, polling disabled")
		return false
	}

	p.mu.Lock()
	prev := p.done
	p.done = nil
	p.mu.Unlock()

	// предыдущий цикл мог ещё держать long-poll после Stop(); пока он
	// не вернулся, второй consumer на том же credential словит 409
	if prev != nil {
		<-prev
	}

	p.preflight(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	if p.state != stateStarting {
		// Stop() успел раньше: цикл не запускаем
		p.mu.Unlock()
		cancel()
		return false
	}
	p.state = stateRunning
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(runCtx, done)

	log.Info("polling started")

	return true
}

// preflight выполняется один раз перед запуском цикла: активный webhook
// сам по себе конфликтует с polling и удаляется с drop-pending; короткий
// probe ловит живого конкурента.
func (p *Poller) preflight(ctx context.Context) {
	const op = "Poller.preflight"

	log := p.log.With(slog.String("op", op))

	active, err := p.source.WebhookActive()
	if err != nil {
		log.Warn("failed to check webhook state", sl.Err(err))
	}
	if active {
		log.Warn("registered webhook conflicts with polling, removing")
		if err := p.source.DeleteWebhook(true); err != nil {
			log.Warn("failed to delete webhook", sl.Err(err))
		}
	}

	// offset не двигаем: попавший в probe update переиграется циклом
	if _, err := p.source.GetUpdates(p.offset.Load(), 0, 1); tgclient.IsConflict(err) {
		log.Warn("rival consumer detected before start, forcing clear")
		p.forceClear(ctx)
	}
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	const op = "Poller.run"

	defer close(done)

	log := p.log.With(slog.String("op", op))

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := p.source.GetUpdates(p.offset.Load(), p.pollTimeout, p.updateLimit)

		// long-poll мог вернуться уже после Stop(): side effects не применяем
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if tgclient.IsConflict(err) {
				if !p.recoverConflict(ctx) {
					return
				}
				continue
			}

			log.Warn("transient polling error", sl.Err(err))
			if !sleepCtx(ctx, p.retryDelay) {
				return
			}
			continue
		}

		if len(updates) == 0 {
			continue
		}

		for _, u := range updates {
			// курсор ещё не сдвинут: недообработанный батч переиграется
			if ctx.Err() != nil {
				return
			}
			p.handler.HandleUpdate(ctx, u)
		}

		p.offset.Store(updates[len(updates)-1].ID + 1)
	}
}

// recoverConflict — реактивная часть разрешения конфликтов: остановка,
// принудительная очистка, пауза и ровно одна попытка рестарта. Вечный
// цикл перезапусков при живом конкуренте недопустим.
func (p *Poller) recoverConflict(ctx context.Context) bool {
	const op = "Poller.recoverConflict"

	log := p.log.With(slog.String("op", op))

	if !p.transition(stateRunning, stateRecovering) {
		return false
	}

	log.Error("conflicting consumer detected, entering recovery")

	p.forceClear(ctx)

	if !sleepCtx(ctx, p.restartDelay) {
		return false
	}

	if _, err := p.source.GetUpdates(p.offset.Load(), 0, 1); tgclient.IsConflict(err) {
		// отличимо от transient-ошибок: оператору нужно разбираться,
		// кто ещё использует этот credential
		log.Error("restart after conflict failed: another process keeps consuming this credential, polling stopped")

		p.mu.Lock()
		if p.state == stateRecovering {
			p.state = stateStopped
		}
		p.mu.Unlock()

		return false
	}

	if !p.transition(stateRecovering, stateRunning) {
		return false
	}

	log.Info("conflict cleared, polling resumed")

	return true
}

// forceClear удаляет webhook (drop pending) и ограниченным числом
// коротких запросов осушает очередь, терпя повторные 409.
func (p *Poller) forceClear(ctx context.Context) {
	const op = "Poller.forceClear"

	log := p.log.With(slog.String("op", op))

	if err := p.source.DeleteWebhook(true); err != nil {
		log.Warn("failed to delete webhook", sl.Err(err))
	}

	for attempt := 1; attempt <= p.drainAttempts; attempt++ {
		updates, err := p.source.GetUpdates(p.offset.Load(), 0, p.updateLimit)
		if err != nil {
			log.Warn("drain attempt failed",
				slog.Int("attempt", attempt), sl.Err(err))
			if !sleepCtx(ctx, p.drainPause) {
				return
			}
			continue
		}

		if len(updates) == 0 {
			return
		}

		p.offset.Store(updates[len(updates)-1].ID + 1)
	}
}

func (p *Poller) transition(from, to pollerState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != from {
		return false
	}
	p.state = to

	return true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
