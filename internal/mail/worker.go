package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail/entity"
)

// WorkerConfig is populated from the MAIL_* environment variables.
type WorkerConfig struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"20"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	Workers      int           `env:"WORKERS" envDefault:"2"`
	Lease        time.Duration `env:"LEASE" envDefault:"5m"`
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	return c
}

// Outbox is the worker's view of the mail_outbox table.
type Outbox interface {
	Pending(ctx context.Context, limit int, lease time.Duration) ([]*entity.Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause error, maxAttempts int) error
}

var errUnknownKind = errors.New("unknown mail kind")

// Worker drains the outbox. It polls every PollInterval and wakes early
// on Notify.
type Worker struct {
	outbox  Outbox
	sender  Sender
	logger  *zap.SugaredLogger
	cfg     WorkerConfig
	appName string
	wake    chan struct{}
}

func NewWorker(outbox Outbox, sender Sender, cfg WorkerConfig, appName string, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		outbox:  outbox,
		sender:  sender,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		appName: appName,
		wake:    make(chan struct{}, 1),
	}
}

// Notify asks the worker to drain the outbox now. It never blocks.
func (w *Worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run drains the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Infow("mail worker started", "workers", w.cfg.Workers, "interval", w.cfg.PollInterval.String())
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		w.Drain(ctx)
		select {
		case <-ctx.Done():
			w.logger.Infow("mail worker stopped")
			return
		case <-ticker.C:
		case <-w.wake:
		}
	}
}

// Drain claims and sends batches until the outbox has nothing pending.
func (w *Worker) Drain(ctx context.Context) {
	for ctx.Err() == nil {
		msgs, err := w.outbox.Pending(ctx, w.cfg.BatchSize, w.cfg.Lease)
		if err != nil {
			w.logger.Errorw("claim mail failed", "err", err)
			return
		}
		if len(msgs) == 0 {
			return
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.cfg.Workers)
		for _, m := range msgs {
			g.Go(func() error {
				w.process(gctx, m)
				return nil
			})
		}
		_ = g.Wait()
		if len(msgs) < w.cfg.BatchSize {
			return
		}
	}
}

func (w *Worker) process(ctx context.Context, m *entity.Message) {
	mail, err := w.build(m)
	if err == nil {
		err = w.sender.Send(ctx, mail)
	}
	// Bookkeeping outlives a cancelled run so claimed rows are released.
	bg := context.WithoutCancel(ctx)
	if err != nil {
		w.logger.Warnw("mail delivery failed", "id", m.ID, "kind", m.Kind, "attempt", m.Attempts+1, "err", err)
		if mErr := w.outbox.MarkFailed(bg, m.ID, err, w.cfg.MaxAttempts); mErr != nil {
			w.logger.Errorw("mark mail failed", "id", m.ID, "err", mErr)
		}
		return
	}
	if mErr := w.outbox.MarkSent(bg, m.ID); mErr != nil {
		w.logger.Errorw("mark mail sent", "id", m.ID, "err", mErr)
		return
	}
	w.logger.Infow("mail sent", "id", m.ID, "kind", m.Kind)
}

func (w *Worker) build(m *entity.Message) (Mail, error) {
	switch m.Kind {
	case entity.KindWelcome:
		var p entity.WelcomePayload
		if err := json.Unmarshal(m.Payload, &p); err != nil {
			return Mail{}, fmt.Errorf("decode welcome payload: %w", err)
		}
		return WelcomeMail(w.appName, p.Receiver, p.Name)
	default:
		return Mail{}, fmt.Errorf("%w: %s", errUnknownKind, m.Kind)
	}
}

// WelcomeMail renders the welcome message for receiver.
func WelcomeMail(appName, receiver, name string) (Mail, error) {
	html, err := RenderTemplate("auth/welcome.html", WelcomeData{AppName: appName, Name: name})
	if err != nil {
		return Mail{}, err
	}
	return Mail{
		Receivers:   []string{receiver},
		Subject:     "Welcome to " + appName,
		HTMLContent: html,
	}, nil
}
