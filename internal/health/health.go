// Package health serves the liveness probe and periodically checks the
// database connection.
package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler answers GET /health with a plain "ok".
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// DB is satisfied by *sqlx.DB and *sql.DB.
type DB interface {
	PingContext(ctx context.Context) error
}

// Pinger pings the database on a fixed interval and logs the outcome.
type Pinger struct {
	db       DB
	interval time.Duration
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

func NewPinger(db DB, interval time.Duration, logger *zap.SugaredLogger) *Pinger {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Pinger{db: db, interval: interval, timeout: 5 * time.Second, logger: logger}
}

// Check pings once.
func (p *Pinger) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.db.PingContext(ctx); err != nil {
		p.logger.Warnw("db health check failed", "err", err)
		return err
	}
	p.logger.Debugw("db health check ok")
	return nil
}

// Run checks every interval until ctx is cancelled.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Check(ctx)
		}
	}
}
