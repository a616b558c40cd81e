package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail/entity"
)

const messageColumns = `id, kind, payload, status, attempts, last_error, created_at, claimed_at, sent_at`

// OutboxRepo provides data access for the mail_outbox table.
type OutboxRepo struct {
	db sqlx.ExtContext
}

// NewOutboxRepo binds the repository to db. Pass the request scope to
// enqueue inside the caller's transaction.
func NewOutboxRepo(db sqlx.ExtContext) *OutboxRepo { return &OutboxRepo{db: db} }

// Enqueue inserts msg as pending.
func (r *OutboxRepo) Enqueue(ctx context.Context, msg *entity.Message) error {
	const q = `INSERT INTO mail_outbox (id, kind, payload, status) VALUES ($1, $2, $3, $4) RETURNING created_at`
	if msg.Status == "" {
		msg.Status = entity.StatusPending
	}
	if err := r.db.QueryRowxContext(ctx, q, msg.ID, msg.Kind, msg.Payload, msg.Status).Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// Pending claims up to limit messages for sending, oldest first. Rows
// stuck in sending for longer than lease are reclaimed, which covers a
// worker that died mid batch. The lease is measured on the database
// clock, the same one that stamps claimed_at. Rows locked by another
// claimer are skipped.
func (r *OutboxRepo) Pending(ctx context.Context, limit int, lease time.Duration) ([]*entity.Message, error) {
	q := `UPDATE mail_outbox SET status='` + entity.StatusSending + `', claimed_at=NOW()
		WHERE id IN (
			SELECT id FROM mail_outbox
			WHERE status='` + entity.StatusPending + `' OR (status='` + entity.StatusSending + `' AND claimed_at < NOW() - $2::float8 * INTERVAL '1 second')
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + messageColumns
	var out []*entity.Message
	if err := sqlx.SelectContext(ctx, r.db, &out, q, limit, lease.Seconds()); err != nil {
		return nil, fmt.Errorf("claim mail: %w", err)
	}
	return out, nil
}

// MarkSent records a successful delivery.
func (r *OutboxRepo) MarkSent(ctx context.Context, id string) error {
	const q = `UPDATE mail_outbox SET status='` + entity.StatusSent + `', sent_at=NOW(), last_error=NULL WHERE id=$1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// MarkFailed counts a failed attempt. The message goes back to pending
// until maxAttempts is reached, then stays failed.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id string, cause error, maxAttempts int) error {
	const q = `UPDATE mail_outbox
		SET attempts = attempts + 1,
			last_error = $2,
			claimed_at = NULL,
			status = CASE WHEN attempts + 1 >= $3 THEN '` + entity.StatusFailed + `' ELSE '` + entity.StatusPending + `' END
		WHERE id=$1`
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := r.db.ExecContext(ctx, q, id, msg, maxAttempts); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
