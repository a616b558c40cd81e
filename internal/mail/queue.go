package mail

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/mail/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Queue writes messages to the outbox through the request scope, so a
// rolled back transaction never produces mail.
type Queue struct {
	ids    *utilities.IDGenerator
	notify func()
}

// NewQueue builds a Queue. notify is called after the enqueuing
// transaction commits, normally Worker.Notify; it may be nil.
func NewQueue(ids *utilities.IDGenerator, notify func()) *Queue {
	if notify == nil {
		notify = func() {}
	}
	return &Queue{ids: ids, notify: notify}
}

// QueueWelcome enqueues the welcome mail for a new account.
func (q *Queue) QueueWelcome(ctx context.Context, scope *database.Scope, receiver, name string) error {
	msg, err := entity.NewMessage(q.ids.Next(), entity.KindWelcome, entity.WelcomePayload{Receiver: receiver, Name: name})
	if err != nil {
		return err
	}
	if err := repo.NewOutboxRepo(scope).Enqueue(ctx, msg); err != nil {
		return err
	}
	scope.AfterCommit(q.notify)
	return nil
}
