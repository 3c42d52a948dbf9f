package application

import (
	"context"
	"time"
)

// Scheduler submits a payload to run once after the given delay. The
// queue technology behind it is out of this package's sight; the
// RabbitMQ implementation lives in pkg/helpers.
type Scheduler interface {
	Schedule(ctx context.Context, payload any, delay time.Duration) error
}

// MailQueue accepts notification email jobs for the mailer worker.
// *helpers.RabbitPublisher satisfies it.
type MailQueue interface {
	PublishJSON(ctx context.Context, body any) error
}
