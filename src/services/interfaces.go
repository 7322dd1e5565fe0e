package services

import (
	"context"
	"errors"
	"time"
)

// Define common service errors
var (
	ErrAlreadyStarted = errors.New("sync service already started")
	ErrNotStarted     = errors.New("sync service not started")
)

// HealthChecker is the liveness probe the poll loop and manual sync call.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Publisher is the publishing half of the notification bus.
type Publisher interface {
	Publish(ev ChangeEvent)
}

// SyncRecorder persists the outcome of each health-check sync attempt.
// A nil syncErr means the attempt succeeded.
type SyncRecorder interface {
	RecordSync(ctx context.Context, source ChangeSource, syncErr error, at time.Time) error
}

// Dialer opens the push channel connection.
type Dialer interface {
	Dial(ctx context.Context, url string) (MessageConn, error)
}

// MessageConn is an open push channel. Receive blocks until a whole message
// (text or binary) arrives or the connection fails.
type MessageConn interface {
	Receive() ([]byte, error)
	Close() error
}
