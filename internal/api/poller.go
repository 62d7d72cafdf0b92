package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/samber/lo"

	"github.com/iksnae/quest-log/internal"
)

// ErrStillProcessing is returned when a session has not reached a terminal
// status before the poll deadline
var ErrStillProcessing = errors.New("session is still processing")

// WaitOptions tunes WaitForSession
type WaitOptions struct {
	// Interval is the first delay between polls; later delays grow
	Interval time.Duration
	// MaxInterval caps the delay between polls
	MaxInterval time.Duration
	// Timeout bounds the whole wait. Zero means internal.DefaultPollTimeout.
	Timeout time.Duration
	// OnStatus is called after every successful poll
	OnStatus func(internal.ProcessingStatus)
}

// SessionGetter fetches a session by id
type SessionGetter interface {
	GetSession(ctx context.Context, id int) (*internal.Session, error)
}

// WaitForSession polls a session until the backend reports it completed or
// errored. An errored session yields a SessionFailedError.
func WaitForSession(ctx context.Context, getter SessionGetter, sessionID int, opts WaitOptions) (*internal.Session, error) {
	if opts.Interval <= 0 {
		opts.Interval = internal.DefaultPollInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 10 * opts.Interval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = internal.DefaultPollTimeout
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.Interval
	b.MaxInterval = opts.MaxInterval
	b.Multiplier = 1.5
	b.RandomizationFactor = 0.1

	var last internal.ProcessingStatus
	operation := func() (*internal.Session, error) {
		session, err := getter.GetSession(ctx, sessionID)
		if err != nil {
			if IsTransient(err) {
				internal.LogDebug("poll session %d: %v", sessionID, err)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		if session.Status != last {
			internal.LogDebug("session %d is %s", sessionID, session.Status)
			last = session.Status
		}
		if opts.OnStatus != nil {
			opts.OnStatus(session.Status)
		}

		switch session.Status {
		case internal.StatusCompleted:
			return session, nil
		case internal.StatusError:
			return nil, backoff.Permanent(&internal.SessionFailedError{
				SessionID: sessionID,
				Message:   lo.FromPtr(session.ErrorMessage),
			})
		default:
			return nil, ErrStillProcessing
		}
	}

	session, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(opts.Timeout),
	)
	if err != nil {
		if errors.Is(err, ErrStillProcessing) {
			return nil, fmt.Errorf("session %d still %s after %s: %w", sessionID, last, opts.Timeout, err)
		}
		return nil, err
	}
	return session, nil
}
