package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/quest-log/internal"
	"github.com/iksnae/quest-log/testutil"
)

var fastPoll = WaitOptions{Interval: time.Millisecond, MaxInterval: 5 * time.Millisecond, Timeout: 2 * time.Second}

func TestWaitForSession_Completes(t *testing.T) {
	b := seededBackend(t)
	b.QueueStatuses(10, "uploaded", "processing", "processing", "completed")
	c := NewClient(b.URL(), time.Second)

	var seen []internal.ProcessingStatus
	opts := fastPoll
	opts.OnStatus = func(s internal.ProcessingStatus) { seen = append(seen, s) }

	s, err := WaitForSession(context.Background(), c, 10, opts)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusCompleted, s.Status)
	assert.Equal(t, []internal.ProcessingStatus{"uploaded", "processing", "processing", "completed"}, seen)
}

func TestWaitForSession_ErrorStatus(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	msg := "transcription failed"
	b.AddSession(testutil.FakeSession{ID: 7, CampaignID: 1, Status: "error", ErrorMessage: &msg})
	c := NewClient(b.URL(), time.Second)

	_, err := WaitForSession(context.Background(), c, 7, fastPoll)
	var failed *internal.SessionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 7, failed.SessionID)
	assert.Equal(t, msg, failed.Message)
	assert.Equal(t, 1, b.Calls("GET /sessions/7"), "an errored session is not polled again")
}

func TestWaitForSession_NotFoundIsPermanent(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	c := NewClient(b.URL(), time.Second)

	_, err := WaitForSession(context.Background(), c, 99, fastPoll)
	assert.True(t, internal.IsNotFound(err))
	assert.Equal(t, 1, b.Calls("GET /sessions/99"))
}

func TestWaitForSession_RetriesServerErrors(t *testing.T) {
	b := seededBackend(t)
	b.Fail("GET /sessions/10", http.StatusBadGateway, "upstream")
	c := NewClient(b.URL(), time.Second)

	opts := fastPoll
	opts.OnStatus = func(internal.ProcessingStatus) {}
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Recover("GET /sessions/10")
	}()

	s, err := WaitForSession(context.Background(), c, 10, opts)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusCompleted, s.Status)
	assert.Greater(t, b.Calls("GET /sessions/10"), 1)
}

func TestWaitForSession_Timeout(t *testing.T) {
	b := seededBackend(t)
	b.QueueStatuses(10, "processing")
	c := NewClient(b.URL(), time.Second)

	opts := fastPoll
	opts.Timeout = 30 * time.Millisecond
	_, err := WaitForSession(context.Background(), c, 10, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStillProcessing)
	assert.Contains(t, err.Error(), "still processing")
}

func TestWaitForSession_ContextCancelled(t *testing.T) {
	b := seededBackend(t)
	b.QueueStatuses(10, "processing")
	c := NewClient(b.URL(), time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	opts := fastPoll
	opts.Timeout = time.Minute
	_, err := WaitForSession(ctx, c, 10, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrStillProcessing),
		"unexpected error: %v", err)
}
