package meeting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
)

type flakyNotifier struct {
	fakeNotifier
	failFor string
}

func (f *flakyNotifier) Notify(ctx context.Context, kind notification.Kind, subject notification.Subject, recipientIDs []string) error {
	if subject.MeetingID == f.failFor {
		return errors.New("publish failed")
	}
	return f.fakeNotifier.Notify(ctx, kind, subject, recipientIDs)
}

func seed(repo *memRepo, id string, start time.Time, status Status) {
	repo.meetings[id] = &Meeting{
		ID:           id,
		Title:        id,
		OrganizerID:  "org",
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		Status:       status,
		Participants: []Participant{{UserID: "p1"}},
	}
}

type fakeLeads map[string]time.Duration

func (f fakeLeads) ReminderLead(_ context.Context, userID string) (time.Duration, error) {
	d, ok := f[userID]
	if !ok {
		return 0, errors.New("no preferences")
	}
	return d, nil
}

func TestReminderWorker_ProcessDue(t *testing.T) {
	repo := newMemRepo()
	seed(repo, "soon", testNow.Add(10*time.Minute), StatusScheduled)
	seed(repo, "flaky", testNow.Add(5*time.Minute), StatusScheduled)
	seed(repo, "later", testNow.Add(time.Hour), StatusScheduled)
	seed(repo, "cancelled", testNow.Add(5*time.Minute), StatusCancelled)

	notifier := &flakyNotifier{failFor: "flaky"}
	w := NewReminderWorker(repo, notifier, nil, zap.NewNop(), ReminderConfig{})
	w.now = func() time.Time { return testNow }

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notification.KindReminder, notifier.sent[0].kind)
	assert.Equal(t, "soon", notifier.sent[0].subject.MeetingID)
	assert.Equal(t, []string{"org", "p1"}, notifier.sent[0].recipients)

	assert.Contains(t, repo.reminded, "soon")
	assert.NotContains(t, repo.reminded, "later", "the default lead of 30 minutes is not reached yet")
	assert.NotContains(t, repo.reminded, "flaky", "failed reminders are retried on the next tick")

	// A second pass only retries the unsent one.
	notifier.failFor = ""
	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "flaky", notifier.sent[1].subject.MeetingID)
}

func TestReminderWorker_PerAttendeeLead(t *testing.T) {
	repo := newMemRepo()
	seed(repo, "m", testNow.Add(40*time.Minute), StatusScheduled)

	notifier := &fakeNotifier{}
	leads := fakeLeads{"org": 5 * time.Minute, "p1": 45 * time.Minute}
	w := NewReminderWorker(repo, notifier, leads, zap.NewNop(), ReminderConfig{})
	clock := testNow
	w.now = func() time.Time { return clock }

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"p1"}, notifier.sent[0].recipients)
	assert.NotContains(t, repo.reminded, "m", "the organizer is still waiting")

	// Nothing new until the organizer's lead is reached.
	clock = testNow.Add(30 * time.Minute)
	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	clock = testNow.Add(36 * time.Minute)
	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"org"}, notifier.sent[1].recipients)
	assert.Contains(t, repo.reminded, "m")

	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, notifier.sent, 2, "nobody is reminded twice")
}

func TestReminderWorker_LeadLookupFailureUsesDefault(t *testing.T) {
	repo := newMemRepo()
	seed(repo, "m", testNow.Add(20*time.Minute), StatusScheduled)

	notifier := &fakeNotifier{}
	w := NewReminderWorker(repo, notifier, fakeLeads{"org": 5 * time.Minute}, zap.NewNop(), ReminderConfig{})
	w.now = func() time.Time { return testNow }

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"p1"}, notifier.sent[0].recipients)
}

func TestReminderWorker_Defaults(t *testing.T) {
	w := NewReminderWorker(newMemRepo(), &fakeNotifier{}, nil, zap.NewNop(), ReminderConfig{})
	assert.Equal(t, 24*time.Hour, w.horizon)
	assert.Equal(t, time.Minute, w.interval)
}

func TestReminderWorker_RunStopsOnCancel(t *testing.T) {
	w := NewReminderWorker(newMemRepo(), &fakeNotifier{}, nil, zap.NewNop(), ReminderConfig{Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
