package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/geocoder89/learnhub/internal/repo/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.EnrollmentWelcomeInput
	err  error
}

func (n *recordingNotifier) SendEnrollmentWelcome(_ context.Context, in notifications.EnrollmentWelcomeInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, in)
	return nil
}

type fixture struct {
	store    *sqlite.Store
	worker   *Worker
	notifier *recordingNotifier
	user     user.User
	course   course.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "worker.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	now := time.Now().UTC()
	u := user.User{ID: uuid.NewString(), Email: "ada@example.com", PasswordHash: "x", Name: "Ada", Role: user.RoleStudent, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateUser(ctx, u))

	c := course.Course{ID: uuid.NewString(), Title: "Go in Practice", Category: course.CategoryProgramming, Level: course.LevelBeginner, IsPublished: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateCourse(ctx, c))

	n := &recordingNotifier{}
	w := New(Config{WorkerID: "test-worker"}, s, nil, nil)
	w.Handle(jobs.JobEnrollmentWelcome, WelcomeHandler(s, n))
	w.backoff = func(int) time.Duration { return 0 }

	return &fixture{store: s, worker: w, notifier: n, user: u, course: c}
}

func (f *fixture) enqueueWelcome(t *testing.T, userID string, maxAttempts int) job.Job {
	t.Helper()

	payload, err := jobs.EncodePayload(jobs.JobEnrollmentWelcome, jobs.EnrollmentWelcomePayload{
		EnrollmentID: uuid.NewString(),
		UserID:       userID,
		CourseID:     f.course.ID,
	})
	require.NoError(t, err)

	j, err := f.store.CreateJob(context.Background(), job.CreateRequest{
		Type:        jobs.JobEnrollmentWelcome.String(),
		Payload:     payload,
		MaxAttempts: maxAttempts,
	})
	require.NoError(t, err)
	return j
}

func TestProcessOneEmptyQueue(t *testing.T) {
	f := newFixture(t)

	processed, err := f.worker.ProcessOne(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessOneSendsWelcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.enqueueWelcome(t, f.user.ID, 3)

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "ada@example.com", f.notifier.sent[0].Email)
	assert.Equal(t, "Go in Practice", f.notifier.sent[0].CourseTitle)

	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusDone, got.Status)
}

func TestProcessOneRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	j := f.enqueueWelcome(t, f.user.ID, 2)

	_, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)

	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "smtp down", *got.LastError)

	_, err = f.worker.ProcessOne(ctx)
	require.NoError(t, err)

	got, err = f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Equal(t, 2, got.Attempts)

	processed, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessOneMissingUserIsPermanent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	j := f.enqueueWelcome(t, "ghost", 10)

	_, err := f.worker.ProcessOne(ctx)
	require.NoError(t, err)

	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestProcessOneUnknownTypeFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	j, err := f.store.CreateJob(ctx, job.CreateRequest{Type: "mystery", Payload: []byte(`{}`)})
	require.NoError(t, err)

	_, err = f.worker.ProcessOne(ctx)
	require.NoError(t, err)

	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
}

func TestExponentialBackoff(t *testing.T) {
	d := ExponentialBackoff(0)
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.Less(t, d, 2*time.Second+250*time.Millisecond)

	d = ExponentialBackoff(3)
	assert.GreaterOrEqual(t, d, 16*time.Second)

	d = ExponentialBackoff(100)
	assert.GreaterOrEqual(t, d, 5*time.Minute)
	assert.Less(t, d, 5*time.Minute+250*time.Millisecond)
}

type pingFunc func(context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func TestHealthHandler(t *testing.T) {
	f := newFixture(t)
	h := f.worker.HealthHandler(pingFunc(func(context.Context) error { return nil }), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	f.worker.setReady(true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	f.enqueueWelcome(t, f.user.ID, 3)
	f.worker.cfg.PollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- f.worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		f.notifier.mu.Lock()
		defer f.notifier.mu.Unlock()
		return len(f.notifier.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, f.worker.Ready())
}
