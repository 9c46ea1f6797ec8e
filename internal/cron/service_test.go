package cron

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/angelmondragon/quotecart-backend/pkg/logger"
)

type fakeLock struct {
	acquired   bool
	releases   int
	releaseErr error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.acquired = false
	f.releases++
	return f.releaseErr
}

type testJob struct {
	name    string
	removed int64
	err     error
	runs    int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) (int64, error) {
	t.runs++
	return t.removed, t.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry := NewRegistry()
	if err := registry.Register(jobs...); err != nil {
		t.Fatalf("register jobs: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: registry,
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestRunCycleRunsAllJobsAndCombinesFailures(t *testing.T) {
	first := &testJob{name: "first", err: errors.New("boom")}
	second := &testJob{name: "second", removed: 4}
	third := &testJob{name: "third", err: errors.New("bang")}
	lock := &fakeLock{}
	service := newTestService(t, lock, first, second, third)

	err := service.runCycle(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "first: boom") || !strings.Contains(err.Error(), "third: bang") {
		t.Fatalf("expected both failures, got %v", err)
	}
	for _, job := range []*testJob{first, second, third} {
		if job.runs != 1 {
			t.Fatalf("expected %s to run once, ran %d", job.name, job.runs)
		}
	}
	if lock.releases != 1 || lock.acquired {
		t.Fatalf("expected lock released once")
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{acquired: true}
	service := newTestService(t, lock, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job to be skipped")
	}
	if lock.releases != 0 {
		t.Fatalf("lock held elsewhere must not be released")
	}
}

func TestRunCycleReportsReleaseFailure(t *testing.T) {
	lock := &fakeLock{releaseErr: errors.New("redis down")}
	service := newTestService(t, lock, &testJob{name: "job"})

	err := service.runCycle(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("expected release error, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "job"}
	service := newTestService(t, &fakeLock{}, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected one immediate cycle, got %d", job.runs)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})})
	if err == nil {
		t.Fatal("expected error without lock")
	}
}

func TestRunOnceRunsSingleCycle(t *testing.T) {
	job := &testJob{name: "job", removed: 2}
	lock := &fakeLock{}
	service := newTestService(t, lock, job)

	if err := service.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 1 || lock.releases != 1 {
		t.Fatalf("expected one run and one release, got runs=%d releases=%d", job.runs, lock.releases)
	}
}
