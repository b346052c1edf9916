package cron

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/mfigueroa/openshelf-backend/pkg/metrics"
)

type memoryLock struct {
	held     bool
	acquires int
	releases int
	err      error
}

func (m *memoryLock) Acquire(context.Context) (bool, error) {
	m.acquires++
	if m.err != nil {
		return false, m.err
	}
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *memoryLock) Release(context.Context) error {
	m.releases++
	m.held = false
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (c *countingJob) Name() string { return c.name }

func (c *countingJob) Run(context.Context) error {
	c.runs++
	return c.err
}

func newCycleService(t *testing.T, lock Lock, m *metrics.CronJobMetrics, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  m,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestRunCycleContinuesPastFailingJob(t *testing.T) {
	expiry := &countingJob{name: "reservation-expiry", err: errors.New("deadlock")}
	overdue := &countingJob{name: "overdue-borrows"}
	lock := &memoryLock{}
	service := newCycleService(t, lock, nil, expiry, overdue)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if expiry.runs != 1 || overdue.runs != 1 {
		t.Fatalf("every job should run once, got expiry=%d overdue=%d", expiry.runs, overdue.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("lock must be released after the cycle, releases=%d", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "overdue-borrows"}
	service := newCycleService(t, &memoryLock{held: true}, nil, job)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("jobs must not run while another instance holds the lock, runs=%d", job.runs)
	}
}

func TestRunCycleReportsLockError(t *testing.T) {
	service := newCycleService(t, &memoryLock{err: errors.New("redis down")}, nil)
	if err := service.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock acquisition error")
	}
}

func TestRunCycleRecordsJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCronJobMetrics(reg)
	ok := &countingJob{name: "overdue-borrows"}
	bad := &countingJob{name: "reservation-expiry", err: errors.New("boom")}
	service := newCycleService(t, &memoryLock{}, m, ok, bad)

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if got := counterValue(t, reg, "job_success", "overdue-borrows"); got != 1 {
		t.Fatalf("expected success recorded for overdue-borrows, got %f", got)
	}
	if got := counterValue(t, reg, "job_failure", "reservation-expiry"); got != 1 {
		t.Fatalf("expected failure recorded for reservation-expiry, got %f", got)
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
