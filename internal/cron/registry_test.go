package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (n *namedJob) Name() string              { return n.name }
func (n *namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	overdue := &namedJob{name: "overdue-borrows"}
	expiry := &namedJob{name: "reservation-expiry"}
	retention := &namedJob{name: "outbox-retention"}

	registry := NewRegistry(overdue, expiry)
	registry.Register(retention)

	jobs := registry.Jobs()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, want := range []Job{overdue, expiry, retention} {
		if jobs[i] != want {
			t.Fatalf("job %d out of order: got %s", i, jobs[i].Name())
		}
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &namedJob{name: "overdue-borrows"})
	registry.Register(nil)
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("expected nil jobs dropped, got %d", got)
	}
}

func TestRegistryJobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(&namedJob{name: "overdue-borrows"})
	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("mutating the returned slice must not touch the registry")
	}
}
