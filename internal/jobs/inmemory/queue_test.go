package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/overart/txlogs/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.ConvertJob{JobID: "job-1", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	got, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("Status = %q, want %q", got.Status, jobs.JobStatusPending)
	}

	// Returned job is a copy; mutating it must not affect the store
	got.Status = jobs.JobStatusFailed
	again, err := s.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("Store job mutated through returned copy")
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	s := NewStore()
	if err := s.SaveJob(context.Background(), &jobs.ConvertJob{}); err == nil {
		t.Error("Expected error for job without ID, got nil")
	}
}

func TestStore_ListJobsFiltered(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.SaveJob(ctx, &jobs.ConvertJob{JobID: "a", Status: jobs.JobStatusPending})
	_ = s.SaveJob(ctx, &jobs.ConvertJob{JobID: "b", Status: jobs.JobStatusCompleted})
	_ = s.SaveJob(ctx, &jobs.ConvertJob{JobID: "c", Status: jobs.JobStatusCompleted})

	completed, err := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(completed) != 2 {
		t.Errorf("ListJobs(completed) = %d jobs, want 2", len(completed))
	}

	limited, err := s.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("ListJobs(limit=1) = %d jobs, want 1", len(limited))
	}
}

func TestQueue_PublishAndConsume(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	ctx := context.Background()
	var mu sync.Mutex
	processed := make(map[string]bool)
	done := make(chan struct{}, 3)

	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		processed[job.GetID()] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, id := range []string{"j1", "j2", "j3"} {
		if err := q.PublishConvert(ctx, &jobs.ConvertJob{JobID: id, RawText: "x"}); err != nil {
			t.Fatalf("PublishConvert(%s) error = %v", id, err)
		}
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Timed out waiting for jobs to be processed")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, id := range []string{"j1", "j2", "j3"} {
		if !processed[id] {
			t.Errorf("Job %s was not processed", id)
		}
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := q.PublishConvert(context.Background(), &jobs.ConvertJob{JobID: "late"})
	if err == nil {
		t.Error("Expected error publishing to closed queue, got nil")
	}
}

func TestQueue_DefaultsOnPublish(t *testing.T) {
	store := NewStore()
	q := NewQueue(1, 1, store)
	defer q.Close()

	job := &jobs.ConvertJob{RawText: "x"}
	if err := q.PublishConvert(context.Background(), job); err != nil {
		t.Fatalf("PublishConvert() error = %v", err)
	}

	if job.JobID == "" {
		t.Error("Expected generated job ID")
	}
	if job.Status != jobs.JobStatusPending {
		t.Errorf("Status = %q, want %q", job.Status, jobs.JobStatusPending)
	}
	if job.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", job.MaxRetries)
	}
	if job.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}
