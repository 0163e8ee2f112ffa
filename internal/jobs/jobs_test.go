package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/jobs"
	storemock "github.com/orato-ai/orato/internal/store/mock"
	"github.com/orato-ai/orato/pkg/types"
)

func doneReport(jobID string) *analysis.Report {
	return &analysis.Report{
		JobID:        jobID,
		Status:       analysis.StatusDone,
		OverallScore: types.OverallScore{Score: 80, Label: types.OverallGood, Confidence: 0.7},
	}
}

// waitStatus polls the manager until the job reaches want or the deadline
// expires.
func waitStatus(t *testing.T, m *jobs.Manager, jobID, want string) jobs.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := m.Get(jobID)
		if err != nil {
			t.Fatal(err)
		}
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := m.Get(jobID)
	t.Fatalf("job never reached %q, stuck at %q (error %q)", want, job.Status, job.Error)
	return jobs.Job{}
}

func TestManager_SubmitAndComplete(t *testing.T) {
	t.Parallel()
	st := storemock.New()
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 4, Store: st,
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			publish("analyzing", "working")
			return doneReport(job.ID), nil
		},
	})
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Submit(analysis.RequestInput{Language: "en"}, "talk.wav")
	if err != nil {
		t.Fatal(err)
	}
	waitStatus(t, m, id, analysis.StatusDone)

	saved, err := st.GetReport(context.Background(), id)
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	if saved.OverallScore.Score != 80 {
		t.Errorf("saved score = %d, want 80", saved.OverallScore.Score)
	}
}

func TestManager_FailedJob(t *testing.T) {
	t.Parallel()
	st := storemock.New()
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 4, Store: st,
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			return nil, errors.New("decode failed")
		},
	})
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Submit(analysis.RequestInput{}, "bad.wav")
	if err != nil {
		t.Fatal(err)
	}
	job := waitStatus(t, m, id, analysis.StatusFailed)
	if job.Error != "decode failed" {
		t.Errorf("job error = %q, want the runner error", job.Error)
	}
	if _, err := st.GetReport(context.Background(), id); err == nil {
		t.Error("failed job must not persist a report")
	}
}

func TestManager_QueueFull(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 1, Store: storemock.New(),
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			<-release
			return doneReport(job.ID), nil
		},
	})
	m.Start(context.Background())
	defer m.Stop()
	defer close(release)

	// First job occupies the worker, second fills the queue; eventually the
	// queue has no room and Submit must reject.
	var sawFull bool
	for i := 0; i < 5; i++ {
		if _, err := m.Submit(analysis.RequestInput{}, "talk.wav"); errors.Is(err, jobs.ErrQueueFull) {
			sawFull = true
			break
		}
	}
	if !sawFull {
		t.Fatal("expected ErrQueueFull once worker and queue were saturated")
	}
}

func TestManager_SubscribeReceivesLifecycle(t *testing.T) {
	t.Parallel()
	st := storemock.New()
	started := make(chan struct{})
	release := make(chan struct{})
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 4, Store: st,
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			close(started)
			<-release
			publish("analyzing", "computing metrics")
			return doneReport(job.ID), nil
		},
	})
	m.Start(context.Background())
	defer m.Stop()

	// A held-back runner gives us time to subscribe before events flow.
	id, err := m.Submit(analysis.RequestInput{}, "talk.wav")
	if err != nil {
		t.Fatal(err)
	}
	<-started
	events, cancel := m.Subscribe(id)
	defer cancel()
	close(release)

	var sawStage, sawDone bool
	deadline := time.After(5 * time.Second)
	for !sawDone {
		select {
		case ev := <-events:
			if ev.Stage == "analyzing" {
				sawStage = true
			}
			if ev.Status == analysis.StatusDone {
				sawDone = true
			}
		case <-deadline:
			t.Fatalf("timed out; sawStage=%v sawDone=%v", sawStage, sawDone)
		}
	}
	if !sawStage {
		t.Error("progress stage event not received")
	}
}

func TestManager_GetUnknownJob(t *testing.T) {
	t.Parallel()
	m := jobs.NewManager(jobs.ManagerConfig{Store: storemock.New(), Run: nil})
	if _, err := m.Get("nope"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()
	st := storemock.New()
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 4, Store: st,
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			return doneReport(job.ID), nil
		},
	})
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Submit(analysis.RequestInput{}, "talk.wav")
	if err != nil {
		t.Fatal(err)
	}
	waitStatus(t, m, id, analysis.StatusDone)

	if err := m.Delete(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(id); !errors.Is(err, jobs.ErrNotFound) {
		t.Error("job still tracked after delete")
	}
	if _, err := st.GetReport(context.Background(), id); err == nil {
		t.Error("report still stored after delete")
	}
}

func TestManager_Timeout(t *testing.T) {
	t.Parallel()
	m := jobs.NewManager(jobs.ManagerConfig{
		Workers: 1, QueueSize: 4, Store: storemock.New(),
		Timeout: 20 * time.Millisecond,
		Run: func(ctx context.Context, job jobs.Job, publish func(stage, message string)) (*analysis.Report, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return doneReport(job.ID), nil
			}
		},
	})
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Submit(analysis.RequestInput{}, "talk.wav")
	if err != nil {
		t.Fatal(err)
	}
	job := waitStatus(t, m, id, analysis.StatusFailed)
	if job.Error == "" {
		t.Error("timed-out job should record the context error")
	}
}
