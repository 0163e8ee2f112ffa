// Package jobs runs analysis jobs asynchronously: a bounded queue, a fixed
// pool of workers, per-job progress events fanned out to subscribers, and
// persistence of finished reports.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orato-ai/orato/internal/analysis"
	"github.com/orato-ai/orato/internal/observe"
	"github.com/orato-ai/orato/internal/store"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("jobs: queue is full")

// ErrNotFound is returned when no job exists under the requested id.
var ErrNotFound = errors.New("jobs: job not found")

// Job is the tracked state of one submitted analysis.
type Job struct {
	ID        string                `json:"job_id"`
	Status    string                `json:"status"`
	Error     string                `json:"error,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	Request   analysis.RequestInput `json:"-"`

	// AudioPath is the staged local audio file for this job.
	AudioPath string `json:"-"`
}

// Event is one progress update published to subscribers of a job.
type Event struct {
	JobID   string    `json:"job_id"`
	Status  string    `json:"status"`
	Stage   string    `json:"stage,omitempty"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// Runner executes the analysis pipeline for one job. Implementations report
// coarse progress through the publish callback.
type Runner func(ctx context.Context, job Job, publish func(stage, message string)) (*analysis.Report, error)

// ManagerConfig holds all dependencies for a [Manager].
type ManagerConfig struct {
	Workers   int
	QueueSize int

	// Timeout caps one job's run time. Zero disables the timeout.
	Timeout time.Duration

	Store   store.Store
	Run     Runner
	Metrics *observe.Metrics
	Logger  *slog.Logger
}

// Manager owns the job queue and workers. All exported methods are safe for
// concurrent use.
type Manager struct {
	cfg   ManagerConfig
	queue chan string
	log   *slog.Logger

	mu   sync.Mutex
	jobs map[string]*Job
	subs map[string]map[chan Event]struct{}

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewManager creates a Manager. Call [Manager.Start] before submitting jobs.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	return &Manager{
		cfg:   cfg,
		queue: make(chan string, cfg.QueueSize),
		log:   cfg.Logger,
		jobs:  make(map[string]*Job),
		subs:  make(map[string]map[chan Event]struct{}),
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled or
// [Manager.Stop] is called.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
	m.log.Info("job workers started", "workers", m.cfg.Workers, "queue_size", m.cfg.QueueSize)
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
	})
}

// Submit enqueues a new job and returns its id. Returns [ErrQueueFull] when
// the queue has no room.
func (m *Manager) Submit(req analysis.RequestInput, audioPath string) (string, error) {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    analysis.StatusQueued,
		CreatedAt: time.Now().UTC(),
		Request:   req,
		AudioPath: audioPath,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	select {
	case m.queue <- job.ID:
	default:
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return "", ErrQueueFull
	}

	m.cfg.Metrics.QueuedJobs.Add(context.Background(), 1)
	m.publish(Event{JobID: job.ID, Status: analysis.StatusQueued, At: time.Now().UTC()})
	m.log.Info("job submitted", "job_id", job.ID, "audio", audioPath)
	return job.ID, nil
}

// Get returns a snapshot of the job's tracked state.
func (m *Manager) Get(jobID string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	return *job, nil
}

// Delete forgets a job's tracked state and removes its stored report.
// Running jobs keep running; only their bookkeeping is dropped.
func (m *Manager) Delete(ctx context.Context, jobID string) error {
	m.mu.Lock()
	delete(m.jobs, jobID)
	m.mu.Unlock()
	return m.cfg.Store.DeleteReport(ctx, jobID)
}

// Subscribe registers for the job's progress events. The returned cancel
// function must be called to release the subscription. Events are dropped
// for subscribers that fall behind.
func (m *Manager) Subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	m.mu.Lock()
	set, ok := m.subs[jobID]
	if !ok {
		set = make(map[chan Event]struct{})
		m.subs[jobID] = set
	}
	set[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if set, ok := m.subs[jobID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(m.subs, jobID)
			}
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Manager) publish(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than block a worker.
		}
	}
}

func (m *Manager) setStatus(jobID, status, errMsg string) {
	m.mu.Lock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
		job.Error = errMsg
	}
	m.mu.Unlock()
	m.publish(Event{JobID: jobID, Status: status, Message: errMsg, At: time.Now().UTC()})
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-m.queue:
			m.cfg.Metrics.QueuedJobs.Add(ctx, -1)
			m.process(ctx, jobID)
		}
	}
}

func (m *Manager) process(ctx context.Context, jobID string) {
	m.mu.Lock()
	jobPtr, ok := m.jobs[jobID]
	if !ok {
		// Deleted while queued.
		m.mu.Unlock()
		return
	}
	job := *jobPtr
	m.mu.Unlock()

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	m.cfg.Metrics.ActiveJobs.Add(ctx, 1)
	defer m.cfg.Metrics.ActiveJobs.Add(context.WithoutCancel(ctx), -1)

	m.setStatus(jobID, analysis.StatusProcessing, "")
	start := time.Now()

	report, err := m.cfg.Run(ctx, job, func(stage, message string) {
		m.publish(Event{
			JobID: jobID, Status: analysis.StatusProcessing,
			Stage: stage, Message: message, At: time.Now().UTC(),
		})
	})
	if err != nil {
		m.log.Error("job failed", "job_id", jobID, "err", err, "duration", time.Since(start))
		m.setStatus(jobID, analysis.StatusFailed, err.Error())
		m.cfg.Metrics.RecordJobCompleted(context.WithoutCancel(ctx), analysis.StatusFailed)
		return
	}

	// Persist with a fresh context so a timed-out job context cannot lose
	// the finished report.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := m.cfg.Store.SaveReport(saveCtx, report); err != nil {
		m.log.Error("job report save failed", "job_id", jobID, "err", err)
		m.setStatus(jobID, analysis.StatusFailed, fmt.Sprintf("save report: %v", err))
		m.cfg.Metrics.RecordJobCompleted(saveCtx, analysis.StatusFailed)
		return
	}

	m.cfg.Metrics.AnalysisDuration.Record(saveCtx, time.Since(start).Seconds())
	m.cfg.Metrics.RecordJobCompleted(saveCtx, analysis.StatusDone)
	m.setStatus(jobID, analysis.StatusDone, "")
	m.log.Info("job completed", "job_id", jobID, "duration", time.Since(start),
		"overall_score", report.OverallScore.Score)
}
