package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wikicull/wikicull/internal/engine"
	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/listing"
	"github.com/wikicull/wikicull/internal/logging"
	"github.com/wikicull/wikicull/internal/model"
	"github.com/wikicull/wikicull/internal/store"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress (optional fields)
	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// Job tracks one asynchronous listing analysis.
type Job struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Events    chan JobEvent `json:"-"`

	// Set once the job is done.
	AnalysisID string        `json:"analysis_id,omitempty"`
	Report     *model.Report `json:"report,omitempty"`
}

// AnalysisResult is what a synchronous analysis hands back to callers.
type AnalysisResult struct {
	Page          *model.CCIPage
	Records       []*model.DiffRecord
	Report        *model.Report
	CulledListing string
	AnalysisID    string
}

// Orchestrator owns the store and runs analyses, either synchronously
// for the CLI or as cancellable background jobs for the server.
type Orchestrator struct {
	cfg    *Config
	store  *store.Store
	logger logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator ties together config, store and logger. store may be
// nil; analyses are then not persisted.
func NewOrchestrator(cfg *Config, st *store.Store, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:    cfg,
		store:  st,
		logger: logger,
	}
}

// Store exposes the underlying analysis store (may be nil).
func (o *Orchestrator) Store() *store.Store { return o.store }

// Config exposes the orchestrator's configuration.
func (o *Orchestrator) Config() *Config { return o.cfg }

// Analyze parses source, fetches and filters every diff, applies the
// configured predicates and persists the result. It blocks until the
// analysis is complete or ctx is canceled.
func (o *Orchestrator) Analyze(ctx context.Context, name, source string) (*AnalysisResult, error) {
	comps, err := newComponents(o.cfg, o.logger)
	if err != nil {
		return nil, err
	}
	defer comps.Close()

	page := listing.New(o.logger).Parse(source)
	if err := comps.Engine.LoadDiffs(ctx, page); err != nil {
		return nil, fmt.Errorf("loading diffs: %w", err)
	}
	if err := comps.Engine.AnalyzeDiffs(page); err != nil {
		return nil, fmt.Errorf("analyzing diffs: %w", err)
	}
	records, err := comps.Engine.Records(page)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Page:          page,
		Records:       records,
		Report:        engine.BuildReport(page),
		CulledListing: engine.CulledListing(page),
	}

	if o.store != nil {
		id, err := o.store.SaveAnalysis(ctx, name, page, records)
		if err != nil {
			return nil, fmt.Errorf("saving analysis: %w", err)
		}
		result.AnalysisID = id
	}
	return result, nil
}

func (o *Orchestrator) ensureJobMaps() {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.jobs == nil {
		o.jobs = make(map[string]*Job)
	}
	if o.jobCancels == nil {
		o.jobCancels = make(map[string]context.CancelFunc)
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) setJob(job *Job) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.jobs == nil {
		o.jobs = make(map[string]*Job)
	}
	o.jobs[job.ID] = job
}

func (o *Orchestrator) setCancel(jobID string, cancel context.CancelFunc) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.jobCancels == nil {
		o.jobCancels = make(map[string]context.CancelFunc)
	}
	o.jobCancels[jobID] = cancel
}

func (o *Orchestrator) deleteCancel(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	delete(o.jobCancels, jobID)
}

func (o *Orchestrator) getCancel(jobID string) context.CancelFunc {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobCancels[jobID]
}

func (o *Orchestrator) setStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	if j, ok := o.jobs[jobID]; ok {
		j.Status = status
		j.Error = errMsg
	}
	o.jobsMu.Unlock()
	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: status,
		Error:  errMsg,
	})
}

// StartAnalyzeJob runs Analyze in the background and returns the job
// immediately. Progress and status changes arrive on job.Events, which
// is closed when the job reaches a terminal state.
func (o *Orchestrator) StartAnalyzeJob(ctx context.Context, name, source string) (*Job, error) {
	o.ensureJobMaps()

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Name:      name,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}
	o.setJob(job)

	jobCtx, cancel := context.WithCancel(ctx)
	o.setCancel(jobID, cancel)

	o.emitJobEvent(jobID, JobEvent{
		JobID:  jobID,
		Type:   JobEventStatus,
		Status: JobPending,
	})

	go func() {
		defer func() {
			o.jobsMu.Lock()
			if j, ok := o.jobs[jobID]; ok {
				j.EndedAt = time.Now().UTC()
			}
			o.jobsMu.Unlock()
			o.deleteCancel(jobID)

			// Close events channel so websocket loops terminate cleanly.
			o.jobsMu.Lock()
			j := o.jobs[jobID]
			o.jobsMu.Unlock()
			if j != nil && j.Events != nil {
				close(j.Events)
			}
		}()

		o.setStatus(jobID, JobRunning, "")

		result, err := o.Analyze(jobCtx, name, source)
		if err != nil {
			select {
			case <-jobCtx.Done():
				o.setStatus(jobID, JobCanceled, jobCtx.Err().Error())
			default:
				o.setStatus(jobID, JobFailed, err.Error())
			}
			return
		}

		select {
		case <-jobCtx.Done():
			o.setStatus(jobID, JobCanceled, jobCtx.Err().Error())
		default:
			o.jobsMu.Lock()
			if j, ok := o.jobs[jobID]; ok {
				j.Status = JobDone
				j.AnalysisID = result.AnalysisID
				j.Report = result.Report
			}
			o.jobsMu.Unlock()
			o.emitJobEvent(jobID, JobEvent{
				JobID:  jobID,
				Type:   JobEventResult,
				Status: JobDone,
			})
			if o.logger != nil {
				o.logger.Info("analyze job done",
					interfaces.Field{Key: "job_id", Value: jobID},
					interfaces.Field{Key: "minor_edits", Value: len(result.Page.MinorEdits)})
			}
		}
	}()

	return job, nil
}

func (o *Orchestrator) CancelJob(jobID string) {
	cancel := o.getCancel(jobID)
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	return j
}

// ListJobs returns every known job, unordered.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j)
	}
	return out
}

// GetAnalysis loads a saved analysis from the store.
func (o *Orchestrator) GetAnalysis(ctx context.Context, id string) (*store.Analysis, error) {
	if o.store == nil {
		return nil, store.ErrAnalysisNotFound
	}
	return o.store.GetAnalysis(ctx, id)
}

// ListAnalyses lists saved analyses, newest first.
func (o *Orchestrator) ListAnalyses(ctx context.Context, limit int) ([]store.Summary, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.ListAnalyses(ctx, limit)
}

// DeleteAnalysis removes a saved analysis.
func (o *Orchestrator) DeleteAnalysis(ctx context.Context, id string) error {
	if o.store == nil {
		return store.ErrAnalysisNotFound
	}
	return o.store.DeleteAnalysis(ctx, id)
}
