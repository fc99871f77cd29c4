package importer

import (
	"context"
	"errors"
	"fmt"

	"fitnesspoint/internal/email"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/metrics"
)

var ErrNotRunnable = errors.New("import is not pending")

type JobStore interface {
	GetByID(ctx context.Context, id int) (*MemberImport, error)
	MarkInProgress(ctx context.Context, id int) error
	Finish(ctx context.Context, id int, status Status, stats Statistics) error
	Fail(ctx context.Context, id int, message string) error
}

type SummaryNotifier interface {
	SendImportSummary(ctx context.Context, to, name string, summary email.ImportSummary) error
}

// Runner executes one import job end to end.
type Runner struct {
	jobs     JobStore
	pipeline *Pipeline
	notifier SummaryNotifier
	readRows func(path string) ([]Row, error)
}

func NewRunner(jobs JobStore, pipeline *Pipeline, notifier SummaryNotifier) *Runner {
	return &Runner{
		jobs:     jobs,
		pipeline: pipeline,
		notifier: notifier,
		readRows: ReadFile,
	}
}

// Run processes a pending or previously failed job. Row failures do not make
// Run fail; setup and file errors mark the job failed and are returned, as
// does a ctx cancelled mid-batch so the job can be run again.
func (r *Runner) Run(ctx context.Context, importID int) (Statistics, error) {
	job, err := r.jobs.GetByID(ctx, importID)
	if err != nil {
		return Statistics{}, err
	}
	if job.Status != StatusPending && job.Status != StatusFailed {
		return Statistics{}, fmt.Errorf("%w: import %d is %s", ErrNotRunnable, job.ID, job.Status)
	}

	if err := r.jobs.MarkInProgress(ctx, job.ID); err != nil {
		return Statistics{}, fmt.Errorf("mark import %d in progress: %w", job.ID, err)
	}
	logger.Info("import started", "import_id", job.ID, "type", job.Type)

	batch, err := r.pipeline.NewBatch(ctx, job)
	if err != nil {
		return Statistics{}, r.fail(ctx, job, err)
	}

	rows, err := r.readRows(job.FilePath)
	if err != nil {
		return Statistics{}, r.fail(ctx, job, fmt.Errorf("read import file: %w", err))
	}

	batch.Collection(ctx, rows)
	stats := batch.Statistics()
	if err := ctx.Err(); err != nil {
		return stats, r.fail(ctx, job, fmt.Errorf("interrupted after %d of %d rows: %w", stats.TotalProcessed, len(rows), err))
	}
	status := stats.FinalStatus()

	if err := r.jobs.Finish(ctx, job.ID, status, stats); err != nil {
		return stats, fmt.Errorf("finish import %d: %w", job.ID, err)
	}
	metrics.RecordImportJob(string(status))
	logger.Info("import finished",
		"import_id", job.ID,
		"status", status,
		"success_count", stats.SuccessCount,
		"failed_count", stats.FailedCount,
		"total_processed", stats.TotalProcessed,
	)

	r.notify(ctx, batch.creator.Email, batch.creator.Name, email.ImportSummary{
		ImportID:       job.ID,
		Status:         string(status),
		SuccessCount:   stats.SuccessCount,
		FailedCount:    stats.FailedCount,
		TotalProcessed: stats.TotalProcessed,
	})
	return stats, nil
}

// fail records cause on the job even when ctx is already cancelled.
func (r *Runner) fail(ctx context.Context, job *MemberImport, cause error) error {
	ctx = context.WithoutCancel(ctx)
	logger.WithError(cause).Error("import failed", "import_id", job.ID)
	metrics.RecordImportJob(string(StatusFailed))

	if err := r.jobs.Fail(ctx, job.ID, cause.Error()); err != nil {
		logger.WithError(err).Error("failed to mark import failed", "import_id", job.ID)
	}

	if u, err := r.pipeline.users.FindByID(ctx, job.CreatedBy); err == nil {
		r.notify(ctx, u.Email, u.Name, email.ImportSummary{
			ImportID:     job.ID,
			Status:       string(StatusFailed),
			ErrorMessage: cause.Error(),
		})
	}
	return cause
}

func (r *Runner) notify(ctx context.Context, to, name string, summary email.ImportSummary) {
	if r.notifier == nil || to == "" {
		return
	}
	if err := r.notifier.SendImportSummary(ctx, to, name, summary); err != nil {
		logger.WithError(err).Error("failed to queue import summary", "import_id", summary.ImportID)
	}
}
