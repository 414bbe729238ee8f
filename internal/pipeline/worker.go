package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docx2dita/internal/convert"
)

// Worker processes a single conversion job.
type Worker struct {
	log *slog.Logger
}

func NewWorker(log *slog.Logger) *Worker {
	return &Worker{log: log}
}

// Process runs the full conversion for a job. The conversion itself is
// synchronous and single-pass; cancellation is honored between the queue and
// the start of work, after which the job simply runs to completion and the
// result is discarded with the store's TTL.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	job.SetStatus(StatusConverting, "loading")

	opts := job.Options()
	userProgress := opts.Progress
	opts.Progress = func(phase string) {
		job.SetPhase(phase)
		log.Debug("conversion progress", "phase", phase)
		if userProgress != nil {
			userProgress(phase)
		}
	}

	conv, err := convert.Run(job.FileData(), job.Filename, opts)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "conversion")
		return
	}

	job.SetConversion(conv)
	job.SetStatus(StatusCompleted, "done")
	log.Info("conversion completed",
		"topics", len(conv.Result.Topics),
		"images", len(conv.Result.Media),
		"warnings", len(conv.Result.Warnings),
		"archive_bytes", len(conv.Archive),
	)
}
