package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/doclinks/internal/discovery"
)

// Worker runs discovery jobs one at a time.
type Worker struct {
	local  *discovery.Local
	remote *discovery.Remote
	log    *slog.Logger
}

func NewWorker(local *discovery.Local, remote *discovery.Remote, log *slog.Logger) *Worker {
	return &Worker{local: local, remote: remote, log: log}
}

// Process runs a job to completion. A panic inside the discoverer fails the
// job with TASK_FAILURE instead of taking down the worker.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "root", job.Root)

	defer func() {
		if p := recover(); p != nil {
			log.Error("discovery panicked", "panic", p)
			job.Fail(discovery.TaskFailure(p))
		}
	}()

	if err := ctx.Err(); err != nil {
		job.Fail(discovery.Canceled(err))
		return
	}

	job.SetStatus(StatusRunning, "discovering")
	switch job.Kind {
	case KindLocal:
		if w.local == nil {
			job.Fail(discovery.Forbidden("local discovery is disabled"))
			return
		}
		docs, err := w.local.Discover(ctx, job.Root, job.MaxDepth)
		if err != nil {
			log.Warn("local discovery failed", "error", err)
			job.Fail(err)
			return
		}
		job.CompleteLocal(docs)
		log.Info("job completed", "documents", len(docs))
	case KindRemote:
		docs, err := w.remote.Discover(ctx, job.Root, job.MaxDepth)
		if err != nil {
			log.Warn("remote discovery failed", "error", err)
			job.Fail(err)
			return
		}
		job.CompleteRemote(docs)
		log.Info("job completed", "documents", len(docs))
	default:
		job.Fail(discovery.TaskFailure("unknown job kind " + string(job.Kind)))
	}
}
