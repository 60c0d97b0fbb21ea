package workers

import "context"

// Workers runs a fixed set of workers one after another.
type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers in run order.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
