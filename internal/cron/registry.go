package cron

import "context"

// Job is one maintenance task run by the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in registration order. A second job with an already
// registered name is ignored.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry preloaded with jobs. Nil jobs are skipped.
func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{names: make(map[string]struct{}, len(jobs))}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register adds job and reports whether it was accepted.
func (r *Registry) Register(job Job) bool {
	if job == nil {
		return false
	}
	if r.names == nil {
		r.names = map[string]struct{}{}
	}
	if _, dup := r.names[job.Name()]; dup {
		return false
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return true
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
