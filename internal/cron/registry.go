package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is a maintenance task. Run reports how many rows it removed.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Registry holds uniquely named jobs in registration order.
type Registry struct {
	jobs   []Job
	byName map[string]Job
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Job{}}
}

// Register appends jobs, skipping nils. Names must be non-empty and unique.
func (r *Registry) Register(jobs ...Job) error {
	for _, job := range jobs {
		if job == nil {
			continue
		}
		name := job.Name()
		if name == "" {
			return fmt.Errorf("job %T has no name", job)
		}
		if _, dup := r.byName[name]; dup {
			return fmt.Errorf("job %q registered twice", name)
		}
		r.byName[name] = job
		r.jobs = append(r.jobs, job)
	}
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

// Only narrows the registry to the named jobs, keeping registration order.
// No names keeps every job.
func (r *Registry) Only(names ...string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown maintenance job %q", name)
		}
		keep[name] = true
	}
	narrowed := NewRegistry()
	for _, job := range r.jobs {
		if keep[job.Name()] {
			if err := narrowed.Register(job); err != nil {
				return nil, err
			}
		}
	}
	return narrowed, nil
}
