package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string { return s.name }

func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndSkipsDuplicates(t *testing.T) {
	a := &stubJob{name: "a"}
	b := &stubJob{name: "b"}
	registry := NewRegistry(a, nil)

	assert.True(t, registry.Register(b))
	assert.False(t, registry.Register(&stubJob{name: "a"}))
	assert.False(t, registry.Register(nil))

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, a, jobs[0])
	assert.Same(t, b, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "Jobs returns a copy")
}
