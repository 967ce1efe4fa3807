package orchestrate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/adapters/memory"
	"github.com/alexisbeaulieu97/tagsync/internal/application/build"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/session"
)

func fastBuildOptions(workspace string) build.Options {
	opts := build.DefaultOptions(workspace)
	opts.InterRequestDelay = 0
	opts.BackoffBase = time.Millisecond
	opts.BackoffCap = time.Millisecond
	return opts
}

func seededBackend() *memory.Adapter {
	backend := memory.New(time.Minute)
	backend.Seed("source", entity.Snapshot{
		Variables: []entity.Variable{{Header: entity.Header{ID: "v1", Name: "pageTitle", Kind: entity.KindVariable}}},
		Tags: []entity.Tag{{
			Header: entity.Header{ID: "t1", Name: "GA4 - Click", Kind: entity.KindTag, Raw: map[string]interface{}{}},
			Params: []entity.Param{{Kind: entity.ParamTemplate, Key: "value", Value: "{{pageTitle}}"}},
		}},
	})
	return backend
}

func TestStartRunsFullPipelineToCompletion(t *testing.T) {
	backend := seededBackend()
	o := New(backend, nil, nil)

	st, err := o.Start(context.Background(), "sess1", "source", "target", Options{
		SkipExisting: true,
		BuildOptions: fastBuildOptions("target"),
	})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseCompleted, st.Phase)
	assert.Len(t, st.Created, 2)
	require.NotNil(t, st.Validation)
	assert.True(t, st.Validation.Success)
}

func TestStartRegistersSessionForLaterGet(t *testing.T) {
	backend := seededBackend()
	o := New(backend, nil, nil)

	_, err := o.Start(context.Background(), "sess1", "source", "target", Options{BuildOptions: fastBuildOptions("target")})
	require.NoError(t, err)

	st, ok := o.Get("sess1")
	require.True(t, ok)
	assert.Equal(t, "sess1", st.SessionID)
}

func TestGetUnknownSessionReturnsFalse(t *testing.T) {
	o := New(memory.New(time.Minute), nil, nil)
	_, ok := o.Get("missing")
	assert.False(t, ok)
}

func TestDryRunSkipsBuildAndValidation(t *testing.T) {
	backend := seededBackend()
	o := New(backend, nil, nil)

	st, err := o.Start(context.Background(), "sess1", "source", "target", Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseCompleted, st.Phase)
	assert.Empty(t, st.Created)
	assert.Nil(t, st.Validation)
	assert.NotEmpty(t, st.Plan.Steps)
}

func TestResumeOnCompletedSessionIsANoOp(t *testing.T) {
	backend := seededBackend()
	o := New(backend, nil, nil)

	st, err := o.Start(context.Background(), "sess1", "source", "target", Options{BuildOptions: fastBuildOptions("target")})
	require.NoError(t, err)
	require.Equal(t, session.PhaseCompleted, st.Phase)

	resumed, err := o.Resume(context.Background(), "sess1", Options{BuildOptions: fastBuildOptions("target")})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseCompleted, resumed.Phase)
}

func TestResumeUnknownSessionReturnsNotFound(t *testing.T) {
	o := New(memory.New(time.Minute), nil, nil)
	_, err := o.Resume(context.Background(), "missing", Options{})
	require.Error(t, err)
	var repErr *entity.ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, entity.ErrNotFound, repErr.Kind)
}

func TestStartFailsWhenContextAlreadyCancelled(t *testing.T) {
	// A pre-cancelled context fails the run at the first phase boundary.
	backend := seededBackend()
	o := New(backend, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := o.Start(ctx, "sess1", "source", "target", Options{BuildOptions: fastBuildOptions("target")})
	require.Error(t, err)
	assert.Equal(t, session.PhaseError, st.Phase)
}
