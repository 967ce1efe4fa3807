package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

func TestNewProducesIdleState(t *testing.T) {
	st := New("sess1", "source", "target")
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.NotNil(t, st.Mapper)
	assert.NotNil(t, st.NamingMap)
	assert.NotNil(t, st.Patterns)
}

func TestAdvanceEnforcesMonotonicOrder(t *testing.T) {
	st := New("sess1", "source", "target")
	require.NoError(t, st.Advance(PhaseAnalyzing))
	require.NoError(t, st.Advance(PhaseNaming))

	err := st.Advance(PhaseAnalyzing)
	require.Error(t, err)
	var repErr *entity.ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, entity.ErrStateInvalid, repErr.Kind)
}

func TestAdvanceToErrorIsAlwaysAllowed(t *testing.T) {
	st := New("sess1", "source", "target")
	require.NoError(t, st.Advance(PhaseAnalyzing))
	require.NoError(t, st.Advance(PhaseError))
	assert.Equal(t, PhaseError, st.Phase)
}

func TestAdvanceOutOfErrorIsRejected(t *testing.T) {
	st := New("sess1", "source", "target")
	require.NoError(t, st.Advance(PhaseError))

	err := st.Advance(PhaseAnalyzing)
	require.Error(t, err)
}

func TestFailRecordsErrorAndTransitions(t *testing.T) {
	st := New("sess1", "source", "target")
	st.Fail(errors.New("boom"))
	assert.Equal(t, PhaseError, st.Phase)
	require.Len(t, st.Errors, 1)
}

func TestWarnAppends(t *testing.T) {
	st := New("sess1", "source", "target")
	st.Warn("careful")
	assert.Equal(t, []string{"careful"}, st.Warnings)
}

func TestComputeProgressOutsideBuildingUsesPhaseWeight(t *testing.T) {
	st := New("sess1", "source", "target")
	require.NoError(t, st.Advance(PhaseAnalyzing))

	p := st.ComputeProgress(0, 0, "analyzing")
	assert.Equal(t, 10.0, p.Percentage)
}

func TestComputeProgressDuringBuildingInterpolatesStepCursor(t *testing.T) {
	st := New("sess1", "source", "target")
	require.NoError(t, st.Advance(PhaseAnalyzing))
	require.NoError(t, st.Advance(PhaseNaming))
	require.NoError(t, st.Advance(PhasePlanning))
	require.NoError(t, st.Advance(PhaseBuilding))

	half := st.ComputeProgress(5, 10, "building")
	full := st.ComputeProgress(10, 10, "building")

	assert.Greater(t, half.Percentage, 25.0)
	assert.Less(t, half.Percentage, full.Percentage)
	assert.InDelta(t, 95.0, full.Percentage, 0.01)
}

func TestComputeProgressCompletedIsFullPercentage(t *testing.T) {
	st := New("sess1", "source", "target")
	st.Phase = PhaseCompleted

	p := st.ComputeProgress(0, 0, "done")
	assert.Equal(t, 100.0, p.Percentage)
}
