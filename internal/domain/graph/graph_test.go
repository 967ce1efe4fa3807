package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

func tagNode(id, name string) entity.Entity {
	return entity.TagEntity(&entity.Tag{Header: entity.Header{ID: id, Name: name, Kind: entity.KindTag}})
}

func varNode(id, name string) entity.Entity {
	return entity.VariableEntity(&entity.Variable{Header: entity.Header{ID: id, Name: name, Kind: entity.KindVariable}})
}

func TestAddNodeRejectsDuplicateAndMissingID(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(tagNode("t1", "Tag One")))
	assert.Error(t, g.AddNode(tagNode("t1", "Tag One Again")))
	assert.Error(t, g.AddNode(entity.TagEntity(&entity.Tag{})))
}

func TestAddEdgeIgnoresSelfAndUnknownNodes(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(tagNode("t1", "Tag One")))

	assert.False(t, g.AddEdge("t1", "t1", EdgeTagTrigger), "self edge ignored")
	assert.False(t, g.AddEdge("t1", "missing", EdgeTagTrigger), "unknown target ignored")
	assert.False(t, g.AddEdge("missing", "t1", EdgeTagTrigger), "unknown source ignored")
}

func TestTopologicalSortOrdersByKindPriorityThenName(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(varNode("v1", "Zed Variable")))
	require.NoError(t, g.AddNode(tagNode("t1", "Alpha Tag")))
	require.NoError(t, g.AddNode(tagNode("t2", "Beta Tag")))

	require.NoError(t, g.TopologicalSort())
	require.Equal(t, []string{"v1", "t1", "t2"}, g.Order, "variable before tags, tags tie-broken by name")
}

func TestTopologicalSortRespectsDependencies(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(tagNode("t1", "Tag One")))
	require.NoError(t, g.AddNode(varNode("v1", "Variable One")))
	require.True(t, g.AddEdge("t1", "v1", EdgeTagVariable))

	require.NoError(t, g.TopologicalSort())
	require.Equal(t, []string{"v1", "t1"}, g.Order, "dependency must precede dependent")
}

func TestTopologicalSortDetectsSameKindCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(tagNode("t1", "Tag One")))
	require.NoError(t, g.AddNode(tagNode("t2", "Tag Two")))
	require.True(t, g.AddEdge("t1", "t2", EdgeTagSetupTag))
	require.True(t, g.AddEdge("t2", "t1", EdgeTagTeardownTag))

	err := g.TopologicalSort()
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.NotEmpty(t, cycleErr.Path)
}

func TestTopologicalSortBreaksCrossKindCycle(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(tagNode("t1", "Tag One")))
	require.NoError(t, g.AddNode(varNode("v1", "Variable One")))
	require.True(t, g.AddEdge("t1", "v1", EdgeTagVariable))
	require.True(t, g.AddEdge("v1", "t1", EdgeVariableVariable))

	err := g.TopologicalSort()
	require.NoError(t, err, "cross-kind cycles are broken, not fatal")
	assert.NotEmpty(t, g.BrokenEdges)
	assert.Len(t, g.Order, 2)
}

func TestAnalyzeResolvesVariableReferencesAndWarnsOnMissing(t *testing.T) {
	snap := entity.Snapshot{
		Variables: []entity.Variable{
			{Header: entity.Header{ID: "v1", Name: "pageTitle", Kind: entity.KindVariable}},
		},
		Tags: []entity.Tag{
			{
				Header: entity.Header{ID: "t1", Name: "Tag One", Kind: entity.KindTag},
				Params: []entity.Param{
					{Kind: entity.ParamTemplate, Key: "value", Value: "{{pageTitle}}"},
					{Kind: entity.ParamTemplate, Key: "other", Value: "{{unknownVar}}"},
				},
			},
		},
	}

	result, err := Analyze(snap)
	require.NoError(t, err)
	require.Equal(t, []string{"v1", "t1"}, result.Order)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unknownVar")
}

func TestAnalyzeReturnsCircularDependencyError(t *testing.T) {
	snap := entity.Snapshot{
		Tags: []entity.Tag{
			{Header: entity.Header{ID: "t1", Name: "Tag One", Kind: entity.KindTag}, SetupTagRef: &entity.EntityRef{IsID: true, Value: "t2"}},
			{Header: entity.Header{ID: "t2", Name: "Tag Two", Kind: entity.KindTag}, SetupTagRef: &entity.EntityRef{IsID: true, Value: "t1"}},
		},
	}

	_, err := Analyze(snap)
	require.Error(t, err)
	var repErr *entity.ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, entity.ErrCircularDependency, repErr.Kind)
}

func TestAnalyzeResolvesTagTemplateEdge(t *testing.T) {
	snap := entity.Snapshot{
		Templates: []entity.Template{
			{Header: entity.Header{ID: "tmpl1", Name: "Custom", Kind: entity.KindTemplate}, ContainerID: "GTM-X"},
		},
		Tags: []entity.Tag{
			{Header: entity.Header{ID: "t1", Name: "Tag One", Kind: entity.KindTag}, Type: "cvt_GTM-X_tmpl1"},
		},
	}

	result, err := Analyze(snap)
	require.NoError(t, err)
	assert.Equal(t, []string{"tmpl1", "t1"}, result.Order)
	assert.Empty(t, result.Warnings)
}

func TestRegisterKnownTemplateEventExtendsTable(t *testing.T) {
	RegisterKnownTemplateEvent("custom_type", "customParam")
	assert.Equal(t, "customParam", KnownTemplateEvents["custom_type"])
}
