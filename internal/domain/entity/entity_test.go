package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamDepth(t *testing.T) {
	leaf := Param{Kind: ParamBoolean, Value: "true"}
	assert.Equal(t, 1, leaf.Depth())

	nested := Param{
		Kind: ParamMap,
		Map: []Param{
			{Kind: ParamList, List: []Param{
				{Kind: ParamBoolean, Value: "true"},
			}},
		},
	}
	assert.Equal(t, 3, nested.Depth())
}

func TestParamValidateRejectsExcessiveDepth(t *testing.T) {
	tooDeep := Param{
		Kind: ParamMap,
		Map: []Param{{
			Kind: ParamMap,
			Map: []Param{{
				Kind: ParamMap,
				Map: []Param{{
					Kind: ParamBoolean, Value: "x",
				}},
			}},
		}},
	}
	require.Equal(t, 4, tooDeep.Depth())

	err := tooDeep.Validate()
	require.Error(t, err)

	var repErr *ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, ErrInvalidInput, repErr.Kind)
}

func TestParamValidateAcceptsMaxDepth(t *testing.T) {
	atMax := Param{
		Kind: ParamMap,
		Map: []Param{{
			Kind: ParamMap,
			Map: []Param{{
				Kind: ParamBoolean, Value: "x",
			}},
		}},
	}
	require.Equal(t, MaxParamDepth, atMax.Depth())
	assert.NoError(t, atMax.Validate())
}

func TestEntityIDAndName(t *testing.T) {
	tag := &Tag{Header: Header{ID: "t1", Name: "Page View", Kind: KindTag}}
	e := TagEntity(tag)
	assert.Equal(t, "t1", e.ID())
	assert.Equal(t, "Page View", e.Name())

	empty := Entity{Kind: "bogus"}
	assert.Equal(t, "", empty.ID())
	assert.Equal(t, "", empty.Name())
}

func TestKindPriorityOrdering(t *testing.T) {
	assert.True(t, KindPriority(KindTemplate) < KindPriority(KindVariable))
	assert.True(t, KindPriority(KindVariable) < KindPriority(KindTrigger))
	assert.True(t, KindPriority(KindTrigger) < KindPriority(KindTag))
}

func TestTemplateTypeString(t *testing.T) {
	tmpl := Template{Header: Header{ID: "42"}, ContainerID: "GTM-ABC123"}
	assert.Equal(t, "cvt_GTM-ABC123_42", tmpl.TypeString())
}

func TestSnapshotEntitiesAndLookups(t *testing.T) {
	snap := Snapshot{
		Tags:      []Tag{{Header: Header{ID: "tag1", Name: "Tag One", Kind: KindTag}}},
		Triggers:  []Trigger{{Header: Header{ID: "trg1", Name: "Trigger One", Kind: KindTrigger}}},
		Variables: []Variable{{Header: Header{ID: "var1", Name: "Variable One", Kind: KindVariable}}},
		Templates: []Template{{Header: Header{ID: "tmpl1", Name: "Template One", Kind: KindTemplate}}},
	}

	entities := snap.Entities()
	require.Len(t, entities, 4)
	assert.Equal(t, KindTemplate, entities[0].Kind, "templates come first")
	assert.Equal(t, KindTag, entities[3].Kind, "tags come last")

	found, ok := snap.FindTagByName("Tag One")
	require.True(t, ok)
	assert.Equal(t, "tag1", found.ID)

	_, ok = snap.FindTagByName("missing")
	assert.False(t, ok)

	_, ok = snap.FindTriggerByName("Trigger One")
	assert.True(t, ok)
	_, ok = snap.FindVariableByName("Variable One")
	assert.True(t, ok)
	_, ok = snap.FindTemplateByName("Template One")
	assert.True(t, ok)
}
