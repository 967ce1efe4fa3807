package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

func sampleSnapshot() entity.Snapshot {
	return entity.Snapshot{
		Tags: []entity.Tag{
			{
				Header: entity.Header{ID: "t1", Name: "GA4 - Click - Buy Button", Kind: entity.KindTag},
				Type:   "gaawe",
				Params: []entity.Param{
					{Key: "eventName", Value: "purchase"},
					{Key: "sendTo", Value: "measurement-id"},
				},
			},
			{
				Header: entity.Header{ID: "t2", Name: "GA4 - View - Product Page", Kind: entity.KindTag},
				Type:   "gaawe",
				Params: []entity.Param{
					{Key: "eventName", Value: "view_item"},
				},
			},
		},
		Triggers:  []entity.Trigger{{Header: entity.Header{ID: "tr1", Name: "Click - All Elements", Kind: entity.KindTrigger}}},
		Variables: []entity.Variable{{Header: entity.Header{ID: "v1", Name: "DLV - pageTitle", Kind: entity.KindVariable}}},
		Templates: []entity.Template{{Header: entity.Header{ID: "tmpl1", Name: "Custom Template", Kind: entity.KindTemplate}}},
	}
}

func TestFindByExactName(t *testing.T) {
	m := New(sampleSnapshot())

	tag, ok := m.FindTagByExactName("GA4 - Click - Buy Button")
	require.True(t, ok)
	assert.Equal(t, "t1", tag.ID)

	_, ok = m.FindTagByExactName("missing")
	assert.False(t, ok)

	_, ok = m.FindTriggerByExactName("Click - All Elements")
	assert.True(t, ok)
	_, ok = m.FindVariableByExactName("DLV - pageTitle")
	assert.True(t, ok)
	_, ok = m.FindTemplateByExactName("Custom Template")
	assert.True(t, ok)
}

func TestFindGA4TagsByEventName(t *testing.T) {
	m := New(sampleSnapshot())

	tags := m.FindGA4TagsByEventName("purchase")
	require.Len(t, tags, 1)
	assert.Equal(t, "t1", tags[0].ID)

	assert.Empty(t, m.FindGA4TagsByEventName("unknown_event"))
}

func TestNameSimilarityExactMatch(t *testing.T) {
	assert.Equal(t, 100.0, NameSimilarity("GA4 - Click", "GA4 - Click"))
}

func TestNameSimilarityPrefixBonus(t *testing.T) {
	withPrefix := NameSimilarity("GA4", "GA4 - Click")
	withoutRelation := NameSimilarity("GA4", "UA - Submit")
	assert.Greater(t, withPrefix, withoutRelation)
}

func TestSearchTagsByNameRanksAndLimits(t *testing.T) {
	m := New(sampleSnapshot())

	results := m.SearchTagsByName("GA4 - Click", SearchOptions{TopK: 1, Threshold: 0})
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].Tag.ID, "closest match should rank first")
}

func TestSearchTagsByNameAppliesThreshold(t *testing.T) {
	m := New(sampleSnapshot())

	results := m.SearchTagsByName("Completely Unrelated Name", SearchOptions{Threshold: 90})
	assert.Empty(t, results)
}

func TestFindSimilarTagsCombinesDimensionsAndExcludesSelf(t *testing.T) {
	m := New(sampleSnapshot())
	reference := entity.Tag{
		Header: entity.Header{ID: "t1", Name: "GA4 - Click - Buy Button"},
		Type:   "gaawe",
		Params: []entity.Param{{Key: "eventName", Value: "purchase"}},
	}

	results := m.FindSimilarTags(reference, SimilarOptions{Threshold: 0})
	for _, r := range results {
		assert.NotEqual(t, "t1", r.Tag.ID, "reference tag must not match itself")
	}
	require.NotEmpty(t, results)
	assert.True(t, results[0].TypeMatches)
}

func TestFindSimilarTagsThresholdExcludesLowScores(t *testing.T) {
	m := New(sampleSnapshot())
	reference := entity.Tag{
		Header: entity.Header{ID: "other", Name: "Completely Different"},
		Type:   "html",
	}

	results := m.FindSimilarTags(reference, SimilarOptions{Threshold: 95})
	assert.Empty(t, results)
}
