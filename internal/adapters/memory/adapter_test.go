package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/ports"
)

func TestCreateTagAssignsIDAndRejectsDuplicateName(t *testing.T) {
	a := New(time.Minute)
	ctx := context.Background()

	tag, err := a.CreateTag(ctx, "target", map[string]interface{}{"name": "GA4 - Click", "type": "gaawe"})
	require.NoError(t, err)
	assert.NotEmpty(t, tag.ID)
	assert.Equal(t, "GA4 - Click", tag.Name)
	assert.Equal(t, "gaawe", tag.Type)

	_, err = a.CreateTag(ctx, "target", map[string]interface{}{"name": "GA4 - Click"})
	require.Error(t, err)
	var repErr *entity.ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, entity.ErrDuplicateName, repErr.Kind)
}

func TestGetTagNotFound(t *testing.T) {
	a := New(time.Minute)
	_, err := a.GetTag(context.Background(), "target", "missing")
	require.Error(t, err)
	var repErr *entity.ReplicationError
	require.ErrorAs(t, err, &repErr)
	assert.Equal(t, entity.ErrNotFound, repErr.Kind)
}

func TestSeedAndFindByName(t *testing.T) {
	a := New(time.Minute)
	a.Seed("source", entity.Snapshot{
		Tags: []entity.Tag{{Header: entity.Header{ID: "t1", Name: "GA4 - Click", Kind: entity.KindTag}}},
	})

	tag, ok, err := a.FindTagByName(context.Background(), "source", "GA4 - Click")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "t1", tag.ID)

	_, ok, err = a.FindTagByName(context.Background(), "source", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTagsUpdatesCacheAge(t *testing.T) {
	a := New(time.Minute)
	ctx := context.Background()

	_, ok := a.CacheAge("target", entity.KindTag)
	assert.False(t, ok, "no listedAt recorded yet")

	_, err := a.ListTags(ctx, "target", ports.ListOptions{})
	require.NoError(t, err)

	age, ok := a.CacheAge("target", entity.KindTag)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, age, time.Duration(0))
}

func TestCreateTagInvalidatesListCacheAge(t *testing.T) {
	a := New(time.Minute)
	ctx := context.Background()

	_, err := a.ListTags(ctx, "target", ports.ListOptions{})
	require.NoError(t, err)
	_, ok := a.CacheAge("target", entity.KindTag)
	require.True(t, ok)

	_, err = a.CreateTag(ctx, "target", map[string]interface{}{"name": "New Tag"})
	require.NoError(t, err)

	_, ok = a.CacheAge("target", entity.KindTag)
	assert.False(t, ok, "cache age cleared after a create")
}

func TestDeleteTagNotFound(t *testing.T) {
	a := New(time.Minute)
	err := a.DeleteTag(context.Background(), "target", "missing")
	require.Error(t, err)
}

func TestDeleteTagRemovesEntity(t *testing.T) {
	a := New(time.Minute)
	ctx := context.Background()
	tag, err := a.CreateTag(ctx, "target", map[string]interface{}{"name": "GA4 - Click"})
	require.NoError(t, err)

	require.NoError(t, a.DeleteTag(ctx, "target", tag.ID))
	_, err = a.GetTag(ctx, "target", tag.ID)
	assert.Error(t, err)
}

func TestSnapshotAggregatesAllKinds(t *testing.T) {
	a := New(time.Minute)
	a.Seed("source", entity.Snapshot{
		Tags:      []entity.Tag{{Header: entity.Header{ID: "t1", Name: "Tag", Kind: entity.KindTag}}},
		Triggers:  []entity.Trigger{{Header: entity.Header{ID: "tr1", Name: "Trigger", Kind: entity.KindTrigger}}},
		Variables: []entity.Variable{{Header: entity.Header{ID: "v1", Name: "Variable", Kind: entity.KindVariable}}},
		Templates: []entity.Template{{Header: entity.Header{ID: "tmpl1", Name: "Template", Kind: entity.KindTemplate}}},
	})

	snap, err := a.Snapshot(context.Background(), "source", ports.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, snap.Tags, 1)
	assert.Len(t, snap.Triggers, 1)
	assert.Len(t, snap.Variables, 1)
	assert.Len(t, snap.Templates, 1)
}

func TestTTLReturnsConfiguredWindow(t *testing.T) {
	a := New(45 * time.Second)
	assert.Equal(t, 45*time.Second, a.TTL())
}
