package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
	"github.com/alexisbeaulieu97/tagsync/internal/domain/idmap"
)

func TestOptionsResolveNamePrecedence(t *testing.T) {
	override := Options{NameOverride: "Override", NamePrefix: "pre-", NameSuffix: "-suf"}
	assert.Equal(t, "Override", override.ResolveName("Source"))

	affixed := Options{NamePrefix: "pre-", NameSuffix: "-suf"}
	assert.Equal(t, "pre-Source-suf", affixed.ResolveName("Source"))

	unchanged := Options{}
	assert.Equal(t, "Source", unchanged.ResolveName("Source"))
}

func TestTransformTagStripsServerFieldsAndRemapsTriggers(t *testing.T) {
	m := idmap.New()
	require.NoError(t, m.Bind("trig-src", "trig-tgt", entity.KindTrigger, "Click - All Elements"))

	tr := New()
	tag := entity.Tag{
		Header: entity.Header{ID: "t1", Name: "GA4 - Click", Raw: map[string]interface{}{
			"name":          "GA4 - Click",
			"accountId":     "123",
			"tagManagerUrl": "https://example.com",
		}},
		FiringTriggerIDs: []string{"trig-src"},
	}

	payload, warnings := tr.TransformTag(tag, m, Options{})
	assert.Empty(t, warnings)
	assert.NotContains(t, payload, "accountId")
	assert.NotContains(t, payload, "tagManagerUrl")
	assert.Equal(t, []string{"trig-tgt"}, payload["firingTriggerId"])
	assert.Equal(t, "GA4 - Click", payload["name"])
}

func TestTransformTagWarnsOnUnresolvedFiringTrigger(t *testing.T) {
	m := idmap.New()
	tr := New()
	tag := entity.Tag{
		Header:           entity.Header{ID: "t1", Name: "GA4 - Click", Raw: map[string]interface{}{}},
		FiringTriggerIDs: []string{"unresolved-trigger"},
	}

	_, warnings := tr.TransformTag(tag, m, Options{})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "not every firing trigger id was resolved")
}

func TestTransformTagRewritesCvtTypeUsingResolvedMapping(t *testing.T) {
	m := idmap.New()
	require.NoError(t, m.BindTemplateType("cvt_GTM-OLD_1", "cvt_GTM-NEW_9"))

	tr := New()
	tag := entity.Tag{
		Header: entity.Header{ID: "t1", Name: "Custom Tag", Raw: map[string]interface{}{}},
		Type:   "cvt_GTM-OLD_1",
	}

	payload, warnings := tr.TransformTag(tag, m, Options{})
	assert.Empty(t, warnings)
	assert.Equal(t, "cvt_GTM-NEW_9", payload["type"])
}

func TestTransformTagWarnsWhenCvtTypeUnresolved(t *testing.T) {
	m := idmap.New()
	tr := New()
	tag := entity.Tag{
		Header: entity.Header{ID: "t1", Name: "Custom Tag", Raw: map[string]interface{}{}},
		Type:   "cvt_GTM-OLD_1",
	}

	payload, warnings := tr.TransformTag(tag, m, Options{})
	require.Len(t, warnings, 1)
	assert.Equal(t, "cvt_GTM-OLD_1", payload["type"], "original type preserved when unresolved")
}

func TestRewriteTagRefPrefersNameFormAndMapsIDForm(t *testing.T) {
	m := idmap.New()
	require.NoError(t, m.Bind("setup-src", "setup-tgt", entity.KindTag, "Setup Tag"))
	tr := New()

	nameTag := entity.Tag{
		Header:      entity.Header{ID: "t1", Name: "T1", Raw: map[string]interface{}{}},
		SetupTagRef: &entity.EntityRef{IsID: false, Value: "Setup Tag"},
	}
	payload, _ := tr.TransformTag(nameTag, m, Options{})
	assert.Equal(t, map[string]interface{}{"tagName": "Setup Tag"}, payload["setupTag"])

	idTag := entity.Tag{
		Header:      entity.Header{ID: "t2", Name: "T2", Raw: map[string]interface{}{}},
		SetupTagRef: &entity.EntityRef{IsID: true, Value: "setup-src"},
	}
	payload, _ = tr.TransformTag(idTag, m, Options{})
	assert.Equal(t, map[string]interface{}{"tagName": "Setup Tag"}, payload["setupTag"])
}

func TestTransformTriggerClonesFilterStructures(t *testing.T) {
	tr := New()
	trig := entity.Trigger{
		Header: entity.Header{ID: "tr1", Name: "Click - All", Raw: map[string]interface{}{"containerId": "123"}},
		Filter: []entity.Param{{Kind: entity.ParamTemplate, Key: "arg0", Value: "{{Click Classes}}"}},
	}

	payload := tr.TransformTrigger(trig, Options{})
	assert.NotContains(t, payload, "containerId")
	filters, ok := payload["filter"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, filters, 1)
	assert.Equal(t, "{{Click Classes}}", filters[0]["value"])
}

func TestTransformVariablePreservesParams(t *testing.T) {
	tr := New()
	v := entity.Variable{
		Header: entity.Header{ID: "v1", Name: "DLV - pageTitle", Raw: map[string]interface{}{"variableId": "999"}},
		Params: []entity.Param{{Kind: entity.ParamTemplate, Key: "name", Value: "pageTitle"}},
	}

	payload := tr.TransformVariable(v, Options{})
	assert.NotContains(t, payload, "variableId")
	assert.Equal(t, "DLV - pageTitle", payload["name"])
}

func TestTransformTemplateStripsGalleryReference(t *testing.T) {
	tr := New()
	tpl := entity.Template{
		Header:       entity.Header{ID: "tmpl1", Name: "Custom", Raw: map[string]interface{}{"galleryReference": map[string]interface{}{"id": "cvt_temp_public_id"}}},
		TemplateData: "<script>...</script>",
	}

	payload := tr.TransformTemplate(tpl, Options{})
	assert.NotContains(t, payload, "galleryReference")
	assert.Equal(t, "<script>...</script>", payload["templateData"])
}

func TestExtractGalleryCandidatesExcludesSentinelAndDuplicates(t *testing.T) {
	data := "ref cvt_temp_public_id and cvt_abc123 plus cvt_abc123 again"
	candidates := ExtractGalleryCandidates(data)
	assert.Equal(t, []string{"cvt_abc123"}, candidates)
}

func TestGallerySentinelExposed(t *testing.T) {
	assert.Equal(t, "cvt_temp_public_id", GallerySentinel())
}
