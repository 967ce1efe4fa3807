package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferKindFromLeadingTokenRecognizesVocabularies(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantKey  string
		wantBool bool
	}{
		{"ga4 prefix", "GA4 - Click", "tag-category", true},
		{"ua prefix", "ua_pageview", "tag-category", true},
		{"click prefix", "Click - All Elements", "trigger-kind", true},
		{"dlv prefix", "DLV - pageTitle", "variable-kind", true},
		{"unknown prefix", "Mystery Thing", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, ok := InferKindFromLeadingToken(tc.input)
			assert.Equal(t, tc.wantBool, ok)
			assert.Equal(t, tc.wantKey, key)
		})
	}
}

func TestBaselineTemplatesHaveFullConfidence(t *testing.T) {
	for name, pattern := range BaselineTemplates {
		assert.Equal(t, 1.0, pattern.Confidence, "baseline template %s should be fully confident", name)
		assert.NotEmpty(t, pattern.Segments)
	}
}
