package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferPatternEmptyInput(t *testing.T) {
	pattern := InferPattern(nil)
	assert.Equal(t, Pattern{}, pattern)
}

func TestInferPatternFindsSeparatorAndSegments(t *testing.T) {
	names := []string{
		"GA4 - Click",
		"GA4 - View",
		"UA - Click",
	}
	pattern := InferPattern(names)

	require.Equal(t, " - ", pattern.Separator)
	require.Len(t, pattern.Segments, 2)
	assert.Equal(t, SegmentVariable, pattern.Segments[0].Kind)
	assert.Equal(t, SegmentVariable, pattern.Segments[1].Kind)
}

func TestInferPatternFallsBackWhenNoSeparatorFits(t *testing.T) {
	names := []string{"abc", "defg", "hijkl"}
	pattern := InferPattern(names)

	assert.Equal(t, "", pattern.Separator)
	require.Len(t, pattern.Segments, 1)
	assert.Equal(t, SegmentVariable, pattern.Segments[0].Kind)
}

func TestGenerateNameUsesParamsThenPossibleValuesThenFallback(t *testing.T) {
	pattern := Pattern{
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentLiteral, Literal: "GA4"},
			{Kind: SegmentVariable, VariableName: "event", PossibleValues: []string{"Click"}},
		},
	}

	withParam := GenerateName(pattern, map[string]string{"event": "View"})
	assert.Equal(t, "GA4 - View", withParam)

	withoutParam := GenerateName(pattern, nil)
	assert.Equal(t, "GA4 - Click", withoutParam)
}

func TestValidateDetectsSegmentCountMismatch(t *testing.T) {
	pattern := Pattern{
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentLiteral, Literal: "GA4"},
			{Kind: SegmentVariable, VariableName: "event"},
		},
	}

	result, err := Validate("GA4 - Click - Extra", pattern)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Issues[0], "segment count mismatch")
}

func TestValidateDetectsLiteralMismatch(t *testing.T) {
	pattern := Pattern{
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentLiteral, Literal: "GA4"},
			{Kind: SegmentVariable, VariableName: "event"},
		},
	}

	result, err := Validate("UA - Click", pattern)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.SuggestedCorrection)
}

func TestValidateAcceptsMatchingName(t *testing.T) {
	pattern := Pattern{
		Separator: " - ",
		Segments: []Segment{
			{Kind: SegmentLiteral, Literal: "GA4"},
			{Kind: SegmentVariable, VariableName: "event"},
		},
	}

	result, err := Validate("GA4 - Click", pattern)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestExtractVariablesRoundTripsWithGenerateName(t *testing.T) {
	names := []string{"GA4 - Click", "GA4 - View", "UA - Click", "UA - Submit"}
	pattern := InferPattern(names)

	for _, n := range names {
		vars := ExtractVariables(n, pattern)
		assert.Equal(t, n, GenerateName(pattern, vars))
	}
}

func TestInferPatternConfidenceReflectsRoundTripFraction(t *testing.T) {
	names := []string{"GA4 - Click", "GA4 - View", "UA - Click"}
	pattern := InferPattern(names)
	assert.Equal(t, 1.0, pattern.Confidence)
}
