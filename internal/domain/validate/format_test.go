package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

func TestFormatReportPassedBanner(t *testing.T) {
	report := Report{Success: true, Summary: Summary{ExpectedCount: 2, ActualCount: 2}}
	out := FormatReport(report)
	assert.Contains(t, out, "VALIDATION PASSED")
	assert.Contains(t, out, "expected=2 actual=2")
}

func TestFormatReportFailedListsMissingAndBroken(t *testing.T) {
	report := Report{
		Success: false,
		Summary: Summary{ExpectedCount: 2, ActualCount: 1, MissingCount: 1, BrokenRefCount: 1},
		Missing: []MissingEntity{{SourceID: "src1", Kind: entity.KindTag, Name: "GA4 - Click"}},
		BrokenReferences: []BrokenReference{
			{Kind: entity.KindTag, Name: "GA4 - Click", IssueType: IssueMissingTrigger, Details: "firing trigger missing"},
		},
		Warnings: []string{"skip-existing left 1 entity unmapped"},
	}

	out := FormatReport(report)
	assert.Contains(t, out, "VALIDATION FAILED")
	assert.Contains(t, out, "Missing entities:")
	assert.Contains(t, out, "GA4 - Click (source id src1)")
	assert.Contains(t, out, "Broken references:")
	assert.Contains(t, out, "firing trigger missing")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "skip-existing left 1 entity unmapped")
}
