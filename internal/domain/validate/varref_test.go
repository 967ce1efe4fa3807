package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarRefNamesExtractsAllReferences(t *testing.T) {
	value := "prefix {{pageTitle}} middle {{ event_name }} suffix"
	assert.Equal(t, []string{"pageTitle", "event_name"}, varRefNames(value))
}

func TestVarRefNamesNoMatches(t *testing.T) {
	assert.Empty(t, varRefNames("no references here"))
}

func TestVarRefNamesIgnoresInvalidNames(t *testing.T) {
	assert.Empty(t, varRefNames("{{123starts-with-digit}}"))
}
