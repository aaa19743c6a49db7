package value_objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportance(t *testing.T) {
	tests := []struct {
		input    string
		expected Importance
	}{
		{"low", ImportanceLow},
		{"Medium", ImportanceMedium},
		{" HIGH ", ImportanceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			i, err := ParseImportance(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, i)
		})
	}
}

func TestParseImportance_Invalid(t *testing.T) {
	for _, input := range []string{"", "urgent", "critical"} {
		_, err := ParseImportance(input)
		assert.ErrorIs(t, err, ErrInvalidImportance, input)
	}
}

func TestNormalizeImportance(t *testing.T) {
	assert.Equal(t, ImportanceHigh, NormalizeImportance("High"))
	assert.Equal(t, Importance("urgent"), NormalizeImportance("URGENT"))
	assert.False(t, NormalizeImportance("urgent").IsValid())
}
