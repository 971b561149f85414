package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDays_SortsByDate(t *testing.T) {
	input := `[
		{"date":"2024-05-02","messages":[{"sender":"user","content":"b"}]},
		{"date":"2024-05-01","messages":[{"sender":"assistant","content":"hi"},{"sender":"user","content":"a"}]}
	]`

	days, err := loadDays(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-05-01", days[0].Date)
	assert.Len(t, days[0].Messages, 2)
}

func TestLoadDays_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `nope`},
		{name: "bad date", input: `[{"date":"yesterday","messages":[]}]`},
		{name: "bad sender", input: `[{"date":"2024-05-01","messages":[{"sender":"bot","content":"x"}]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadDays(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
