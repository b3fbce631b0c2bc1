package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	candidates := []string{"CLAUDE.md", ".claude/", "AGENTS.md", ".cursorrules"}

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{name: "near miss", target: "CLAUD.md", want: []string{"CLAUDE.md"}},
		{name: "directory without slash", target: ".clau", want: []string{".claude/"}},
		{name: "exact match skipped", target: "AGENTS.md", want: []string{}},
		{name: "no match", target: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.target, candidates))
		})
	}
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, "Did you mean 'AGENTS.md'?", didYouMean("AGENT.md", []string{"AGENTS.md", "README.md"}))
	assert.Empty(t, didYouMean("zzz", []string{"AGENTS.md"}))
}
