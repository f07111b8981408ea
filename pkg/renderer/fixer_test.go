package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixerApply(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		applied []string
	}{
		{
			name:    "clean text untouched",
			input:   "## Summary\nPlatform engineer.",
			want:    "## Summary\nPlatform engineer.",
			applied: []string{},
		},
		{
			name:    "literal newlines",
			input:   "## Summary\\nPlatform engineer.",
			want:    "## Summary\nPlatform engineer.",
			applied: []string{"Literal newlines"},
		},
		{
			name:    "emoji",
			input:   "Shipped 🚀 fast ✅",
			want:    "Shipped fast",
			applied: []string{"Emoji", "Repeated spaces", "Trailing whitespace"},
		},
		{
			name:    "dashes",
			input:   "Led the migration — fast",
			want:    "Led the migration - fast",
			applied: []string{"Dashes"},
		},
		{
			name:    "wrapping fence",
			input:   "```markdown\n## Summary\nPlatform engineer.\n```",
			want:    "## Summary\nPlatform engineer.",
			applied: []string{"Wrapping code fence"},
		},
		{
			name:    "preamble",
			input:   "Here is the tailored resume:\n\n## Summary",
			want:    "## Summary",
			applied: []string{"Preamble"},
		},
		{
			name:    "cover letter wording",
			input:   "This is a targeted resume highlighting my work.",
			want:    "The resume submitted for this role highlights my work.",
			applied: []string{"Targeted resume wording"},
		},
		{
			name:    "indentation kept",
			input:   "- item\n    - nested item",
			want:    "- item\n    - nested item",
			applied: []string{},
		},
	}

	fixer := NewFixer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := fixer.Apply(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.applied, applied)
		})
	}
}

func TestStripEmoji(t *testing.T) {
	assert.Equal(t, "ok ", stripEmoji("ok 👍"))
	assert.Equal(t, "plain text", stripEmoji("plain text"))
	assert.Equal(t, "heart", stripEmoji("heart❤️"))
}
