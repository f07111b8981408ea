package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoleLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"senior", RoleLevelSenior},
		{"Senior", RoleLevelSenior},
		{" mid ", RoleLevelMid},
		{"Staff", RoleLevelSenior},
		{"Principal Engineer", RoleLevelSenior},
		{"Senior Director", RoleLevelDirector},
		{"Head of Platform", RoleLevelDirector},
		{"VP Engineering", RoleLevelExecutive},
		{"C-level / Chief", RoleLevelExecutive},
		{"Junior", RoleLevelEntry},
		{"intern", RoleLevelEntry},
		{"", RoleLevelMid},
		{"unclear", RoleLevelMid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRoleLevel(tt.input))
		})
	}
}
