package renderer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownFileLifecycle(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "acme", "drafts")
	documents := map[string]string{
		filepath.Join(outDir, "jordan-acme-resume.md"): "# Jordan Example\n\n## PROFESSIONAL SUMMARY\n\nPlatform engineer.",
		filepath.Join(outDir, "jordan-acme-cover.md"):  "Dear Hiring Manager,\n\nI build platforms.",
	}

	paths := make([]string, 0, len(documents))
	for path, content := range documents {
		require.NoError(t, WriteMarkdown(content, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
		paths = append(paths, path)
	}

	assert.NoError(t, validateFiles(paths...))
	require.NoError(t, CleanupMarkdown(paths...))

	for _, path := range paths {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", path)
	}

	assert.Error(t, CleanupMarkdown(paths[0]), "removing an already removed file")
}

func TestValidateFiles(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "resume.md")
	require.NoError(t, os.WriteFile(existing, []byte("# Resume"), 0600))
	missing := filepath.Join(t.TempDir(), "resume.latex")

	tests := []struct {
		name    string
		paths   []string
		wantErr bool
	}{
		{"markdown present", []string{existing}, false},
		{"optional template and class unset", []string{existing, "", ""}, false},
		{"template missing", []string{existing, missing}, true},
		{"markdown missing", []string{missing}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFiles(tt.paths...)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), missing)
		})
	}
}

func TestPandocArgs(t *testing.T) {
	tests := []struct {
		name     string
		opts     PDFOptions
		expected []string
	}{
		{
			name: "default template",
			opts: PDFOptions{MarkdownPath: "in.md", OutputPath: "out.pdf"},
			expected: []string{
				"-f", "markdown", "-t", "pdf", "-o", "out.pdf",
				"--number-sections=false", "in.md",
			},
		},
		{
			name: "custom template",
			opts: PDFOptions{MarkdownPath: "in.md", OutputPath: "out.pdf", TemplatePath: "resume.latex", ClassPath: "resume.cls"},
			expected: []string{
				"-f", "markdown", "-t", "pdf", "-o", "out.pdf",
				"--template", "resume.latex",
				"--number-sections=false", "in.md",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pandocArgs(tt.opts))
		})
	}
}

func TestRenderPDFMissingMarkdown(t *testing.T) {
	if checkPandocExists() != nil {
		t.Skip("Pandoc not installed, skipping test")
	}

	tmpDir := t.TempDir()
	err := RenderPDF(context.Background(), PDFOptions{
		MarkdownPath: filepath.Join(tmpDir, "missing.md"),
		OutputPath:   filepath.Join(tmpDir, "out.pdf"),
	})
	assert.Error(t, err)
}
