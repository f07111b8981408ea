package renderer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// PDFOptions controls a pandoc run. TemplatePath and ClassPath are optional.
type PDFOptions struct {
	MarkdownPath string
	OutputPath   string
	TemplatePath string
	ClassPath    string
}

// RenderPDF converts markdown to PDF using pandoc.
func RenderPDF(ctx context.Context, opts PDFOptions) (err error) {
	err = checkPandocExists()
	if err != nil {
		return err
	}

	err = validateFiles(opts.MarkdownPath, opts.TemplatePath, opts.ClassPath)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(opts.OutputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	cmd := exec.CommandContext(ctx, "pandoc", pandocArgs(opts)...)

	// TEXINPUTS must include the directory holding the .cls file.
	if opts.ClassPath != "" {
		texinputs := filepath.Dir(opts.ClassPath) + ":" + os.Getenv("TEXINPUTS")
		cmd.Env = append(os.Environ(), "TEXINPUTS="+texinputs)
	}

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", string(output))
		return err
	}

	return err
}

func pandocArgs(opts PDFOptions) (args []string) {
	args = []string{
		"-f", "markdown",
		"-t", "pdf",
		"-o", opts.OutputPath,
	}
	if opts.TemplatePath != "" {
		args = append(args, "--template", opts.TemplatePath)
	}
	args = append(args, "--number-sections=false", opts.MarkdownPath)
	return args
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists() (err error) {
	_, err = exec.LookPath("pandoc")
	if err != nil {
		err = errors.New("pandoc not found in PATH (install pandoc to generate PDFs)")
		return err
	}
	return err
}

// validateFiles checks that the given files exist. Empty paths are skipped.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	err = nil
	return err
}

// WriteMarkdown writes markdown content to a file.
func WriteMarkdown(content, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write markdown file: %s", outputPath)
		return err
	}

	return err
}

// CleanupMarkdown removes intermediate markdown files after PDF generation.
func CleanupMarkdown(paths ...string) (err error) {
	for _, path := range paths {
		err = os.Remove(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to remove markdown file: %s", path)
			return err
		}
	}
	return err
}
