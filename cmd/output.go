package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/career-tailor/pkg/config"
	"github.com/nikogura/career-tailor/pkg/renderer"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/nikogura/career-tailor/pkg/resume"
	"github.com/nikogura/career-tailor/pkg/store"
	"github.com/pkg/errors"
)

// outputFilenames holds every path written for one analysis.
type outputFilenames struct {
	resumeMD  string
	resumeTXT string
	resumePDF string
	coverMD   string
	coverPDF  string
	briefMD   string
	jdTXT     string
}

// outputOptions controls what writeDocuments produces.
type outputOptions struct {
	baseDir      string
	jobID        string
	renderPDF    bool
	keepMarkdown bool
}

// buildFilenames generates all output file paths.
func buildFilenames(outDir, name, company, role, jobID string) (filenames outputFilenames) {
	sanitizedName := sanitizeFilename(name)
	sanitizedCompany := sanitizeFilename(company)

	// Truncate role to first 4 words to keep filename reasonable
	roleWords := strings.Fields(role)
	if len(roleWords) > 4 {
		role = strings.Join(roleWords[:4], " ")
	}
	sanitizedRole := sanitizeFilename(role)

	parts := make([]string, 0, 4)
	for _, part := range []string{sanitizedName, sanitizedCompany, sanitizedRole, sanitizeFilename(jobID)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	baseFilename := strings.Join(parts, "-")
	if baseFilename == "" {
		baseFilename = "application"
	}

	filenames = outputFilenames{
		resumeMD:  filepath.Join(outDir, baseFilename+"-resume.md"),
		resumeTXT: filepath.Join(outDir, baseFilename+"-resume.txt"),
		resumePDF: filepath.Join(outDir, baseFilename+"-resume.pdf"),
		coverMD:   filepath.Join(outDir, baseFilename+"-cover.md"),
		coverPDF:  filepath.Join(outDir, baseFilename+"-cover.pdf"),
		briefMD:   filepath.Join(outDir, baseFilename+"-strategy-brief.md"),
		jdTXT:     filepath.Join(outDir, baseFilename+"-jd.txt"),
	}

	return filenames
}

func sanitizeFilename(name string) (sanitized string) {
	// Remove common company suffixes
	suffixes := []string{
		" LLC", " llc",
		" Inc.", " inc.",
		" Inc", " inc",
		" Corporation", " corporation",
		" Corp.", " corp.",
		" Corp", " corp",
		" Limited", " limited",
		" Ltd.", " ltd.",
		" Ltd", " ltd",
		" Co.", " co.",
		" Co", " co",
		", LLC", ", llc",
		", Inc.", ", inc.",
		", Inc", ", inc",
	}

	sanitized = name
	for _, suffix := range suffixes {
		sanitized = strings.TrimSuffix(sanitized, suffix)
	}

	sanitized = strings.ToLower(sanitized)

	// Replace spaces and special chars with hyphens
	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")

	return sanitized
}

// createCompanyOutputDir creates baseOutDir/<company>.
func createCompanyOutputDir(baseOutDir, company string) (outDir string, err error) {
	companyDir := sanitizeFilename(company)
	if companyDir == "" {
		companyDir = "unknown-company"
	}
	outDir = filepath.Join(baseOutDir, companyDir)
	err = os.MkdirAll(outDir, 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return outDir, err
	}
	return outDir, err
}

// getBaseOutputDir returns the base output directory from flag or config.
func getBaseOutputDir(flagValue string, cfg config.Config) (baseOutDir string) {
	baseOutDir = flagValue
	if baseOutDir == "" {
		baseOutDir = cfg.Defaults.OutputDir
	}
	return baseOutDir
}

// writeDocuments cleans the generated documents, assembles the final resume
// and cover letter, and writes everything for analysis under opts.baseDir.
func writeDocuments(ctx context.Context, cfg config.Config, meta repository.Meta, analysis store.Analysis, opts outputOptions) (filenames outputFilenames, err error) {
	var outDir string
	outDir, err = createCompanyOutputDir(opts.baseDir, analysis.Company)
	if err != nil {
		return filenames, err
	}

	filenames = buildFilenames(outDir, cfg.Name, analysis.Company, analysis.JobTitle, opts.jobID)

	fixer := renderer.NewFixer()
	resumeText := fixDocument(fixer, "resume", analysis.Resume)
	coverText := fixDocument(fixer, "cover letter", analysis.CoverLetter)
	briefText := fixDocument(fixer, "strategy brief", analysis.StrategyBrief)

	parsed := resume.Parse(resumeText)

	files := []struct {
		label   string
		path    string
		content string
	}{
		{"job description", filenames.jdTXT, analysis.JobDescription},
		{"resume markdown", filenames.resumeMD, renderer.ResumeMarkdown(parsed, meta, analysis.MatchedBlocks)},
		{"resume text", filenames.resumeTXT, renderer.ResumeText(parsed, meta, analysis.MatchedBlocks)},
		{"cover letter markdown", filenames.coverMD, renderer.CoverLetterMarkdown(coverText, meta, analysis.Company, analysis.Date)},
		{"strategy brief", filenames.briefMD, briefText},
	}

	for _, f := range files {
		err = renderer.WriteMarkdown(f.content, f.path)
		if err != nil {
			err = errors.Wrapf(err, "failed to write %s", f.label)
			return filenames, err
		}
		if getVerbose() {
			fmt.Printf("Wrote %s: %s\n", f.label, f.path)
		}
	}

	if opts.renderPDF {
		renderPDFs(ctx, cfg, filenames, opts.keepMarkdown)
	}

	return filenames, err
}

func fixDocument(fixer *renderer.Fixer, label, text string) (fixed string) {
	var applied []string
	fixed, applied = fixer.Apply(text)
	if getVerbose() && len(applied) > 0 {
		fmt.Printf("Cleaned %s: %s\n", label, strings.Join(applied, ", "))
	}
	return fixed
}

// renderPDFs renders the resume and cover letter. Failures are reported and
// the markdown is kept.
func renderPDFs(ctx context.Context, cfg config.Config, filenames outputFilenames, keepMarkdown bool) {
	if getVerbose() {
		fmt.Println("Rendering PDFs...")
	}

	pairs := []struct {
		label string
		md    string
		pdf   string
	}{
		{"Resume", filenames.resumeMD, filenames.resumePDF},
		{"Cover letter", filenames.coverMD, filenames.coverPDF},
	}

	rendered := make([]string, 0, len(pairs))
	for _, p := range pairs {
		err := renderer.RenderPDF(ctx, renderer.PDFOptions{
			MarkdownPath: p.md,
			OutputPath:   p.pdf,
			TemplatePath: cfg.Pandoc.TemplatePath,
			ClassPath:    cfg.Pandoc.ClassFile,
		})
		if err != nil {
			fmt.Printf("Warning: Failed to render %s PDF: %v\n", strings.ToLower(p.label), err)
			fmt.Printf("%s markdown saved at: %s\n", p.label, p.md)
			continue
		}
		fmt.Printf("%s PDF saved at: %s\n", p.label, p.pdf)
		rendered = append(rendered, p.md)
	}

	if !keepMarkdown && len(rendered) > 0 {
		err := renderer.CleanupMarkdown(rendered...)
		if err != nil {
			fmt.Printf("Warning: Failed to clean up markdown files: %v\n", err)
		}
	}
}

func printFilenames(filenames outputFilenames) {
	fmt.Println("\nFiles written:")
	fmt.Printf("  Resume:          %s\n", filenames.resumeMD)
	fmt.Printf("  Resume (text):   %s\n", filenames.resumeTXT)
	fmt.Printf("  Cover letter:    %s\n", filenames.coverMD)
	fmt.Printf("  Strategy brief:  %s\n", filenames.briefMD)
	fmt.Printf("  Job description: %s\n", filenames.jdTXT)
}
