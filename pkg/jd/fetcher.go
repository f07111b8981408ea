package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds a Fetch call.
const DefaultTimeout = 30 * time.Second

// MaxBodyBytes caps how much of a job posting page is read.
const MaxBodyBytes = 5 << 20

//nolint:gochecknoglobals // selector lists
var (
	noiseSelectors   = "script, style, noscript, nav, footer, header, form, iframe, svg, .cookie-banner, .sidebar"
	contentSelectors = []string{
		"#job-description",
		"[class*='job-description']",
		"[class*='jobDescription']",
		"article",
		"main",
	}
	blockSelectors = "h1, h2, h3, h4, h5, h6, p, li"
	markupElements = "article, main, section, div, span, p, li, ul, ol, a, br, table, h1, h2, h3, h4, h5, h6, script, style"
	spaceRun       = regexp.MustCompile(`\s+`)
)

// Fetch retrieves a job description from a file or URL.
func Fetch(input string) (content string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	content, err = FetchWithContext(ctx, input)
	return content, err
}

// IsURL reports whether input is an http(s) URL rather than a file path.
func IsURL(input string) (isURL bool) {
	parsedURL, err := url.Parse(input)
	isURL = err == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") && parsedURL.Host != ""
	return isURL
}

// FetchWithContext retrieves a job description with context.
func FetchWithContext(ctx context.Context, input string) (content string, err error) {
	if IsURL(input) {
		content, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch JD from URL: %s", input)
			return content, err
		}
		return content, err
	}

	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch JD from file: %s", input)
		return content, err
	}

	return content, err
}

// ReadAll reads a pasted job description, typically from stdin.
func ReadAll(r io.Reader) (content string, err error) {
	var data []byte
	data, err = io.ReadAll(io.LimitReader(r, MaxBodyBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read job description")
		return content, err
	}

	content = strings.TrimSpace(string(data))
	if content == "" {
		err = errors.New("job description is empty")
		return content, err
	}

	return content, err
}

// fetchFromFile reads a job description from a file.
func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}

	content = string(data)
	if strings.TrimSpace(content) == "" {
		err = errors.New("file is empty")
		return content, err
	}

	return content, err
}

// fetchFromURL retrieves a job posting page and reduces it to text.
func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "career-tailor/1.0")
	req.Header.Set("Accept", "text/html,text/plain")

	client := &http.Client{
		Timeout: DefaultTimeout,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	body := string(bodyBytes)
	if isMarkup(resp.Header.Get("Content-Type"), body) {
		content, err = htmlToText(body)
		if err != nil {
			return content, err
		}
	} else {
		content = strings.TrimSpace(body)
	}

	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

// isMarkup reports whether a response body should be reduced with htmlToText.
// A text/html content type is trusted. Anything else, including the text/plain
// that servers sniff for fragments like <article>, counts as markup only when
// the body contains real HTML elements.
func isMarkup(contentType, body string) (markup bool) {
	if strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		markup = true
		return markup
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return markup
	}

	// The parser always synthesizes html, head and body, so look below them.
	markup = doc.Find("body").Find(markupElements).Length() > 0 || doc.Find("head").Children().Length() > 0
	return markup
}

// htmlToText extracts readable text from a job posting page. Headings and
// paragraphs become lines and list items become "- " bullets.
func htmlToText(html string) (text string, err error) {
	var doc *goquery.Document
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		err = errors.Wrap(err, "failed to parse HTML")
		return text, err
	}

	doc.Find(noiseSelectors).Remove()

	root := doc.Find("body")
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			root = selection.First()
			break
		}
	}

	lines := make([]string, 0)
	root.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks are covered by their outermost block.
		if s.ParentsFiltered(blockSelectors).Length() > 0 {
			return
		}
		line := collapseSpace(s.Text())
		if line == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			line = "- " + line
		}
		lines = append(lines, line)
	})

	if len(lines) == 0 {
		text = collapseSpace(root.Text())
		return text, err
	}

	text = strings.Join(lines, "\n")
	return text, err
}

func collapseSpace(s string) (collapsed string) {
	collapsed = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	return collapsed
}
