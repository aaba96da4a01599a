package sourcecheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	rpdf "rsc.io/pdf"

	"github.com/david/grant-curator/internal/normalize"
)

// Preview is a snapshot of a contribution's source URL, enough for a
// reviewer to sanity-check a claim without leaving the moderation queue.
type Preview struct {
	URL            string    `json:"url"`
	FinalURL       string    `json:"final_url"`
	StatusCode     int       `json:"status_code"`
	ContentType    string    `json:"content_type"`
	Title          string    `json:"title"`
	Excerpt        string    `json:"excerpt"`
	DateCandidates []string  `json:"date_candidates"`
	FetchedAt      time.Time `json:"fetched_at"`
}

const excerptLimit = 2000

// Service fetches and summarizes source documents.
type Service struct {
	fetcher Fetcher
}

func NewService(fetcher Fetcher) *Service {
	if fetcher == nil {
		fetcher = NewCollyFetcher()
	}
	return &Service{fetcher: fetcher}
}

// Preview fetches the source URL and extracts a text excerpt plus any
// date-like strings found in the document. PDF and HTML are supported;
// anything else comes back with an empty excerpt.
func (s *Service) Preview(ctx context.Context, sourceURL string) (*Preview, error) {
	doc, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	defer doc.Body.Close()

	body, err := io.ReadAll(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	preview := &Preview{
		URL:         sourceURL,
		FinalURL:    doc.URL,
		StatusCode:  doc.StatusCode,
		ContentType: doc.ContentType,
		FetchedAt:   doc.FetchedAt,
	}

	var text string
	switch {
	case isPDF(doc.ContentType, sourceURL):
		text, err = extractPDFText(body)
		if err != nil {
			return nil, fmt.Errorf("pdf text extraction failed: %w", err)
		}
	case strings.Contains(doc.ContentType, "html") || doc.ContentType == "":
		preview.Title, text, err = htmlToText(body)
		if err != nil {
			return nil, fmt.Errorf("html parse failed: %w", err)
		}
	default:
		return preview, nil
	}

	preview.Excerpt = truncate(text, excerptLimit)
	preview.DateCandidates = dateCandidates(text)
	return preview, nil
}

func isPDF(contentType, sourceURL string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.Split(sourceURL, "?")[0]), ".pdf")
}

func htmlToText(body []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, nav, footer").Remove()

	var builder strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		builder.WriteString(sel.Text())
	})

	return title, collapseWhitespace(builder.String()), nil
}

// extractPDFText recovers from parser panics; rsc.io/pdf panics on some
// malformed documents rather than returning an error.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return collapseWhitespace(builder.String()), nil
}

var dateSnippetRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\d{1,2}/\d{1,2}/20\d{2}\b`),
	regexp.MustCompile(`(?i)\b20\d{2}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+20\d{2}\b`),
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2},?\s+20\d{2}\b`),
}

// dateCandidates pulls date-like strings out of free text, parsed through
// the same parser the merge path uses, deduplicated and sorted.
func dateCandidates(text string) []string {
	seen := make(map[string]time.Time)
	for _, expr := range dateSnippetRegexes {
		for _, token := range expr.FindAllString(text, -1) {
			parsed := normalize.ParseDateText(token)
			if parsed == nil {
				continue
			}
			iso := parsed.UTC().Format("2006-01-02")
			if _, ok := seen[iso]; !ok {
				seen[iso] = *parsed
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(seen))
	for iso := range seen {
		ordered = append(ordered, iso)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return seen[ordered[i]].Before(seen[ordered[j]])
	})
	return ordered
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)
var blankLines = regexp.MustCompile(`\n{3,}`)

func collapseWhitespace(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
