package coachlens

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
)

// maxBodyLength caps extracted page text. Anything past this adds little to
// the heuristics and bloats prompts.
const maxBodyLength = 8000

var whitespaceRe = regexp.MustCompile(`\s+`)

var (
	languageDetectorOnce sync.Once
	languageDetector     lingua.LanguageDetector
)

// detectLanguage identifies the page language from a text sample. The
// detector is built once; it is expensive to construct.
func detectLanguage(text string) string {
	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English, lingua.Spanish, lingua.French, lingua.German,
				lingua.Portuguese, lingua.Italian, lingua.Dutch, lingua.Japanese,
				lingua.Chinese, lingua.Russian,
			).
			Build()
	})

	sample := text
	if len(sample) > 1000 {
		sample = sample[:1000]
	}
	if lang, ok := languageDetector.DetectLanguageOf(sample); ok {
		return lang.String()
	}
	return ""
}

// ExtractPage builds a PageContent snapshot from raw HTML. Readability
// article distillation is tried first; when it finds nothing usable, the
// fallback strips the usual boilerplate elements and takes the remaining
// document text. The body is capped at maxBodyLength characters.
func ExtractPage(rawURL, html string) (PageContent, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return PageContent{}, fmt.Errorf("invalid page URL: %w", err)
	}

	var title, body string
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		title = article.Title
		body = article.TextContent
	} else {
		title, body, err = stripBoilerplate(html)
		if err != nil {
			return PageContent{}, err
		}
	}

	body = strings.TrimSpace(whitespaceRe.ReplaceAllString(body, " "))
	if len(body) > maxBodyLength {
		body = body[:maxBodyLength]
	}

	page := PageContent{
		Title:     strings.TrimSpace(title),
		URL:       rawURL,
		Body:      body,
		WordCount: len(strings.Fields(body)),
	}
	if body != "" {
		page.Language = detectLanguage(body)
	}
	return page, nil
}

// stripBoilerplate removes script, style, and navigation chrome and returns
// the document title and remaining text.
func stripBoilerplate(html string) (title, body string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = doc.Find("title").First().Text()
	doc.Find("script, style, nav, header, footer, aside").Remove()
	body = doc.Find("body").Text()
	if strings.TrimSpace(body) == "" {
		body = doc.Text()
	}
	return title, body, nil
}
