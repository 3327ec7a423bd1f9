package extract

import (
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/lexfold/canondoc/internal/apperr"
	"golang.org/x/net/html"
)

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// PageContent is the readable core of an HTML page.
type PageContent struct {
	Title    string
	Markdown string // main content rendered as markdown, used as fullText
	Text     string // plain-text rendering, used for excerpts
	Byline   string
	Language string
	Excerpt  string
}

// HTMLExtractor pulls the readable article out of raw HTML and renders it as
// markdown.
type HTMLExtractor struct {
	converter *md.Converter
}

func NewHTMLExtractor() *HTMLExtractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &HTMLExtractor{converter: converter}
}

// Extract runs readability over rawHTML and converts the retained content to
// markdown. pageURL anchors relative links.
func (e *HTMLExtractor) Extract(rawHTML []byte, pageURL string) (*PageContent, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, apperr.NewExtraction("invalid page url", err)
	}

	article, err := readability.FromReader(strings.NewReader(string(rawHTML)), parsedURL)
	if err != nil {
		return nil, apperr.NewExtraction("readability extraction failed", err)
	}

	markdown, err := e.converter.ConvertString(article.Content)
	if err != nil {
		return nil, apperr.NewExtraction("markdown conversion failed", err)
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n"))

	text := plainText(article.Content)

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = htmlTitle(rawHTML)
	}

	if markdown == "" && text == "" {
		return nil, apperr.NewExtraction("no readable content in page", nil)
	}

	return &PageContent{
		Title:    title,
		Markdown: markdown,
		Text:     text,
		Byline:   article.Byline,
		Language: article.Language,
		Excerpt:  article.Excerpt,
	}, nil
}

// plainText renders content HTML to normalized text via goquery.
func plainText(contentHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return ""
	}
	return normalizeText(doc.Text())
}

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// htmlTitle pulls the <title> element out of raw HTML as a fallback when
// readability found none.
func htmlTitle(content []byte) string {
	doc, err := html.Parse(strings.NewReader(string(content)))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(doc)

	return title
}
