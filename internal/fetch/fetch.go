// Package fetch turns a competitor's web page into a plain-text description
// suitable for SWOT extraction.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	maxBodyBytes  = 2 << 20
	maxParagraphs = 40
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Page is what we keep from a fetched document.
type Page struct {
	Title       string
	Description string
}

type Fetcher struct {
	client *http.Client
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url and extracts its title and description text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", "swotlab/1.0 (+competitor analysis)")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
}

// Parse extracts a Page from an HTML document. The description is the meta
// description followed by paragraph text, each ending in a sentence break.
func Parse(r io.Reader, contentType string) (Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read page: %w", err)
	}

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return Page{}, fmt.Errorf("failed to decode page: %w", err)
		}
		utf8data = data
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse page: %w", err)
	}
	doc.Find("script,noscript,style").Remove()

	var parts []string
	desc := clean(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if desc == "" {
		desc = clean(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}
	if desc != "" {
		parts = append(parts, terminate(desc))
	}

	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if text := clean(s.Text()); text != "" {
			parts = append(parts, terminate(text))
		}
		return len(parts) < maxParagraphs
	})

	return Page{
		Title:       clean(doc.Find("title").First().Text()),
		Description: strings.Join(parts, " "),
	}, nil
}

func clean(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func terminate(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?', ';':
		return s
	}
	return s + "."
}
