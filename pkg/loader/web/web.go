package web

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// WebLoader fetches web pages and extracts the readable main content.
// Repeated fetches of the same URL are collapsed and cached.
type WebLoader struct {
	client *http.Client

	cache   map[string]*loader.Document
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewWebLoader creates a web loader using the given HTTP client, or
// http.DefaultClient when nil.
func NewWebLoader(client *http.Client) *WebLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebLoader{
		client: client,
		cache:  make(map[string]*loader.Document),
	}
}

// Fetch downloads a URL and extracts its readable text content and
// page title into a single-page document.
func (l *WebLoader) Fetch(ctx context.Context, rawURL string) (*loader.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid url: %s", rawURL)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	key := u.String()

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		doc, err := l.fetch(ctx, u)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = doc
		l.cacheMu.Unlock()

		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*loader.Document), nil
}

func (l *WebLoader) fetch(ctx context.Context, u *url.URL) (*loader.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return nil, fmt.Errorf("failed to render article text: %w", err)
	}

	title := pageTitle(body)
	if title == "" {
		title = u.Host
	}

	return &loader.Document{
		Title:  title,
		Source: u.String(),
		Type:   common.SourceWeb,
		Pages:  []string{builder.String()},
	}, nil
}

func pageTitle(body []byte) string {
	m := titleRe.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(string(m[1])))
}
