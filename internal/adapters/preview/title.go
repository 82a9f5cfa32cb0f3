// Package preview fetches page titles for chat link previews.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	// DefaultTimeout is the hard limit for a whole preview fetch.
	DefaultTimeout = 6 * time.Second
	maxBodyBytes   = 512 << 10
	maxTitleRunes  = 200
)

// ErrNoTitle is returned when the page has no non-empty <title>.
var ErrNoTitle = errors.New("page has no title")

// Fetcher implements domain.PagePreviewer.
type Fetcher struct {
	client       *http.Client
	allowedHosts map[string]struct{}
}

// NewFetcher returns a Fetcher that only fetches allowedHosts. With no hosts every URL is refused.
func NewFetcher(client *http.Client, allowedHosts ...string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &Fetcher{client: client, allowedHosts: hosts}
}

// Title returns the trimmed text of the first <title> element of the page at rawURL.
func (f *Fetcher) Title(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("preview: unsupported url %q", rawURL)
	}
	if _, ok := f.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
		return "", fmt.Errorf("preview: host %q not allowed", u.Hostname())
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("preview: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("preview: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("preview: unexpected status %d", resp.StatusCode)
	}
	return extractTitle(io.LimitReader(resp.Body, maxBodyBytes))
}

func extractTitle(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			if inTitle && b.Len() > 0 {
				return clip(b.String())
			}
			return "", ErrNoTitle
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if inTitle && string(name) == "title" {
				return clip(b.String())
			}
		}
	}
}

func clip(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", ErrNoTitle
	}
	if r := []rune(s); len(r) > maxTitleRunes {
		s = string(r[:maxTitleRunes])
	}
	return s, nil
}
