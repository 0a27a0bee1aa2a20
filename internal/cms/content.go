// Package cms serves the storefront's static pages (about, shipping policy)
// from local markdown files with YAML front matter.
package cms

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Page is a rendered static page. Body holds sanitized HTML.
type Page struct {
	Slug      string
	Title     string
	Summary   string
	Body      string
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

var (
	markdown = goldmark.New()
	policy   = bluemonday.UGCPolicy()
)

// Store loads pages from a content directory and caches rendered results.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]cacheEntry),
		ttl:   5 * time.Minute,
	}
}

// SetCacheDuration overrides the render cache TTL (primarily for tests).
func (s *Store) SetCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	s.mu.Lock()
	s.ttl = d
	s.mu.Unlock()
}

// Page loads and renders the page for slug.
func (s *Store) Page(slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, fmt.Errorf("cms: empty slug")
	}

	s.mu.RLock()
	entry, ok := s.cache[slug]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.page, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, slug+".md"))
	if err != nil {
		return Page{}, fmt.Errorf("cms: read %s: %w", slug, err)
	}

	head, body := splitFrontMatter(string(raw))
	var fm frontMatter
	if head != "" {
		if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
			return Page{}, fmt.Errorf("cms: front matter %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", slug, err)
	}

	page := Page{
		Slug:      slug,
		Title:     firstNonEmpty(fm.Title, prettifySlug(slug)),
		Summary:   fm.Summary,
		Body:      policy.Sanitize(buf.String()),
		UpdatedAt: parseContentDate(fm.UpdatedAt),
	}

	s.mu.Lock()
	s.cache[slug] = cacheEntry{page: page, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func sanitizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	var b strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func prettifySlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
