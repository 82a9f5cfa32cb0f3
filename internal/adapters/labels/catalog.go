// Package labels loads the localized label catalog used in chat messages and command parsing.
package labels

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"projectgateway/internal/domain"
)

//go:embed labels.yaml
var defaultCatalog []byte

type file struct {
	DefaultLocale string                                  `yaml:"default_locale"`
	Locales       map[string]map[string]map[string]string `yaml:"locales"`
	Aliases       struct {
		Keys     map[string]string `yaml:"keys"`
		Priority map[string]string `yaml:"priority"`
	} `yaml:"aliases"`
}

// Catalog implements domain.LabelCatalog.
type Catalog struct {
	f file
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML catalog. The default locale must exist.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	if f.DefaultLocale == "" {
		f.DefaultLocale = "en"
	}
	if _, ok := f.Locales[f.DefaultLocale]; !ok {
		return nil, fmt.Errorf("parse labels: default locale %q has no labels", f.DefaultLocale)
	}
	for _, p := range f.Aliases.Priority {
		switch domain.TaskPriority(p) {
		case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh, domain.TaskPriorityUrgent:
		default:
			return nil, fmt.Errorf("parse labels: unknown priority alias target %q", p)
		}
	}
	return &Catalog{f: f}, nil
}

// Label returns the label for value in group, falling back to the default locale and then to value itself.
func (c *Catalog) Label(locale, group, value string) string {
	for _, loc := range []string{strings.ToLower(locale), c.f.DefaultLocale} {
		if s, ok := c.f.Locales[loc][group][value]; ok {
			return s
		}
	}
	return value
}

// CanonicalKey maps an option key to its canonical name, case-insensitively.
func (c *Catalog) CanonicalKey(key string) (string, bool) {
	k, ok := c.f.Aliases.Keys[strings.ToLower(strings.TrimSpace(key))]
	return k, ok
}

// CanonicalPriority maps a priority word in any known locale to its code.
func (c *Catalog) CanonicalPriority(value string) (domain.TaskPriority, bool) {
	p, ok := c.f.Aliases.Priority[strings.ToLower(strings.TrimSpace(value))]
	return domain.TaskPriority(p), ok
}

// Locales lists the configured locales.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.f.Locales))
	for l := range c.f.Locales {
		out = append(out, l)
	}
	return out
}
