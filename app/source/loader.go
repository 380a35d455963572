package source

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yml
var defaultRegistry []byte

// Load reads the registry from path, or the built-in registry when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		reg, err := Parse(defaultRegistry)
		if err != nil {
			return nil, fmt.Errorf("invalid built-in registry: %w", err)
		}
		slog.Debug("Source registry loaded", "path", "built-in", "sources", len(reg.Sources))
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", path, err)
	}

	slog.Debug("Source registry loaded", "path", path, "sources", len(reg.Sources))
	return reg, nil
}

// Parse decodes, defaults and validates a YAML registry document.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&reg)

	if err := validate(&reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

func setDefaults(reg *Registry) {
	if len(reg.PortalDomains) == 0 {
		reg.PortalDomains = []string{"korea.kr"}
	}

	for i := range reg.Sources {
		d := &reg.Sources[i]
		if d.Kind == "" {
			d.Kind = KindRSS
		}
		if d.FallbackURL != "" && d.FallbackKind == "" {
			d.FallbackKind = d.Kind
		}
	}
}

func validate(reg *Registry) error {
	if len(reg.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for i, d := range reg.Sources {
		requiredFields := map[string]string{
			"organization": d.Organization,
			"category":     d.Category,
			"url":          d.URL,
		}
		for fieldName, fieldValue := range requiredFields {
			if fieldValue == "" {
				return fmt.Errorf("source at index %d: %s is required", i, fieldName)
			}
		}

		if !knownKinds[d.Kind] {
			return fmt.Errorf("source at index %d: unknown kind %q", i, d.Kind)
		}
		if d.FallbackURL != "" && !knownKinds[d.FallbackKind] {
			return fmt.Errorf("source at index %d: unknown fallback kind %q", i, d.FallbackKind)
		}

		for _, raw := range []string{d.URL, d.FallbackURL} {
			if raw == "" {
				continue
			}
			u, err := url.Parse(raw)
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Errorf("source at index %d: invalid url %q", i, raw)
			}
		}

		if d.Timeout < 0 {
			return fmt.Errorf("source at index %d: timeout must be non-negative", i)
		}
	}

	return nil
}
