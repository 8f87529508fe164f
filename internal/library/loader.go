// Package library loads market summaries from YAML or TOML files and groups
// them into head-to-head events.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"battle-analytics/internal/domain"
	"battle-analytics/internal/storage"
	"battle-analytics/internal/storage/memory"
)

// File is the on-disk shape of a market library.
type File struct {
	Markets []domain.MarketSummary `yaml:"markets" toml:"markets"`
}

// LoadFile reads a library file. The format follows the extension: .yaml,
// .yml or .toml.
func LoadFile(path string) ([]domain.MarketSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse library yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parse library toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported library format %q", storage.ErrInvalidInput, ext)
	}

	if err := Validate(f.Markets); err != nil {
		return nil, fmt.Errorf("library %s: %w", path, err)
	}
	return f.Markets, nil
}

// Open loads a library file into an in-memory MarketLibrary.
func Open(path string) (*memory.MarketLibrary, error) {
	summaries, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return memory.NewMarketLibrary(summaries...), nil
}

// Validate checks every summary and canonicalizes ids in place. Ids must be
// unique UUIDs and both sides must be named.
func Validate(summaries []domain.MarketSummary) error {
	seen := make(map[string]int, len(summaries))
	for i := range summaries {
		s := &summaries[i]

		id, err := uuid.Parse(s.ID)
		if err != nil {
			return fmt.Errorf("%w: market %d: id %q is not a uuid", storage.ErrInvalidInput, i, s.ID)
		}
		s.ID = id.String()

		if prev, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: market %d: duplicate id %s (first at %d)", storage.ErrInvalidInput, i, s.ID, prev)
		}
		seen[s.ID] = i

		if domain.NormalizeName(s.ArtistA.Name) == "" || domain.NormalizeName(s.ArtistB.Name) == "" {
			return fmt.Errorf("%w: market %s: both artists need a name", storage.ErrInvalidInput, s.ID)
		}
		if s.Duration < 0 {
			return fmt.Errorf("%w: market %s: negative duration", storage.ErrInvalidInput, s.ID)
		}
	}
	return nil
}
