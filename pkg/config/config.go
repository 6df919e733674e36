package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/rules"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// LoadCatalog loads a rule catalog from a YAML or JSON file.
func LoadCatalog(filename string) (*types.RuleCatalog, error) {
	slog.Debug("Loading rule catalog from file", "filename", filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file %s", filename)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load catalog file %s", filename)
	}
	slog.Debug("Loaded rule catalog", "id", catalog.ID, "version", catalog.Version, "rules_count", catalog.Len())
	return catalog, nil
}

// ParseCatalog decodes a catalog, trying YAML first and then JSON, and
// validates it.
func ParseCatalog(data []byte) (*types.RuleCatalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("catalog is empty")
	}

	var catalog types.RuleCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		slog.Debug("YAML unmarshal failed", "error", err)
		catalog = types.RuleCatalog{}
		if jsonErr := json.Unmarshal(data, &catalog); jsonErr != nil {
			slog.Debug("JSON unmarshal failed", "error", jsonErr)
			return nil, errors.Wrap(err, "catalog is neither YAML nor JSON")
		}
	}

	if catalog.Rules == nil {
		catalog.Rules = make(map[types.Category][]*types.Rule)
	}
	if catalog.Version == 0 {
		catalog.Version = 1
	}
	if err := catalog.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}
	return &catalog, nil
}

// SaveCatalog writes the catalog to filename. Files ending in .json are
// written as JSON, everything else as YAML.
func SaveCatalog(filename string, catalog *types.RuleCatalog) error {
	if catalog == nil {
		return errors.New("no catalog to save")
	}
	if err := catalog.Validate(); err != nil {
		return errors.WithStack(err)
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		data, err = json.MarshalIndent(catalog, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(catalog)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to encode catalog %s", catalog.ID)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write catalog file %s", filename)
	}
	slog.Debug("Saved rule catalog", "filename", filename, "id", catalog.ID, "version", catalog.Version)
	return nil
}

// CatalogFor returns the catalog in filename, or the built-in catalog for
// platform when filename is empty. A file catalog without a platform takes
// the requested one; a catalog for another platform is an error.
func CatalogFor(filename string, platform types.Platform) (*types.RuleCatalog, error) {
	if filename == "" {
		return rules.DefaultCatalog(platform), nil
	}
	catalog, err := LoadCatalog(filename)
	if err != nil {
		return nil, err
	}
	switch catalog.Platform {
	case types.PlatformUnspecified:
		catalog.Platform = platform
	case platform:
	default:
		return nil, errors.Errorf("catalog %s is for %s, not %s",
			catalog.ID, catalog.Platform.DisplayName(), platform.DisplayName())
	}
	return catalog, nil
}
