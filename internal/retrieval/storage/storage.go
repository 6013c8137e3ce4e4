// Package storage reads per-tenant business documents from disk. Writes and
// versioned snapshots are owned by the admin service; this side only loads,
// validates and hands parsed documents to the in-memory stores.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	apperrors "storeassist/internal/common/errors"
)

// Known tenant files and whether a schema guards them.
const (
	FileCatalog  = "catalog.json"
	FileDelivery = "delivery.json"
	FileBranches = "branches.json"
	FileFAQ      = "faq.json"
	FileSynonyms = "synonyms.json"
)

// Storage resolves and reads one tenant's document directory.
type Storage struct {
	Root   string
	Tenant string
}

func New(root, tenant string) *Storage {
	return &Storage{Root: root, Tenant: tenant}
}

// TenantDir returns the tenant's document directory.
func (s *Storage) TenantDir() string {
	return filepath.Join(s.Root, s.Tenant)
}

// FilePath returns the absolute path of a tenant document.
func (s *Storage) FilePath(filename string) string {
	return filepath.Join(s.TenantDir(), filename)
}

// ReadJSON reads and unmarshals a tenant document into v. A missing file is
// reported as os.ErrNotExist so stores can fall back to an empty document.
// Documents with a registered schema are validated before unmarshaling.
func (s *Storage) ReadJSON(filename string, v interface{}) error {
	raw, err := os.ReadFile(s.FilePath(filename))
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return apperrors.NewStoreLoadFailedError(filename, err)
	}

	if schema, ok := schemas[filename]; ok {
		if err := validate(filename, schema, raw); err != nil {
			return err
		}
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.NewStoreLoadFailedError(filename, err)
	}
	return nil
}

func validate(filename, schema string, raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return apperrors.NewStoreLoadFailedError(filename, err)
	}
	if !result.Valid() {
		details := ""
		for i, desc := range result.Errors() {
			if i > 0 {
				details += "; "
			}
			details += desc.String()
		}
		return apperrors.NewSchemaInvalidError(filename, details)
	}
	return nil
}

// Exists reports whether a tenant document is present.
func (s *Storage) Exists(filename string) bool {
	_, err := os.Stat(s.FilePath(filename))
	return err == nil
}

// ListTenants returns all tenant directories under the root.
func ListTenants(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read data root: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && e.Name() != "versions" {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
