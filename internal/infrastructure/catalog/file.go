// Package catalog provides the sources a product catalog can be loaded from:
// local JSON or YAML files, a SQL database, and a remote storefront feed.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileSource loads a catalog snapshot from a JSON or YAML file. The file holds
// either a bare array of products or an object with a "products" array.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and decodes the file. The format is chosen by extension.
func (s *FileSource) Load(ctx context.Context) ([]domain.RawProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

type productsEnvelope struct {
	Products []domain.RawProduct `json:"products"`
}

// DecodeJSON decodes a catalog document.
func DecodeJSON(data []byte) ([]domain.RawProduct, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty catalog document", domain.ErrCatalogUnavailable)
	}

	if data[0] == '[' {
		var products []domain.RawProduct
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("failed to decode catalog: %w", err)
		}
		return products, nil
	}

	var envelope productsEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return envelope.Products, nil
}

// DecodeYAML decodes a YAML catalog document by converting it to JSON first,
// so both formats share the same lenient field decoding.
func DecodeYAML(data []byte) ([]domain.RawProduct, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml catalog: %w", err)
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml catalog: %w", err)
	}
	return DecodeJSON(jsonData)
}
