package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/lmt-facturation/internal/common"
	"gopkg.in/yaml.v3"
)

type document struct {
	Circuits []Circuit `yaml:"circuits"`
}

// Parse decodes a YAML catalog document.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, common.NewAppError(common.CodeCatalogInvalid, "decode catalog", err)
	}
	return New(doc.Circuits)
}

// Load reads a YAML catalog from path. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Parse(f)
}
