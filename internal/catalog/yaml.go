package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"fare-estimator/internal/apperror"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

// document is the on-disk layout of a catalog file.
type document struct {
	Version    string         `yaml:"version"`
	Categories []CategorySpec `yaml:"categories"`
}

// Parse decodes a YAML catalog. Unknown keys are rejected so a typo in a
// field name fails the load instead of silently dropping a rate.
func Parse(data []byte, labels Labels) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperror.Configuration("catalog is empty", err)
		}
		return nil, apperror.Configuration(fmt.Sprintf("failed to decode catalog: %v", err), err)
	}
	if len(doc.Categories) == 0 {
		return nil, apperror.Configuration("catalog has no categories", nil)
	}
	return Build(doc.Version, doc.Categories, labels)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string, labels Labels) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Configuration(fmt.Sprintf("failed to read catalog %s", path), err)
	}
	return Parse(data, labels)
}

// Embedded parses the rate table compiled into the binary.
func Embedded(labels Labels) (*Catalog, error) {
	return Parse(embeddedCatalog, labels)
}
