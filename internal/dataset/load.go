package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed master.yaml
var masterYAML []byte

var master = sync.OnceValue(func() *Dataset {
	ds, err := Parse(masterYAML)
	if err != nil {
		panic(fmt.Sprintf("dataset: embedded master dataset is invalid: %v", err))
	}
	return ds
})

// Master returns the embedded master dataset.
//
// The returned value is shared by the whole process and must be treated as
// read-only. Use Clone for a private copy.
func Master() *Dataset {
	return master()
}

// Parse decodes a YAML dataset and validates it.
// Unknown fields are rejected so that typos in fixture files do not silently
// drop columns.
func Parse(data []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse dataset: document is empty")
		}
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	if err := Validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// LoadFile reads and parses a dataset file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}
