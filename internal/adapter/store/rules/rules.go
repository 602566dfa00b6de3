// Package rules loads yoga rule tables from YAML.
package rules

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"go.ngs.io/panchanga-api/internal/domain"
)

// defaultRules is the rule table baked into the binary.
//
//go:embed default_rules.yaml
var defaultRules []byte

// Store loads compiled rule tables.
type Store struct {
	path string
}

// NewStore creates a store reading from path. An empty path selects the
// embedded default table.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the configured file, or "" for the embedded table.
func (s *Store) Path() string { return s.path }

// Load reads, validates and compiles the configured table.
func (s *Store) Load() (*domain.RuleTable, error) {
	if s.path == "" {
		return Default()
	}
	return Load(s.path)
}

// Default compiles the embedded rule table.
func Default() (*domain.RuleTable, error) {
	table, err := Parse(defaultRules)
	if err != nil {
		return nil, fmt.Errorf("embedded rule table: %w", err)
	}
	return table, nil
}

// Load reads a rule table from a YAML file.
func Load(path string) (*domain.RuleTable, error) {
	//nolint:gosec // G304: path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table: %w", err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes and compiles a YAML rule document. Unknown keys are rejected.
func Parse(data []byte) (*domain.RuleTable, error) {
	var doc domain.RuleDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule table: %w", err)
	}
	return domain.CompileRules(doc)
}

// DefaultDocument returns the embedded table as data, for export.
func DefaultDocument() (domain.RuleDocument, error) {
	var doc domain.RuleDocument
	if err := yaml.Unmarshal(defaultRules, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse embedded rule table: %w", err)
	}
	return doc, nil
}
