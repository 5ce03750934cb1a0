package dataset

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// MetadataSuffix is appended to a predictions path to name its sidecar.
const MetadataSuffix = ".meta.yaml"

// Metadata describes how a predictions file was produced. It travels next
// to the file so downstream tools never infer settings from file names.
type Metadata struct {
	RunID                string    `yaml:"run_id"`
	CreatedAt            time.Time `yaml:"created_at"`
	DomainCategory       Category  `yaml:"domain_category"`
	IntegrationMethod    string    `yaml:"integration_method"`
	AssociationMethod    string    `yaml:"association_method,omitempty"`
	IdentifierMode       string    `yaml:"identifier_mode"`
	PValueThreshold      float64   `yaml:"pvalue_threshold"`
	AssociationThreshold float64   `yaml:"association_threshold"`
	AssociationsChecksum string    `yaml:"associations_checksum,omitempty"`
}

// SidecarPath returns the metadata path for a predictions path.
func SidecarPath(predictionsPath string) string {
	return predictionsPath + MetadataSuffix
}

// Validate checks the fields downstream consumers rely on.
func (m *Metadata) Validate() error {
	if _, err := ParseCategory(string(m.DomainCategory)); err != nil {
		return err
	}
	if m.IntegrationMethod == "" {
		return fmt.Errorf("metadata: integration_method is required")
	}
	return nil
}

// WriteMetadata encodes m as YAML.
func WriteMetadata(w io.Writer, m *Metadata) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return enc.Close()
}

// ReadMetadata decodes and validates a sidecar.
func ReadMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
