package metadata

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	dverrors "github.com/crmkit/dataverse/pkg/errors"
)

// WriteSnapshot serializes the snapshot as YAML. The EntityDefinitions fetch
// is expensive; persisting a snapshot lets short-lived processes skip it.
func (m *OrgMetadata) WriteSnapshot(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return dverrors.NewError("snapshot", "", fmt.Errorf("encode: %w", err))
	}
	return enc.Close()
}

// ReadSnapshot loads a snapshot previously written with WriteSnapshot.
func ReadSnapshot(r io.Reader) (*OrgMetadata, error) {
	var org OrgMetadata
	if err := yaml.NewDecoder(r).Decode(&org); err != nil {
		return nil, dverrors.NewError("snapshot", "", fmt.Errorf("decode: %w", err))
	}
	if len(org.Entities) == 0 {
		return nil, dverrors.NewError("snapshot", "", dverrors.ErrEntityMetadataNotFound)
	}
	return &org, nil
}

// SaveSnapshotFile writes the snapshot to a file path.
func (m *OrgMetadata) SaveSnapshotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return dverrors.NewError("snapshot", "", err)
	}
	defer f.Close()
	return m.WriteSnapshot(f)
}

// LoadSnapshotFile reads a snapshot from a file path.
func LoadSnapshotFile(path string) (*OrgMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dverrors.NewError("snapshot", "", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}
