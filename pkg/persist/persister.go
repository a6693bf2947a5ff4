package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// stateFileMode is applied to saved files; temporary files start owner-only.
const stateFileMode = 0o644

// SaveFile encodes state into the file at path, replacing it atomically.
func SaveFile(path string, codec Codec, state any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	defer os.Remove(tmp.Name())

	err = codec.Encode(tmp, state)
	if err != nil {
		tmp.Close()

		return fmt.Errorf("encode state: %w", err)
	}

	err = tmp.Chmod(stateFileMode)
	if err != nil {
		tmp.Close()

		return fmt.Errorf("chmod state file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close state file: %w", err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// LoadFile decodes the file at path into state, which must be a pointer.
func LoadFile(path string, codec Codec, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	codec Codec
}

// NewPersister creates a persister with the given codec.
func NewPersister[T any](codec Codec) *Persister[T] {
	return &Persister[T]{codec: codec}
}

// Codec returns the codec the persister writes with.
func (p *Persister[T]) Codec() Codec {
	return p.codec
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state *T) error {
	return SaveFile(path, p.codec, state)
}

// Load reads a state from path.
func (p *Persister[T]) Load(path string) (*T, error) {
	var state T

	err := LoadFile(path, p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
