package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a scene from JSON.
func Decode(r io.Reader) (*Scene, error) {
	var s Scene
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	if s.Version == "" {
		s.Version = SchemaVersion
	}
	return &s, nil
}

func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes the scene as indented JSON.
func Encode(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func Save(path string, s *Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, s)
}
