package intake

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SeedSource provides the records a roster starts with.
type SeedSource interface {
	Load(ctx context.Context) ([]Patient, error)
}

//go:embed seeddata/patients.yaml
var embeddedPatients []byte

// EmbeddedSeed is the demo data set compiled into the binary.
type EmbeddedSeed struct{}

func (EmbeddedSeed) Load(_ context.Context) ([]Patient, error) {
	return ParseSeed(embeddedPatients)
}

// FileSeed reads a YAML or JSON list of patients from Path.
type FileSeed struct {
	Path string
}

func (s FileSeed) Load(_ context.Context) ([]Patient, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	patients, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", s.Path, err)
	}
	return patients, nil
}

// NoSeed starts the roster empty.
type NoSeed struct{}

func (NoSeed) Load(_ context.Context) ([]Patient, error) {
	return nil, nil
}

// ParseSeed decodes a YAML (or JSON) sequence of patients and normalizes it
// with NormalizeSeed.
func ParseSeed(data []byte) ([]Patient, error) {
	var patients []Patient
	if err := yaml.Unmarshal(data, &patients); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return NormalizeSeed(patients)
}

// NormalizeSeed assigns ids to records that lack one and rejects duplicate
// ids, so the store starts with unique identifiers.
func NormalizeSeed(patients []Patient) ([]Patient, error) {
	seen := make(map[string]int, len(patients))
	for i := range patients {
		if patients[i].ID == "" {
			patients[i].ID = uuid.NewString()
		}
		if prev, ok := seen[patients[i].ID]; ok {
			return nil, fmt.Errorf("duplicate patient id %q at records %d and %d", patients[i].ID, prev, i)
		}
		seen[patients[i].ID] = i
	}
	return patients, nil
}

// DecodePatient decodes a single YAML or JSON patient record.
func DecodePatient(data []byte) (Patient, error) {
	var p Patient
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patient{}, fmt.Errorf("decode patient: %w", err)
	}
	return p, nil
}

// LoadStore builds a MemoryStore from src.
func LoadStore(ctx context.Context, src SeedSource) (*MemoryStore, error) {
	patients, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	return NewMemoryStore(patients...), nil
}
