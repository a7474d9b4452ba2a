package alias

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"onboard/internal/identity/normalize"
)

// SeedFile is the on-disk alias fixture.
//
//	aliases:
//	  - name: Ann
//	    synonyms: [Anne, Annie]
type SeedFile struct {
	Aliases []SeedEntry `yaml:"aliases"`
}

type SeedEntry struct {
	Name     string   `yaml:"name"`
	Synonyms []string `yaml:"synonyms"`
}

// LoadSeedFile reads and parses an alias fixture.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed parses fixture YAML. Unknown fields are rejected.
func ParseSeed(raw []byte) ([]SeedEntry, error) {
	var file SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}
	for i, e := range file.Aliases {
		if !normalize.Supplied(e.Name) {
			return nil, fmt.Errorf("alias entry %d: name is required", i)
		}
	}
	return file.Aliases, nil
}

// Expand normalises entries and writes every pair in both directions, so the
// stored table can be read from either side. Self-references are dropped and
// each list is sorted.
func Expand(entries []SeedEntry) map[string][]string {
	out := map[string][]string{}
	add := func(name, synonym string) {
		if name == "" || synonym == "" || name == synonym || slices.Contains(out[name], synonym) {
			return
		}
		out[name] = append(out[name], synonym)
	}
	for _, e := range entries {
		name := normalize.Text(e.Name)
		for _, s := range e.Synonyms {
			synonym := normalize.Text(s)
			add(name, synonym)
			add(synonym, name)
		}
	}
	for name := range out {
		slices.Sort(out[name])
	}
	return out
}
