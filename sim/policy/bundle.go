package policy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle holds offloading-policy configuration, loadable from a YAML
// file, generalizing the teacher's PolicyBundle (sim/bundle.go) from the
// routing/admission/scheduler/priority family to this simulator's single
// OffloadingPolicy axis plus the controller's refresh interval.
type Bundle struct {
	Policy       string `yaml:"policy"`
	RefreshTicks int    `yaml:"refresh_ticks"`
	Seed         int64  `yaml:"seed"`
}

// DefaultBundle returns the reference-run configuration: Hybrid policy,
// refreshed every 10 ticks (spec.md §4.6), seeded per spec.md §4.7.
func DefaultBundle() Bundle {
	return Bundle{Policy: string(NameHybrid), RefreshTicks: 10, Seed: 42}
}

// LoadBundle reads and strictly parses a YAML policy bundle file.
// Unrecognized keys (typos) are rejected, matching the teacher's
// LoadPolicyBundle.
func LoadBundle(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("policy: reading bundle: %w", err)
	}
	b := DefaultBundle()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("policy: parsing bundle: %w", err)
	}
	return b, nil
}

// Validate checks the bundle's policy name and parameter ranges.
func (b Bundle) Validate() error {
	if !IsValidName(b.Policy) {
		return fmt.Errorf("policy: unknown offloading policy %q; valid options: static, dynamic, hybrid", b.Policy)
	}
	if b.RefreshTicks <= 0 {
		return fmt.Errorf("policy: refresh_ticks must be positive, got %d", b.RefreshTicks)
	}
	return nil
}
