package domain

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"sigs.k8s.io/yaml"
)

// EnvPrefix prefixes every environment override, e.g. EVENTCODE_START_YEAR.
const EnvPrefix = "EVENTCODE_"

// Parse decodes a YAML (or JSON) document on top of Default.
// Unknown keys are rejected.
func Parse(data []byte) (Domain, error) {
	d := Default()
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return Domain{}, fmt.Errorf("parse domain: %w", err)
	}

	return d, nil
}

// LoadFile reads a domain from a YAML file.
func LoadFile(path string) (Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Domain{}, fmt.Errorf("read domain %s: %w", path, err)
	}

	return Parse(data)
}

// ApplyEnv overrides fields of d from EVENTCODE_* environment variables.
// Variables that are not set leave the field unchanged.
func ApplyEnv(d Domain) (Domain, error) {
	if err := env.ParseWithOptions(&d, env.Options{Prefix: EnvPrefix}); err != nil {
		return Domain{}, fmt.Errorf("parse env: %w", err)
	}

	return d, nil
}

// Load reads the domain from path (Default when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (Domain, error) {
	d := Default()
	if path != "" {
		var err error
		if d, err = LoadFile(path); err != nil {
			return Domain{}, err
		}
	}

	d, err := ApplyEnv(d)
	if err != nil {
		return Domain{}, err
	}

	if err := d.Validate(); err != nil {
		return Domain{}, err
	}

	return d, nil
}

// Marshal encodes the domain as YAML.
func (d Domain) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
