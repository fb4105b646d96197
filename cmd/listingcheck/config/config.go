package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// GovernanceCall is an already-built governance execution transaction the
// harness sends from an impersonated executor.
type GovernanceCall struct {
	Executor string `yaml:"executor"`
	Target   string `yaml:"target"`
	Calldata string `yaml:"calldata"`
}

// Config is the CLI's YAML configuration.
type Config struct {
	RPCURL            string          `yaml:"rpcUrl"`
	LendingPool       string          `yaml:"lendingPool"`
	DataProvider      string          `yaml:"dataProvider"`
	AddressesProvider string          `yaml:"addressesProvider"`
	ScenarioFile      string          `yaml:"scenarioFile"`
	Governance        *GovernanceCall `yaml:"governance,omitempty"`
}

// LoadConfig reads, parses, and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RPCURL == "" {
		return errors.New("config: rpcUrl is required")
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"lendingPool", c.LendingPool},
		{"dataProvider", c.DataProvider},
		{"addressesProvider", c.AddressesProvider},
	} {
		if !common.IsHexAddress(field.value) {
			return fmt.Errorf("config: %s must be a hex address, got %q", field.name, field.value)
		}
	}
	if c.ScenarioFile == "" {
		return errors.New("config: scenarioFile is required")
	}
	if c.Governance != nil {
		if !common.IsHexAddress(c.Governance.Executor) {
			return fmt.Errorf("config: governance.executor must be a hex address, got %q", c.Governance.Executor)
		}
		if !common.IsHexAddress(c.Governance.Target) {
			return fmt.Errorf("config: governance.target must be a hex address, got %q", c.Governance.Target)
		}
	}
	return nil
}
