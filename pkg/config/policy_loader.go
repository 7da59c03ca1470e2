package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentkit/plankernel/pkg/guard"
)

// LoadGuardPolicy reads a single guard policy YAML document for the given
// kind (fs/shell/net) from dir, expecting a file named "<kind>.yaml".
func LoadGuardPolicy(dir, kind string) (*guard.Policy, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s.yaml", kind))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load guard policy %q: %w", kind, err)
	}
	return guard.LoadPolicyYAML(data)
}

// LoadAllGuardPolicies loads every *.yaml file in dir as a guard policy,
// keyed by its Kind field (falling back to the filename stem).
func LoadAllGuardPolicies(dir string) (map[string]*guard.Policy, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("config: glob guard policies: %w", err)
	}

	policies := make(map[string]*guard.Policy, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		policy, err := guard.LoadPolicyYAML(data)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		kind := policy.Kind
		if kind == "" {
			kind = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		policies[kind] = policy
	}
	return policies, nil
}
