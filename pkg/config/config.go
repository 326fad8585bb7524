package config

import (
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/zkmembership/zkauth-go/pkg/registry"
)

// Environment variable names for the zkauth demo CLI
const (
	EnvIdentityCount = "ZKAUTH_IDENTITIES"
	EnvProveIndex    = "ZKAUTH_PROVE_INDEX"
	EnvVerbose       = "ZKAUTH_VERBOSE"
	EnvShowTree      = "ZKAUTH_SHOW_TREE"
)

// DemoConfig is the configuration for one demo run: how many identities to
// register and which one to prove membership for.
type DemoConfig struct {
	IdentityCount int  `json:"identity_count"`
	ProveIndex    int  `json:"prove_index"`
	ShowTree      bool `json:"show_tree"`
	Verbose       bool `json:"verbose"`
}

// Validate checks the demo configuration.
func (c *DemoConfig) Validate() error {
	var allErrors field.ErrorList

	if c.IdentityCount < registry.MinIdentityCount || c.IdentityCount > registry.MaxIdentityCount {
		allErrors = append(allErrors, field.Invalid(
			field.NewPath("identityCount"),
			c.IdentityCount,
			"identity count must be between 2 and 32",
		))
	}
	if c.ProveIndex < 0 || c.ProveIndex >= c.IdentityCount {
		allErrors = append(allErrors, field.Invalid(
			field.NewPath("proveIndex"),
			c.ProveIndex,
			"prove index must address one of the registered identities",
		))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
