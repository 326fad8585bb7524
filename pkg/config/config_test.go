package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDemoConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     DemoConfig
		wantErr bool
	}{
		{"Valid", DemoConfig{IdentityCount: 8, ProveIndex: 3}, false},
		{"Minimum identities", DemoConfig{IdentityCount: 2, ProveIndex: 0}, false},
		{"Maximum identities", DemoConfig{IdentityCount: 32, ProveIndex: 31}, false},
		{"Too few identities", DemoConfig{IdentityCount: 1, ProveIndex: 0}, true},
		{"Too many identities", DemoConfig{IdentityCount: 33, ProveIndex: 0}, true},
		{"Negative prove index", DemoConfig{IdentityCount: 8, ProveIndex: -1}, true},
		{"Prove index past the set", DemoConfig{IdentityCount: 8, ProveIndex: 8}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
