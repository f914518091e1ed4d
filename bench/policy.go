package bench

import (
	"github.com/wippyai/chaincall/errors"
)

// GenesisBuilderPolicy selects how the bencher builds its genesis state.
type GenesisBuilderPolicy uint8

const (
	// PolicyNone skips genesis building entirely.
	PolicyNone GenesisBuilderPolicy = iota
	// PolicySpec builds genesis from a chain spec file.
	PolicySpec
	// PolicyRuntime builds genesis through the runtime's genesis builder API.
	PolicyRuntime
)

// DevPreset is the conventional development genesis preset id.
const DevPreset = "development"

// The value and string tables are kept explicit in both directions; policy
// names are part of the bencher's CLI contract.
var policyNames = map[GenesisBuilderPolicy]string{
	PolicyNone:    "none",
	PolicySpec:    "spec",
	PolicyRuntime: "runtime",
}

var policyValues = map[string]GenesisBuilderPolicy{
	"none":    PolicyNone,
	"spec":    PolicySpec,
	"runtime": PolicyRuntime,
}

func (p GenesisBuilderPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "none"
}

// ParsePolicy converts a policy name to its value, rejecting unknown names.
func ParsePolicy(name string) (GenesisBuilderPolicy, error) {
	p, ok := policyValues[name]
	if !ok {
		return PolicyNone, errors.InvalidInput(errors.PhaseBench,
			"genesis builder policy must be one of none, spec, runtime")
	}
	return p, nil
}

// Policies returns the known policy names in declaration order, for prompts.
func Policies() []string {
	return []string{"none", "spec", "runtime"}
}
