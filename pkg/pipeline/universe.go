package pipeline

import (
	"slices"

	"github.com/gnames/factbook/pkg/country"
)

// Universe contains overrides of the set of countries in a build.
// It is read from universe.yaml in the config directory.
type Universe struct {
	// Include lists codes that are kept even if they are not UN members,
	// for example observer states.
	Include []country.Code `yaml:"include"`

	// Exclude lists codes that are always dropped. Exclude wins over
	// Include.
	Exclude []country.Code `yaml:"exclude"`
}

// Allows decides if a registry record belongs to the universe.
func (u Universe) Allows(code country.Code, unMember, unOnly bool) bool {
	if slices.Contains(u.Exclude, code) {
		return false
	}
	if !unOnly || unMember {
		return true
	}
	return slices.Contains(u.Include, code)
}
