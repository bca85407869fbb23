package iobuild

import (
	"fmt"

	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gn"
)

// UniverseError is a fatal failure of a build: the registry returned no
// countries, so there is nothing to build.
func UniverseError(err error) error {
	msg := `Cannot determine the set of countries

<em>Registry failure:</em> %s

<em>Possible causes:</em>
  - the registry service is down or unreachable
  - endpoints.registry in config.yaml is wrong
  - universe.yaml excludes every country`

	vars := []any{pipeline.Classify(err)}
	return &gn.Error{
		Code: errcode.BuildUniverseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("universe failure: %w", err),
	}
}

// CancelledError is returned when a build is interrupted.
func CancelledError(err error) error {
	msg := "Build was cancelled"
	return &gn.Error{
		Code: errcode.BuildCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("build cancelled: %w", err),
	}
}

// MergeError is a fatal failure to combine source data into country
// records.
func MergeError(err error) error {
	msg := "Cannot merge source data into country records"
	return &gn.Error{
		Code: errcode.BuildMergeError,
		Msg:  msg,
		Err:  fmt.Errorf("merge failure: %w", err),
	}
}

// StateError is returned for a transition the state machine does not
// allow.
func StateError(from, to pipeline.State, err error) error {
	msg := "Build cannot move from <em>%s</em> to <em>%s</em>"
	vars := []any{from, to}
	if err == nil {
		err = fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	return &gn.Error{
		Code: errcode.BuildStateError,
		Msg:  msg,
		Vars: vars,
		Err:  err,
	}
}
