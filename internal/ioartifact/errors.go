package ioartifact

import (
	"fmt"

	"github.com/gnames/factbook/pkg/country"
	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/gn"
)

// WriteError is a WriteFailure of a build: artifacts could not be
// persisted.
func WriteError(path string, err error) error {
	msg := "Cannot write artifact <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ArtifactWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write %s: %w", path, err),
	}
}

func ReadError(path string, err error) error {
	msg := "Cannot read artifact <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ArtifactReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

func MissingError(code country.Code, dir string) error {
	msg := "Country <em>%s</em> is in the index, but has no record in %s"
	vars := []any{code, dir}
	return &gn.Error{
		Code: errcode.ArtifactMissingError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no detail record for %s in %s", code, dir),
	}
}
