package iometrics

import (
	"fmt"

	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/gn"
)

func WriteError(path string, err error) error {
	msg := "Cannot write build metrics to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.MetricsWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write metrics %s: %w", path, err),
	}
}
