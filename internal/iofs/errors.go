package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/gn"
)

func CreateDirError(dir string, err error) error {
	msg := "Cannot create %s"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create directory: %w",
			fn.Name(), err),
	}
}

func CopyFileError(file string, err error) error {
	msg := "Cannot copy default file to %s"
	vars := []any{file}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot copy file: %w",
			fn.Name(), err),
	}
}

func ReadFileError(path string, err error) error {
	msg := "Cannot read <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Err: fmt.Errorf("from %s: cannot read %s: %w",
			fn.Name(), path, err),
		Msg:  msg,
		Vars: vars,
	}
}

func ParseFileError(path string, err error) error {
	msg := "Cannot parse <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ParseFileError,
		Err:  fmt.Errorf("cannot parse %s: %w", path, err),
		Msg:  msg,
		Vars: vars,
	}
}
