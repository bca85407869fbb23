package iobuild

import (
	"errors"
	"testing"

	"github.com/gnames/factbook/pkg/errcode"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	origErr := errors.New("root cause")

	tests := []struct {
		name string
		err  error
		code gn.ErrorCode
		text string
	}{
		{"UniverseError", UniverseError(origErr),
			errcode.BuildUniverseError, "universe failure"},
		{"CancelledError", CancelledError(origErr),
			errcode.BuildCancelledError, "build cancelled"},
		{"MergeError", MergeError(origErr),
			errcode.BuildMergeError, "merge failure"},
		{"StateError", StateError(pipeline.StateMerge, pipeline.StateDone, origErr),
			errcode.BuildStateError, "root cause"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok, "Error should be of type *gn.Error")

			assert.Equal(t, tt.code, gnErr.Code)
			assert.Contains(t, gnErr.Err.Error(), tt.text)
			assert.True(t, errors.Is(gnErr.Err, origErr))
		})
	}
}

func TestStateErrorWithoutCause(t *testing.T) {
	err := StateError(pipeline.StateInit, pipeline.StateDone, nil)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.BuildStateError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "invalid transition")
}

func TestMergeErrorIsNotStateError(t *testing.T) {
	gnErr, ok := MergeError(errors.New("bad indicators")).(*gn.Error)
	require.True(t, ok)
	assert.NotEqual(t, errcode.BuildStateError, gnErr.Code)
	assert.NotContains(t, gnErr.Msg, "cannot move")
}
