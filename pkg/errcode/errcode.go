package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	ParseFileError

	// Logging errors
	CreateLogFileError

	// Source errors
	SourceTransportError
	SourceSchemaError
	SourceNotFoundError

	// Build errors
	BuildUniverseError
	BuildCancelledError
	BuildStateError
	BuildMergeError

	// Artifact errors
	ArtifactWriteError
	ArtifactReadError
	ArtifactMissingError

	// Metrics errors
	MetricsWriteError

	// Schedule errors
	ScheduleExpressionError
)
