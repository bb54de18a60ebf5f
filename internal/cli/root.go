package cli

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/bldr/pkg/errors"
)

// Process exit statuses.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
	ExitFetch        = 3
	ExitCompilation  = 4
	ExitExternalTool = 5
	ExitMissingDir   = 6
	ExitInterrupted  = 130 // shell convention for SIGINT
)

// ExitCode maps err to the process exit status. Joined errors map by their
// first coded member.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidCoordinate,
		errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidDescriptor,
		errors.ErrCodeMalformedVersion:
		return ExitInvalidInput
	case errors.ErrCodeArtifactFetch, errors.ErrCodeNetwork, errors.ErrCodeNotFound:
		return ExitFetch
	case errors.ErrCodeCompilation:
		return ExitCompilation
	case errors.ErrCodeExternalTool:
		return ExitExternalTool
	case errors.ErrCodeMissingDirectory:
		return ExitMissingDir
	}
	return ExitFailure
}
