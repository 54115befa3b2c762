package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Task and store errors
	ErrInvalidValues = fmt.Errorf("invalid values")
	ErrNotFound      = fmt.Errorf("not found")
	ErrUnknown       = fmt.Errorf("unknown error")
	ErrNameInUse     = fmt.Errorf("%w: name already used", ErrInvalidValues)
	ErrSpawnFailed   = fmt.Errorf("failed to start worker")
	ErrRunnerClosed  = fmt.Errorf("%w: runner closed", ErrSpawnFailed)

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
