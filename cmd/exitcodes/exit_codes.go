package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 2-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates the command already reported its error through the logger, so the
	// top level should exit without printing it again.
	ExitCodeHandledError = 6

	// ExitCodeLookupFailed indicates a requested program counter or source location did not resolve to
	// a function.
	ExitCodeLookupFailed = 7
)
