package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file or flag values)
	ExitDataError   = 3 // Data error (unknown format, parse failure)

	// Dedupe exit codes
	ExitDuplicatesFound = 1 // dedupe --check found duplicates
)
