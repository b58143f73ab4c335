package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess   = 0 // Every bug processed
	ExitBugFailed = 1 // One or more bugs failed inference
	ExitError     = 2 // Configuration or runtime error
)

// BugFailureError indicates the batch ran to the end but one or more bugs
// could not produce a ranking.
type BugFailureError struct {
	Message string
}

func (e *BugFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var bugErr *BugFailureError
		if errors.As(err, &bugErr) {
			os.Exit(ExitBugFailed)
		}

		os.Exit(ExitError)
	}
}
