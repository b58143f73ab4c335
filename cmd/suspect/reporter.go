package main

import (
	"fmt"
	"time"

	"suspect/internal/orchestration"
)

func verboseProgressListener(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventBatchStart:
		fmt.Printf("Processing %d bug(s)...\n\n", event.TotalBugs)
	case orchestration.EventBugStart:
		fmt.Printf("[%d/%d] Running %s\n", event.BugNum, event.TotalBugs, event.Bug)
	case orchestration.EventBugSkipped:
		fmt.Printf("[%d/%d] %s [already completed]\n", event.BugNum, event.TotalBugs, event.Bug)
	case orchestration.EventBugComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("  %s: %s after %d iteration(s) (%v)\n", event.Bug, event.State, event.Iterations, duration)
	case orchestration.EventBugFailed:
		fmt.Printf("  %s: FAILED", event.Bug)
		if msg, ok := event.Details["error"].(string); ok {
			fmt.Printf(" — %s", msg)
		}
		fmt.Println()
	case orchestration.EventBatchComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("\nBatch completed in %v\n", duration)
	}
}

func simpleProgressListener(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventBugSkipped:
		fmt.Printf("- [%d/%d] %s [skipped]\n", event.BugNum, event.TotalBugs, event.Bug)
	case orchestration.EventBugComplete:
		fmt.Printf("✓ [%d/%d] %s\n", event.BugNum, event.TotalBugs, event.Bug)
	case orchestration.EventBugFailed:
		fmt.Printf("✗ [%d/%d] %s\n", event.BugNum, event.TotalBugs, event.Bug)
	}
}
