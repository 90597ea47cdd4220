package build

import "time"

// Status represents the outcome of a page build.
type Status string

const (
	StatusSuccess Status = "success"
	// StatusDryRun means every check passed but nothing was written.
	StatusDryRun Status = "dry_run"
)

// Result describes one generated page.
type Result struct {
	// Source is the project-relative source document path.
	Source string

	// Dest is the destination path relative to the public directory.
	Dest string

	// OutputPath is the resolved file that was written.
	OutputPath string

	// Bytes is the size of the generated page.
	Bytes int

	Status Status

	// Duration covers every stage from reading templates to the write.
	Duration time.Duration
}
