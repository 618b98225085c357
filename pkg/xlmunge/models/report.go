package models

import "time"

// RunReport summarises one batch run.
type RunReport struct {
	RunID       string        `json:"run_id"`
	Root        string        `json:"root"`
	DryRun      bool          `json:"dry_run"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Counts      RunCounts     `json:"counts"`
	Files       []FileOutcome `json:"files"`
}

// RunCounts holds per-status totals.
type RunCounts struct {
	Total                  int `json:"total"`
	Processed              int `json:"processed"`
	SkippedAlreadyMunged   int `json:"skipped_already_munged"`
	SkippedUnreadable      int `json:"skipped_unreadable"`
	SkippedNoTemplateSheet int `json:"skipped_no_template_sheet"`
	SkippedIOError         int `json:"skipped_io_error"`
	WalkErrors             int `json:"walk_errors,omitempty"`
}

// FileOutcome is the result for one candidate file.
type FileOutcome struct {
	Path         string `json:"path"`
	Status       string `json:"status"`
	OutputPath   string `json:"output_path,omitempty"`
	Written      bool   `json:"written"`
	RemovedShape *Shape `json:"removed_shape,omitempty"`
	Error        string `json:"error,omitempty"`
}
