package xlmunge

import (
	"time"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
	"github.com/ukaji3/xlmunge/pkg/xlmunge/models"
)

// Status is the result of processing one candidate file.
type Status string

const (
	StatusProcessed              Status = "processed"
	StatusSkippedAlreadyMunged   Status = "skipped_already_munged"
	StatusSkippedUnreadable      Status = "skipped_unreadable"
	StatusSkippedNoTemplateSheet Status = "skipped_no_template_sheet"
	StatusSkippedIOError         Status = "skipped_io_error"
)

// Skipped reports whether the file was left untouched.
func (s Status) Skipped() bool {
	return s != StatusProcessed
}

// Outcome records what happened to one candidate file.
type Outcome struct {
	Path   string
	Status Status
	// OutputPath is set once the output name has been derived.
	OutputPath string
	// Removed is the drawing child deleted from the template sheet, if any.
	Removed *document.Shape
	// Written is false for dry runs and skipped files.
	Written bool
	Err     error
}

// RunStats tracks per-status counters across a batch run.
type RunStats struct {
	Total                  int
	Processed              int
	SkippedAlreadyMunged   int
	SkippedUnreadable      int
	SkippedNoTemplateSheet int
	SkippedIOError         int
	// WalkErrors counts directories the discoverer could not read.
	WalkErrors int
}

func (s *RunStats) add(status Status) {
	s.Total++
	switch status {
	case StatusProcessed:
		s.Processed++
	case StatusSkippedAlreadyMunged:
		s.SkippedAlreadyMunged++
	case StatusSkippedUnreadable:
		s.SkippedUnreadable++
	case StatusSkippedNoTemplateSheet:
		s.SkippedNoTemplateSheet++
	case StatusSkippedIOError:
		s.SkippedIOError++
	}
}

// Skipped returns the number of files left untouched for any reason.
func (s RunStats) Skipped() int {
	return s.Total - s.Processed
}

// Report aggregates the outcomes of one run.
type Report struct {
	RunID      string
	Root       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	// Interrupted is set when the run stopped before the walk finished.
	Interrupted bool
	Outcomes    []Outcome
	Stats       RunStats
}

func (r *Report) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Stats.add(o.Status)
}

// Model converts the report to its serialisable form.
func (r *Report) Model() models.RunReport {
	out := models.RunReport{
		RunID:       r.RunID,
		Root:        r.Root,
		DryRun:      r.DryRun,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Interrupted: r.Interrupted,
		Counts: models.RunCounts{
			Total:                  r.Stats.Total,
			Processed:              r.Stats.Processed,
			SkippedAlreadyMunged:   r.Stats.SkippedAlreadyMunged,
			SkippedUnreadable:      r.Stats.SkippedUnreadable,
			SkippedNoTemplateSheet: r.Stats.SkippedNoTemplateSheet,
			SkippedIOError:         r.Stats.SkippedIOError,
			WalkErrors:             r.Stats.WalkErrors,
		},
	}
	for _, o := range r.Outcomes {
		fo := models.FileOutcome{
			Path:       o.Path,
			Status:     string(o.Status),
			OutputPath: o.OutputPath,
			Written:    o.Written,
		}
		if o.Removed != nil {
			s := shapeModel(*o.Removed)
			fo.RemovedShape = &s
		}
		if o.Err != nil {
			fo.Error = o.Err.Error()
		}
		out.Files = append(out.Files, fo)
	}
	return out
}

func shapeModel(s document.Shape) models.Shape {
	return models.Shape{
		Index: s.Index,
		ID:    s.ID,
		Name:  s.Name,
		Kind:  string(s.Kind),
		Col:   s.From.Col,
		Row:   s.From.Row,
	}
}
