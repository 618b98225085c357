package xlmunge

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/ukaji3/xlmunge/pkg/xlmunge/document"
)

// Mutator applies the picture replacement to one workbook at a time.
type Mutator struct {
	opener document.Opener
	req    Request
	log    Logger
	runID  string
	now    func() time.Time
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithLogger sets the sink for progress messages (default: discard).
func WithLogger(log Logger) MutatorOption {
	return func(m *Mutator) {
		if log != nil {
			m.log = log
		}
	}
}

// WithRunID tags the report produced by Run.
func WithRunID(id string) MutatorOption {
	return func(m *Mutator) { m.runID = id }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) MutatorOption {
	return func(m *Mutator) { m.now = now }
}

// NewMutator creates a Mutator that opens workbooks through opener.
func NewMutator(opener document.Opener, req Request, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		opener: opener,
		req:    req,
		log:    NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run processes every path yielded by files, in order. No single file can
// abort the batch; Run only stops early when ctx is cancelled.
func (m *Mutator) Run(ctx context.Context, files iter.Seq2[string, error]) *Report {
	report := &Report{
		RunID:     m.runID,
		Root:      m.req.Root,
		DryRun:    m.req.DryRun,
		StartedAt: m.now(),
	}

	for path, err := range files {
		if ctx.Err() != nil {
			m.log.Warn("Interrupted, %d file(s) processed", report.Stats.Total)
			report.Interrupted = true
			break
		}
		if err != nil {
			m.log.Warn("Cannot read %s: %v", path, err)
			report.Stats.WalkErrors++
			continue
		}

		o := m.Process(path)
		report.record(o)
		m.logOutcome(report.Stats.Total, o)
	}

	report.FinishedAt = m.now()
	return report
}

// Process runs the per-file procedure on one workbook. The first matching
// skip condition wins; every error is captured in the returned Outcome.
func (m *Mutator) Process(path string) Outcome {
	o := Outcome{Path: path}

	if IsMunged(path, m.req.Suffix) {
		o.Status = StatusSkippedAlreadyMunged
		return o
	}

	ext, ok := matchedExtension(filepath.Base(path), m.req.Extensions)
	if !ok {
		ext = DefaultExtensions[0]
		if len(m.req.Extensions) > 0 {
			ext = m.req.Extensions[0]
		}
	}
	o.OutputPath = OutputPath(path, ext, m.req.Suffix)

	if err := checkReadable(path); err != nil {
		o.Status = StatusSkippedUnreadable
		o.Err = err
		return o
	}

	doc, err := m.opener.Open(path)
	if err != nil {
		o.Status = StatusSkippedIOError
		o.Err = newFileError(path, StageOpen, err)
		return o
	}
	defer func() {
		if err := doc.Close(); err != nil {
			m.log.Warn("Close %s: %v", filepath.Base(path), err)
		}
	}()

	sheet, ok := doc.Sheet(m.req.TemplateSheet)
	if !ok {
		m.log.Debug("%s: sheets %v", filepath.Base(path), doc.SheetNames())
		o.Status = StatusSkippedNoTemplateSheet
		return o
	}

	removed, err := m.replacePicture(path, doc, sheet)
	o.Removed = removed
	if err != nil {
		o.Status = StatusSkippedIOError
		o.Err = err
		return o
	}

	if !m.req.DryRun {
		if err := doc.Write(o.OutputPath); err != nil {
			o.Status = StatusSkippedIOError
			o.Err = newFileError(o.OutputPath, StageWrite, err)
			return o
		}
		o.Written = true
	}

	o.Status = StatusProcessed
	return o
}

// replacePicture removes the first drawing child of sheet, if any, and
// attaches the replacement image at the top-left cell at native size.
func (m *Mutator) replacePicture(path string, doc document.Document, sheet document.Sheet) (*document.Shape, error) {
	drawing, err := sheet.Drawing()
	if err != nil {
		return nil, newFileError(path, StageDrawing, err)
	}
	shapes, err := drawing.Shapes()
	if err != nil {
		return nil, newFileError(path, StageDrawing, err)
	}

	var removed *document.Shape
	if len(shapes) > 0 {
		first := shapes[0]
		if err := drawing.Remove(first); err != nil {
			return nil, newFileError(path, StageRemove, err)
		}
		removed = &first
		m.log.Debug("%s: removed %s %q", filepath.Base(path), first.Kind, first.Name)
	} else {
		m.log.Debug("%s: drawing layer is empty", filepath.Base(path))
	}

	id, err := doc.EmbedImage(m.req.Image.Data, document.FormatPNG)
	if err != nil {
		return removed, newFileError(path, StageEmbed, err)
	}
	pic, err := drawing.Attach(id, document.Anchor{Col: 0, Row: 0})
	if err != nil {
		return removed, newFileError(path, StageAttach, err)
	}
	if err := pic.ResizeToNative(); err != nil {
		return removed, newFileError(path, StageAttach, err)
	}
	return removed, nil
}

func (m *Mutator) logOutcome(n int, o Outcome) {
	name := filepath.Base(o.Path)
	switch o.Status {
	case StatusProcessed:
		if o.Written {
			m.log.Success("[%d] %s -> %s", n, name, filepath.Base(o.OutputPath))
		} else {
			m.log.Success("[%d] [DRY] %s would be written to %s", n, name, filepath.Base(o.OutputPath))
		}
	case StatusSkippedAlreadyMunged:
		m.log.Info("[%d] Skip (already munged): %s", n, name)
	case StatusSkippedNoTemplateSheet:
		m.log.Warn("[%d] Skip (no %q sheet): %s", n, m.req.TemplateSheet, name)
	case StatusSkippedUnreadable:
		m.log.Warn("[%d] Skip (unreadable): %s: %v", n, name, o.Err)
	case StatusSkippedIOError:
		m.log.Error("[%d] Skip (I/O error): %v", n, o.Err)
	}
}

// checkReadable opens and closes path.
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
