package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/ukaji3/rowsheet-go/pkg/rowsheet"
)

// progressReporter draws one progress bar per sheet spec.
type progressReporter struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	sheet string
	start int
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{w: w}
}

func (p *progressReporter) update(pr rowsheet.Progress) {
	if p.bar == nil || pr.Sheet != p.sheet || pr.Start != p.start {
		p.finish()
		p.bar = progressbar.NewOptions(pr.Stop-pr.Start,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(pr.Sheet),
			progressbar.OptionShowCount(),
		)
		p.sheet, p.start = pr.Sheet, pr.Start
	}
	_ = p.bar.Set(pr.Row - pr.Start + 1)
}

// finish completes the current bar. It is safe on a nil reporter.
func (p *progressReporter) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
	p.bar = nil
}
