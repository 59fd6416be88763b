package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Progress displays scrape progress on the terminal. In quiet mode all
// output is suppressed so logs stay machine-readable.
type Progress struct {
	spinner   *spinner.Spinner
	quiet     bool
	startTime time.Time

	mu        sync.Mutex
	collected int
	extracted int
	failed    int
	limit     int
}

// NewProgress creates a progress display for one keyword scrape
func NewProgress(limit int, quiet bool) *Progress {
	p := &Progress{
		quiet:     quiet,
		limit:     limit,
		startTime: time.Now(),
	}
	if !quiet {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		p.spinner.Color("cyan")
	}
	return p
}

// StartSearch begins the spinner for the search phase
func (p *Progress) StartSearch(keyword string) {
	if p.quiet {
		return
	}
	p.spinner.Suffix = fmt.Sprintf(" Searching pins for %q...", keyword)
	p.spinner.Start()
}

// UpdateCollected updates the search phase counter
func (p *Progress) UpdateCollected(collected int) {
	p.mu.Lock()
	p.collected = collected
	p.mu.Unlock()

	if p.quiet {
		return
	}
	p.spinner.Suffix = fmt.Sprintf(" Collecting pins... %d/%d", collected, p.limit)
}

// StartExtraction switches the spinner to the extraction phase
func (p *Progress) StartExtraction(total int) {
	if p.quiet {
		return
	}
	p.spinner.Suffix = fmt.Sprintf(" Extracting pin details... 0/%d", total)
}

// RecordExtraction updates extraction counters after each pin
func (p *Progress) RecordExtraction(success bool) {
	p.mu.Lock()
	if success {
		p.extracted++
	} else {
		p.failed++
	}
	extracted, failed, collected := p.extracted, p.failed, p.collected
	p.mu.Unlock()

	if p.quiet {
		return
	}
	suffix := fmt.Sprintf(" Extracting pin details... %d/%d", extracted+failed, collected)
	if failed > 0 {
		suffix += fmt.Sprintf(" (%d failed)", failed)
	}
	p.spinner.Suffix = suffix
}

// Stop halts the spinner
func (p *Progress) Stop() {
	if p.quiet {
		return
	}
	p.spinner.Stop()
}

// Summary prints the final run summary
func (p *Progress) Summary(keyword string, paths []string) {
	if p.quiet {
		return
	}

	p.mu.Lock()
	extracted, failed := p.extracted, p.failed
	p.mu.Unlock()

	elapsed := time.Since(p.startTime).Round(time.Second)
	PrintSuccess(fmt.Sprintf("Done: %d pins for %q in %s", extracted, keyword, elapsed))
	if failed > 0 {
		PrintWarning(fmt.Sprintf("%d pins could not be extracted and were skipped", failed))
	}
	for _, path := range paths {
		PrintInfo("Saved", path)
	}
}

// Counts returns the current extraction counters
func (p *Progress) Counts() (extracted, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.extracted, p.failed
}
