package ingest

import "time"

// SetClock replaces the time source used to stamp items and summaries
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}
