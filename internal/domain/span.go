package domain

import (
	"encoding/json"
	"time"
)

// StageSpan times one pipeline stage
type StageSpan struct {
	Name    string    `json:"name"`
	Rows    int       `json:"rows"`
	startTs time.Time `json:"-"`
	Elapsed *int64    `json:"elapsedMs"`
}

// Profile is simply a list of stage spans
type Profile struct {
	Spans   []*StageSpan `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*StageSpan{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

func (p *Profile) End() {
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

func (s *StageSpan) End(rows int) {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
		s.Rows = rows
	}
}

// StartStage ends the last span and begins a new one
// not thread safe
func (p *Profile) StartStage(name string) *StageSpan {
	if len(p.Spans) > 0 {
		last := p.Spans[len(p.Spans)-1]
		last.End(last.Rows)
	}
	s := &StageSpan{
		Name:    name,
		startTs: time.Now(),
	}
	p.Spans = append(p.Spans, s)
	return s
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	return json.Marshal(p)
}
