package domain

import (
	"time"
)

type SiteName string

// WatchedSite is a site assessed periodically by the monitor.
type WatchedSite struct {
	Name SiteName `mapstructure:"name" json:"name" validate:"required"`
	URL  string   `mapstructure:"url" json:"url" validate:"required"`
}

type Assessment struct {
	URL         string     `json:"url" yaml:"url"`
	Verdict     Verdict    `json:"verdict" yaml:"verdict"`
	Narrative   string     `json:"narrative" yaml:"narrative"`
	Report      SiteReport `json:"report" yaml:"report"`
	Warnings    []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time  `json:"completed_at" yaml:"completed_at"`
}

func (a Assessment) Duration() time.Duration {
	return a.CompletedAt.Sub(a.StartedAt)
}

type Comparison struct {
	FirstURL        string            `json:"first_url" yaml:"first_url"`
	SecondURL       string            `json:"second_url" yaml:"second_url"`
	Narrative       string            `json:"narrative" yaml:"narrative"`
	FirstNarrative  string            `json:"first_narrative,omitempty" yaml:"first_narrative,omitempty"`
	SecondNarrative string            `json:"second_narrative,omitempty" yaml:"second_narrative,omitempty"`
	Report          ComparativeReport `json:"report" yaml:"report"`
	Warnings        []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	StartedAt       time.Time         `json:"started_at" yaml:"started_at"`
	CompletedAt     time.Time         `json:"completed_at" yaml:"completed_at"`
}

// CheckResult is what the monitor hands to metrics and exporters after
// assessing a watched site.
type CheckResult struct {
	Site       WatchedSite
	Assessment *Assessment
	Error      error
	Duration   time.Duration
	Completed  time.Time
}

type Exporter interface {
	Export(result CheckResult) error
}
