package models

import (
	"time"
)

// RunStatus captures the outcome of a publish run.
type RunStatus string

// Supported run statuses.
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StepAction names what a step did to a tag.
type StepAction string

const (
	StepBuild StepAction = "build"
	StepPush  StepAction = "push"
	StepAlias StepAction = "alias"
	StepLogin StepAction = "login"
	StepTag   StepAction = "tag"
)

// RunStep is one completed operation of a run.
type RunStep struct {
	Version string     `json:"version"`
	Image   string     `json:"image,omitempty"`
	Action  StepAction `json:"action"`
	Tag     string     `json:"tag"`
}

// RunRecord summarizes a publish run and the tags it produced.
type RunRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`

	Mode     string   `json:"mode"`
	Build    bool     `json:"build"`
	Push     bool     `json:"push"`
	Alias    bool     `json:"alias"`
	Registry string   `json:"registry,omitempty"`
	Versions []string `json:"versions"`
	Images   []string `json:"images"`

	Steps []RunStep `json:"steps"`
}

// Tags returns every tag the run pushed, in order.
func (r RunRecord) Tags() []string {
	var tags []string
	for _, step := range r.Steps {
		if step.Action == StepPush || step.Action == StepAlias {
			tags = append(tags, step.Tag)
		}
	}
	return tags
}
