package domain

import (
	"context"
	"fmt"
)

type GenerationErrorKind string

const (
	GenerationErrAuth           GenerationErrorKind = "AUTH"
	GenerationErrQuota          GenerationErrorKind = "QUOTA"
	GenerationErrInvalidRequest GenerationErrorKind = "INVALID_REQUEST"
	GenerationErrRateLimit      GenerationErrorKind = "RATE_LIMIT"
	GenerationErrTimeout        GenerationErrorKind = "TIMEOUT"
	GenerationErrServer         GenerationErrorKind = "SERVER"
)

// GenerationError is the typed failure providers return so the orchestrator
// can decide between retry-with-backoff and immediate fallback.
type GenerationError struct {
	Kind     GenerationErrorKind
	Provider string
	Message  string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation provider %s: %s: %s", e.Provider, e.Kind, e.Message)
}

// Switchable reports whether the failure means the provider is unusable as
// such (bad key, exhausted quota, rejected request) and retrying it is
// pointless.
func (e *GenerationError) Switchable() bool {
	switch e.Kind {
	case GenerationErrAuth, GenerationErrQuota, GenerationErrInvalidRequest:
		return true
	}
	return false
}

// PlanSection is one unit of the generated document, carrying the numeric
// total the compliance validator checks against the requested ceiling.
type PlanSection struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
	Total float64  `json:"total"`
}

type GeneratedPlan struct {
	Sections []PlanSection `json:"sections"`
}

// TargetParams is the decoded quiz input the generation request is built
// from. SectionCount and ItemsPerSection drive structural validation,
// UnitCeiling drives compliance validation.
type TargetParams struct {
	Goal            string  `json:"goal" validate:"required"`
	SectionCount    int     `json:"section_count" validate:"min=1,max=31"`
	ItemsPerSection int     `json:"items_per_section" validate:"min=1,max=10"`
	UnitCeiling     float64 `json:"unit_ceiling" validate:"min=0"`
	Preferences     string  `json:"preferences"`
}

type GenerationProvider interface {
	Name() string
	// Generate synchronously produces a plan for the given parameters.
	// Corrections carries corrective instructions appended after a failed
	// validation pass. Failures must be *GenerationError.
	Generate(ctx context.Context, params TargetParams, corrections []string) (*GeneratedPlan, error)
}
