package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/docugen/fulfillment-service/internal/infrastructure/metrics"
)

const (
	maxTransientRetries  = 3
	maxComplianceRetries = 2
	maxStructuralRetries = 1
)

// transientBackoff returns the wait before transient retry n (1-based).
func transientBackoff(retry int) time.Duration {
	return time.Duration(1<<retry) * time.Second // 2s, 4s, 8s
}

type GenerationUsecase interface {
	Generate(ctx context.Context, transactionID, normalizedIdentity string, params domain.TargetParams) (*domain.GeneratedPlan, error)
}

type DefaultGenerationUsecase struct {
	Primary   domain.GenerationProvider
	Secondary domain.GenerationProvider
	TicketUc  TicketUsecase
	Metrics   *metrics.FulfillmentMetrics

	// sleep is swapped in tests
	sleep func(time.Duration)
}

func NewDefaultGenerationUsecase(
	primary, secondary domain.GenerationProvider,
	ticketUc TicketUsecase,
	m *metrics.FulfillmentMetrics) *DefaultGenerationUsecase {

	return &DefaultGenerationUsecase{
		Primary:   primary,
		Secondary: secondary,
		TicketUc:  ticketUc,
		Metrics:   m,
		sleep:     time.Sleep,
	}
}

// Generate drives the primary/fallback provider pair and both validation
// passes. All retry counters are bounded; exhaustion opens a resolution
// ticket and returns ErrGenerationExhausted.
func (uc *DefaultGenerationUsecase) Generate(ctx context.Context, transactionID, normalizedIdentity string, params domain.TargetParams) (*domain.GeneratedPlan, error) {
	var corrections []string
	complianceRetries := 0
	structuralRetries := 0

	for {
		plan, err := uc.generateWithFallback(ctx, params, corrections)
		if err != nil {
			if _, terr := uc.TicketUc.OpenTicket(transactionID, normalizedIdentity, domain.IssueGenerationInvalid, "all generation providers exhausted: "+err.Error()); terr != nil {
				return nil, terr
			}
			return nil, domain.ErrGenerationExhausted
		}

		if err := validateCompliance(plan, params); err != nil {
			uc.logValidationFailure("compliance", transactionID, plan, err)
			if complianceRetries < maxComplianceRetries {
				complianceRetries++
				corrections = append(corrections, fmt.Sprintf("keep every section total at or below %.0f", params.UnitCeiling))
				continue
			}
			return nil, uc.validationExhausted(transactionID, normalizedIdentity, "compliance", err)
		}

		if err := validateStructure(plan, params); err != nil {
			uc.logValidationFailure("structural", transactionID, plan, err)
			if structuralRetries < maxStructuralRetries {
				structuralRetries++
				corrections = append(corrections, fmt.Sprintf("produce exactly %d sections with %d items each", params.SectionCount, params.ItemsPerSection))
				continue
			}
			return nil, uc.validationExhausted(transactionID, normalizedIdentity, "structural", err)
		}

		return plan, nil
	}
}

// generateWithFallback applies the per-provider retry policy: transient
// failures back off and retry, switchable failures (auth, quota, invalid
// request) jump to the secondary provider without burning a retry.
func (uc *DefaultGenerationUsecase) generateWithFallback(ctx context.Context, params domain.TargetParams, corrections []string) (*domain.GeneratedPlan, error) {
	plan, primaryErr := uc.generateWithRetries(ctx, uc.Primary, params, corrections)
	if primaryErr == nil {
		return plan, nil
	}

	if uc.Metrics != nil {
		uc.Metrics.GenerationFallbacksTotal.Inc()
	}
	slog.Warn("switching to secondary generation provider", "cause", primaryErr.Error())

	plan, secondaryErr := uc.generateWithRetries(ctx, uc.Secondary, params, corrections)
	if secondaryErr == nil {
		return plan, nil
	}
	return nil, fmt.Errorf("primary: %v; secondary: %v", primaryErr, secondaryErr)
}

func (uc *DefaultGenerationUsecase) generateWithRetries(ctx context.Context, provider domain.GenerationProvider, params domain.TargetParams, corrections []string) (*domain.GeneratedPlan, error) {
	var lastErr error
	for retry := 0; ; retry++ {
		plan, err := provider.Generate(ctx, params, corrections)
		if err == nil {
			uc.countAttempt(provider, "success")
			return plan, nil
		}
		lastErr = err

		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			uc.countAttempt(provider, "error")
			return nil, err
		}
		uc.countAttempt(provider, string(genErr.Kind))

		if genErr.Switchable() {
			// Bad credentials or exhausted quota: retrying this provider
			// is pointless.
			return nil, err
		}
		if retry >= maxTransientRetries {
			return nil, fmt.Errorf("transient retries exhausted: %w", lastErr)
		}
		uc.sleep(transientBackoff(retry + 1))
	}
}

func (uc *DefaultGenerationUsecase) validationExhausted(transactionID, normalizedIdentity, pass string, cause error) error {
	if _, err := uc.TicketUc.OpenTicket(transactionID, normalizedIdentity, domain.IssueGenerationInvalid, pass+" validation exhausted: "+cause.Error()); err != nil {
		return err
	}
	return domain.ErrGenerationExhausted
}

func (uc *DefaultGenerationUsecase) countAttempt(provider domain.GenerationProvider, outcome string) {
	if uc.Metrics != nil {
		uc.Metrics.GenerationAttemptsTotal.WithLabelValues(provider.Name(), outcome).Inc()
	}
}

// logValidationFailure records a fingerprint of the bad plan (hash, shape,
// totals) without storing its content, enough to spot a systemic provider
// or prompt problem.
func (uc *DefaultGenerationUsecase) logValidationFailure(pass, transactionID string, plan *domain.GeneratedPlan, cause error) {
	if uc.Metrics != nil {
		uc.Metrics.ValidationFailuresTotal.WithLabelValues(pass).Inc()
	}
	raw, _ := json.Marshal(plan)
	sum := sha256.Sum256(raw)
	maxTotal := 0.0
	for _, s := range plan.Sections {
		if s.Total > maxTotal {
			maxTotal = s.Total
		}
	}
	slog.Warn("generated plan failed validation",
		"pass", pass,
		"transaction_id", transactionID,
		"plan_hash", fmt.Sprintf("%x", sum[:8]),
		"sections", len(plan.Sections),
		"max_section_total", maxTotal,
		"cause", cause.Error(),
	)
}

// validateCompliance enforces the business ceiling on every section total.
func validateCompliance(plan *domain.GeneratedPlan, params domain.TargetParams) error {
	if params.UnitCeiling <= 0 {
		return nil
	}
	for i, section := range plan.Sections {
		if section.Total > params.UnitCeiling {
			return fmt.Errorf("section %d total %.0f exceeds ceiling %.0f", i, section.Total, params.UnitCeiling)
		}
	}
	return nil
}

// validateStructure enforces the exact shape the renderer expects.
func validateStructure(plan *domain.GeneratedPlan, params domain.TargetParams) error {
	if len(plan.Sections) != params.SectionCount {
		return fmt.Errorf("expected %d sections, got %d", params.SectionCount, len(plan.Sections))
	}
	for i, section := range plan.Sections {
		if len(section.Items) != params.ItemsPerSection {
			return fmt.Errorf("section %d: expected %d items, got %d", i, params.ItemsPerSection, len(section.Items))
		}
	}
	return nil
}
