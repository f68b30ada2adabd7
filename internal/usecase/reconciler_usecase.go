package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

// ReconcilerUsecase bridges the race between the payment webhook and the
// checkout client still committing its quiz input. The poll is a pure
// function of (attempts, interval) so it stays testable.
type ReconcilerUsecase interface {
	AwaitInput(ctx context.Context, transactionID, normalizedIdentity string) (*domain.QuizInput, error)
}

type DefaultReconcilerUsecase struct {
	InputRepo domain.InputRepository
	TicketUc  TicketUsecase

	MaxAttempts int
	Interval    time.Duration

	// wait is swapped in tests
	wait func(ctx context.Context, d time.Duration) error
}

func NewDefaultReconcilerUsecase(
	inputRepo domain.InputRepository,
	ticketUc TicketUsecase,
	maxAttempts int,
	interval time.Duration) *DefaultReconcilerUsecase {

	return &DefaultReconcilerUsecase{
		InputRepo:   inputRepo,
		TicketUc:    ticketUc,
		MaxAttempts: maxAttempts,
		Interval:    interval,
		wait:        waitInterval,
	}
}

// waitInterval blocks for d or until the context is cancelled, whichever
// comes first.
func waitInterval(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (uc *DefaultReconcilerUsecase) AwaitInput(ctx context.Context, transactionID, normalizedIdentity string) (*domain.QuizInput, error) {
	for attempt := 1; attempt <= uc.MaxAttempts; attempt++ {
		input, err := uc.InputRepo.GetInputByIdentity(normalizedIdentity)
		if err == nil {
			return input, nil
		}
		if !errors.Is(err, domain.ErrInputNotFound) {
			return nil, err
		}
		if attempt < uc.MaxAttempts {
			if err := uc.wait(ctx, uc.Interval); err != nil {
				return nil, err
			}
		}
	}

	slog.Error("quiz input never appeared",
		"transaction_id", transactionID,
		"normalized_identity", normalizedIdentity,
		"attempts", uc.MaxAttempts,
	)
	if _, err := uc.TicketUc.OpenTicket(transactionID, normalizedIdentity, domain.IssueMissingInput, "quiz input not found after polling"); err != nil {
		return nil, err
	}
	return nil, domain.ErrInputNotFound
}
