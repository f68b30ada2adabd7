package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type CheckoutUsecase interface {
	// InitiateCheckout is called before the provider's own checkout flow
	// starts. It acquires the per-identity lock and runs the block and
	// duplicate-window checks.
	InitiateCheckout(ctx context.Context, identity string) error
	SaveQuizInput(identity, paramsJSON string) error
	ReleaseCheckout(ctx context.Context, identity string) error
}

type DefaultCheckoutUsecase struct {
	OrderRepo domain.OrderRepository
	InputRepo domain.InputRepository
	BlockRepo domain.BlockRepository
	Locker    domain.IdentityLocker

	LockTTL time.Duration
	// DuplicateWindow is the second line of defense for the accepted
	// lock-TTL gap: a paid order for the same identity inside this window
	// blocks a new checkout even when the lock has expired.
	DuplicateWindow time.Duration
}

func NewDefaultCheckoutUsecase(
	orderRepo domain.OrderRepository,
	inputRepo domain.InputRepository,
	blockRepo domain.BlockRepository,
	locker domain.IdentityLocker,
	lockTTL, duplicateWindow time.Duration) *DefaultCheckoutUsecase {

	return &DefaultCheckoutUsecase{
		OrderRepo:       orderRepo,
		InputRepo:       inputRepo,
		BlockRepo:       blockRepo,
		Locker:          locker,
		LockTTL:         lockTTL,
		DuplicateWindow: duplicateWindow,
	}
}

func (uc *DefaultCheckoutUsecase) InitiateCheckout(ctx context.Context, identity string) error {
	normalized := domain.NormalizeIdentity(identity)

	blocked, err := uc.BlockRepo.IsBlocked(normalized, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to check block list: %w", err)
	}
	if blocked {
		return domain.ErrIdentityBlocked
	}

	acquired, err := uc.Locker.TryAcquire(ctx, normalized, uc.LockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !acquired {
		return domain.ErrCheckoutInProgress
	}

	recent, err := uc.OrderRepo.CountRecentByIdentity(normalized, time.Now().Add(-uc.DuplicateWindow))
	if err != nil {
		uc.Locker.Release(ctx, normalized)
		return fmt.Errorf("failed to run duplicate-order check: %w", err)
	}
	if recent > 0 {
		uc.Locker.Release(ctx, normalized)
		return domain.ErrDuplicateRecentOrder
	}

	return nil
}

func (uc *DefaultCheckoutUsecase) SaveQuizInput(identity, paramsJSON string) error {
	var params domain.TargetParams
	if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
		return fmt.Errorf("invalid quiz input payload: %w", err)
	}
	if err := validate.Struct(params); err != nil {
		return fmt.Errorf("quiz input out of range: %w", err)
	}

	return uc.InputRepo.SaveInput(&domain.QuizInput{
		ID:                 uuid.New().String(),
		NormalizedIdentity: domain.NormalizeIdentity(identity),
		ParamsJSON:         paramsJSON,
		CreatedAt:          time.Now().UTC(),
	})
}

func (uc *DefaultCheckoutUsecase) ReleaseCheckout(ctx context.Context, identity string) error {
	return uc.Locker.Release(ctx, domain.NormalizeIdentity(identity))
}
