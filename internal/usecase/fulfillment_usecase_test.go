package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type fulfillmentFixture struct {
	uc         *DefaultFulfillmentUsecase
	orderRepo  *fakeOrderRepo
	blockRepo  *fakeBlockRepo
	locker     *fakeLocker
	ticketRepo *fakeTicketRepo
	inputRepo  *fakeInputRepo
	mailer     *fakeMailer
	store      *fakeStore
	primary    *fakeProvider
}

func newFulfillmentFixture(t *testing.T) *fulfillmentFixture {
	t.Helper()

	orderRepo := newFakeOrderRepo()
	blockRepo := newFakeBlockRepo()
	locker := newFakeLocker()
	ticketRepo := newFakeTicketRepo()
	ticketUc := newTestTicketUsecase(ticketRepo)

	params := testParams()
	paramsJSON, _ := json.Marshal(params)
	inputRepo := newFakeInputRepo()
	inputRepo.SaveInput(&domain.QuizInput{
		ID:                 "input-1",
		NormalizedIdentity: "buyer@example.com",
		ParamsJSON:         string(paramsJSON),
	})

	reconciler := NewDefaultReconcilerUsecase(inputRepo, ticketUc, 10, 500*time.Millisecond)
	reconciler.wait = noWait

	primary := &fakeProvider{name: "primary", plan: validPlan(params)}
	generation := NewDefaultGenerationUsecase(primary, &fakeProvider{name: "secondary"}, ticketUc, nil)
	generation.sleep = noSleep

	mailer := &fakeMailer{}
	store := &fakeStore{}
	delivery := NewDefaultDeliveryUsecase(orderRepo, &fakeRenderer{}, store, mailer, ticketUc, nil,
		"artifacts", "https://app.example.com", 15*time.Minute)
	delivery.sleep = noSleep

	uc := NewDefaultFulfillmentUsecase(orderRepo, blockRepo, locker, reconciler, generation, delivery, nil, "", nil)
	uc.Async = false

	return &fulfillmentFixture{
		uc:         uc,
		orderRepo:  orderRepo,
		blockRepo:  blockRepo,
		locker:     locker,
		ticketRepo: ticketRepo,
		inputRepo:  inputRepo,
		mailer:     mailer,
		store:      store,
		primary:    primary,
	}
}

func paymentEvent(transactionID string) PaymentEvent {
	return PaymentEvent{
		TransactionID: transactionID,
		Identity:      "Buyer@Example.com",
		PaymentMethod: "card",
		Refundable:    true,
	}
}

func TestHandlePaymentSucceededEndToEnd(t *testing.T) {
	f := newFulfillmentFixture(t)

	outcome, err := f.uc.HandlePaymentSucceeded(context.Background(), paymentEvent("tx-1"))
	if err != nil {
		t.Fatalf("HandlePaymentSucceeded() error = %v", err)
	}
	if outcome != OutcomeAdmitted {
		t.Fatalf("outcome = %q, want %q", outcome, OutcomeAdmitted)
	}

	order, err := f.orderRepo.GetOrderByTransactionID("tx-1")
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.Status != domain.StatusCompleted {
		t.Errorf("order.Status = %q, want %q", order.Status, domain.StatusCompleted)
	}
	if order.NormalizedIdentity != "buyer@example.com" {
		t.Errorf("order.NormalizedIdentity = %q, want %q", order.NormalizedIdentity, "buyer@example.com")
	}
	if order.RecoveryToken == "" {
		t.Error("order.RecoveryToken not generated")
	}
	if f.mailer.calls != 1 {
		t.Errorf("mailer called %d times, want 1", f.mailer.calls)
	}
	if f.locker.releases == 0 {
		t.Error("checkout lock never released")
	}
}

func TestHandlePaymentSucceededConcurrentDeliveries(t *testing.T) {
	f := newFulfillmentFixture(t)

	const deliveries = 8
	outcomes := make([]AdmitOutcome, deliveries)
	errs := make([]error, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = f.uc.HandlePaymentSucceeded(context.Background(), paymentEvent("tx-same"))
		}(i)
	}
	wg.Wait()

	admitted, duplicate := 0, 0
	for i := 0; i < deliveries; i++ {
		if errs[i] != nil {
			t.Fatalf("delivery %d: error = %v", i, errs[i])
		}
		switch outcomes[i] {
		case OutcomeAdmitted:
			admitted++
		case OutcomeDuplicate:
			duplicate++
		}
	}
	if admitted != 1 {
		t.Errorf("admitted = %d, want exactly 1", admitted)
	}
	if duplicate != deliveries-1 {
		t.Errorf("duplicate = %d, want %d", duplicate, deliveries-1)
	}
	// A duplicate must not re-send anything.
	if f.mailer.calls != 1 {
		t.Errorf("mailer called %d times, want 1", f.mailer.calls)
	}
}

func TestFulfillSkipsNonProcessingOrder(t *testing.T) {
	f := newFulfillmentFixture(t)
	f.orderRepo.CreateOrder(&domain.Order{
		ID:                 "order-done",
		TransactionID:      "tx-done",
		NormalizedIdentity: "buyer@example.com",
		Status:             domain.StatusCompleted,
		Stage:              domain.StageNotified,
	})

	if err := f.uc.Fulfill(context.Background(), "order-done"); err != nil {
		t.Fatalf("Fulfill() error = %v", err)
	}
	if f.primary.calls != 0 {
		t.Errorf("generation ran %d times on completed order, want 0", f.primary.calls)
	}
	if f.mailer.calls != 0 {
		t.Errorf("mailer called %d times on completed order, want 0", f.mailer.calls)
	}
}

func TestReprocessGeneratesFromPinnedParams(t *testing.T) {
	f := newFulfillmentFixture(t)

	// Every notify attempt fails, so the first run strands the order in
	// PROCESSING after generation already consumed the reconciled input.
	sendErr := errors.New("smtp timeout")
	f.mailer.errs = []error{sendErr, sendErr, sendErr}

	if _, err := f.uc.HandlePaymentSucceeded(context.Background(), paymentEvent("tx-1")); err != nil {
		t.Fatalf("HandlePaymentSucceeded() error = %v", err)
	}

	order, err := f.orderRepo.GetOrderByTransactionID("tx-1")
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if order.Status != domain.StatusProcessing {
		t.Fatalf("order.Status = %q, want %q", order.Status, domain.StatusProcessing)
	}
	if order.TargetParamsJSON == "" {
		t.Fatal("reconciled params not persisted on the order")
	}
	if f.primary.lastParams.SectionCount != 7 {
		t.Fatalf("first run generated with SectionCount = %d, want 7", f.primary.lastParams.SectionCount)
	}

	// The buyer re-takes the quiz with different answers before support
	// reprocesses the stuck order. The order was paid against the original
	// answers and must not pick these up.
	f.inputRepo.SaveInput(&domain.QuizInput{
		ID:                 "input-2",
		NormalizedIdentity: "buyer@example.com",
		ParamsJSON:         `{"goal":"maintain","section_count":3,"items_per_section":3,"unit_ceiling":2000}`,
	})

	if err := f.uc.Reprocess(order.ID); err != nil {
		t.Fatalf("Reprocess() error = %v", err)
	}

	if f.primary.lastParams.SectionCount != 7 {
		t.Errorf("reprocess generated with SectionCount = %d, want pinned 7", f.primary.lastParams.SectionCount)
	}
	order, _ = f.orderRepo.GetOrderByTransactionID("tx-1")
	if order.Status != domain.StatusCompleted {
		t.Errorf("order.Status after reprocess = %q, want %q", order.Status, domain.StatusCompleted)
	}
}

func TestHandleChargeDisputedBlocksIdentity(t *testing.T) {
	f := newFulfillmentFixture(t)
	f.orderRepo.CreateOrder(&domain.Order{
		ID:                 "order-1",
		TransactionID:      "tx-1",
		NormalizedIdentity: "buyer@example.com",
		Status:             domain.StatusCompleted,
	})

	if err := f.uc.HandleChargeDisputed(context.Background(), "tx-1"); err != nil {
		t.Fatalf("HandleChargeDisputed() error = %v", err)
	}

	order, _ := f.orderRepo.GetOrderByID("order-1")
	if order.Status != domain.StatusRefunded {
		t.Errorf("order.Status = %q, want %q", order.Status, domain.StatusRefunded)
	}
	blocked, _ := f.blockRepo.IsBlocked("buyer@example.com", time.Now().UTC())
	if !blocked {
		t.Error("identity not blocked after chargeback")
	}
	// A chargeback block runs 30 days, not forever.
	blocked, _ = f.blockRepo.IsBlocked("buyer@example.com", time.Now().UTC().Add(31*24*time.Hour))
	if blocked {
		t.Error("chargeback block did not expire")
	}
}

func TestHandleRefundSucceededIsIdempotent(t *testing.T) {
	f := newFulfillmentFixture(t)
	f.orderRepo.CreateOrder(&domain.Order{
		ID:                 "order-1",
		TransactionID:      "tx-1",
		NormalizedIdentity: "buyer@example.com",
		Status:             domain.StatusCompleted,
	})

	for i := 0; i < 2; i++ {
		if err := f.uc.HandleRefundSucceeded(context.Background(), "tx-1"); err != nil {
			t.Fatalf("HandleRefundSucceeded() #%d error = %v", i+1, err)
		}
	}

	order, _ := f.orderRepo.GetOrderByID("order-1")
	if order.Status != domain.StatusRefunded {
		t.Errorf("order.Status = %q, want %q", order.Status, domain.StatusRefunded)
	}
	if order.CompensationCount != 1 {
		t.Errorf("order.CompensationCount = %d, want 1", order.CompensationCount)
	}
}
