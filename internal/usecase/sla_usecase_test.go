package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

type slaFixture struct {
	uc         *DefaultSLAUsecase
	orderRepo  *fakeOrderRepo
	ticketRepo *fakeTicketRepo
	refunds    *fakeRefundClient
	counter    *fakeCompensationCounter
	blockRepo  *fakeBlockRepo
}

func newSLAFixture(t *testing.T) *slaFixture {
	t.Helper()

	orderRepo := newFakeOrderRepo()
	ticketRepo := newFakeTicketRepo()
	refunds := &fakeRefundClient{}
	counter := newFakeCompensationCounter()
	blockRepo := newFakeBlockRepo()
	abuseUc := NewDefaultAbuseUsecase(counter, blockRepo, nil)

	uc := NewDefaultSLAUsecase(ticketRepo, orderRepo, refunds, abuseUc, newTestTicketUsecase(ticketRepo), nil)

	return &slaFixture{
		uc:         uc,
		orderRepo:  orderRepo,
		ticketRepo: ticketRepo,
		refunds:    refunds,
		counter:    counter,
		blockRepo:  blockRepo,
	}
}

func (f *slaFixture) seedOrder(refundable bool) {
	f.orderRepo.CreateOrder(&domain.Order{
		ID:                 "order-1",
		TransactionID:      "tx-1",
		NormalizedIdentity: "buyer@example.com",
		Status:             domain.StatusProcessing,
		Refundable:         refundable,
	})
}

func (f *slaFixture) seedBreachedTicket(kind domain.IssueKind) *domain.ResolutionTicket {
	ticket := &domain.ResolutionTicket{
		ID:                 "ticket-1",
		TransactionID:      "tx-1",
		NormalizedIdentity: "buyer@example.com",
		IssueKind:          kind,
		Status:             domain.TicketPending,
		SLADeadline:        time.Now().UTC().Add(-time.Hour),
	}
	f.ticketRepo.CreateTicket(ticket)
	return ticket
}

func TestSweepCompensatesBreachedTicket(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.seedBreachedTicket(domain.IssueDeliveryFailed)

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}

	if len(f.refunds.calls) != 1 || f.refunds.calls[0] != "tx-1" {
		t.Fatalf("refund calls = %v, want [tx-1]", f.refunds.calls)
	}
	order, _ := f.orderRepo.GetOrderByID("order-1")
	if order.Status != domain.StatusRefunded {
		t.Errorf("order.Status = %q, want %q", order.Status, domain.StatusRefunded)
	}
	ticket, _ := f.ticketRepo.GetTicketByID("ticket-1")
	if ticket.Status != domain.TicketSLAMissedCompensated {
		t.Errorf("ticket.Status = %q, want %q", ticket.Status, domain.TicketSLAMissedCompensated)
	}
	count, _ := f.counter.CountSince(context.Background(), "buyer@example.com", time.Now().UTC().Add(-24*time.Hour))
	if count != 1 {
		t.Errorf("compensation count = %d, want 1", count)
	}
}

func TestSweepIgnoresUnbreachedTickets(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.ticketRepo.CreateTicket(&domain.ResolutionTicket{
		ID:            "ticket-fresh",
		TransactionID: "tx-1",
		IssueKind:     domain.IssueDeliveryFailed,
		Status:        domain.TicketPending,
		SLADeadline:   time.Now().UTC().Add(time.Hour),
	})

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}
	if len(f.refunds.calls) != 0 {
		t.Errorf("refund calls = %v, want none before the deadline", f.refunds.calls)
	}
}

func TestSweepSkipsManualCompensationTickets(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.seedBreachedTicket(domain.IssueManualCompensation)

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}
	if len(f.refunds.calls) != 0 {
		t.Errorf("refund calls = %v, want none for a human-owned ticket", f.refunds.calls)
	}
}

func TestSweepAlreadyRefundedOrderJustClosesTicket(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.orderRepo.MarkRefunded("order-1")
	f.seedBreachedTicket(domain.IssueDeliveryFailed)

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}
	if len(f.refunds.calls) != 0 {
		t.Errorf("refund calls = %v, want none for an already-refunded order", f.refunds.calls)
	}
	ticket, _ := f.ticketRepo.GetTicketByID("ticket-1")
	if ticket.Status != domain.TicketSLAMissedCompensated {
		t.Errorf("ticket.Status = %q, want %q", ticket.Status, domain.TicketSLAMissedCompensated)
	}
}

func TestSweepManualReviewEscalates(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.seedBreachedTicket(domain.IssueDeliveryFailed)
	// Two prior compensations push the identity into manual review.
	f.counter.RecordCompensation(context.Background(), "buyer@example.com", time.Now().UTC().Add(-24*time.Hour))
	f.counter.RecordCompensation(context.Background(), "buyer@example.com", time.Now().UTC().Add(-48*time.Hour))

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}
	if len(f.refunds.calls) != 0 {
		t.Errorf("refund calls = %v, want none under manual review", f.refunds.calls)
	}
	ticket, _ := f.ticketRepo.GetTicketByID("ticket-1")
	if ticket.Status != domain.TicketEscalated {
		t.Errorf("ticket.Status = %q, want %q", ticket.Status, domain.TicketEscalated)
	}
	if tickets := f.ticketRepo.ticketsOfKind(domain.IssueManualCompensation); len(tickets) != 1 {
		t.Errorf("opened %d MANUAL_COMPENSATION_REQUIRED tickets, want 1", len(tickets))
	}
}

func TestSweepUnsupportedRefundFallsBackToManual(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.seedBreachedTicket(domain.IssueDeliveryFailed)
	f.refunds.err = domain.ErrRefundUnsupported

	if err := f.uc.CompensateBreachedTickets(context.Background()); err != nil {
		t.Fatalf("CompensateBreachedTickets() error = %v", err)
	}
	order, _ := f.orderRepo.GetOrderByID("order-1")
	if order.Status != domain.StatusProcessing {
		t.Errorf("order.Status = %q, want unchanged %q", order.Status, domain.StatusProcessing)
	}
	ticket, _ := f.ticketRepo.GetTicketByID("ticket-1")
	if ticket.Status != domain.TicketEscalated {
		t.Errorf("ticket.Status = %q, want %q", ticket.Status, domain.TicketEscalated)
	}
	if tickets := f.ticketRepo.ticketsOfKind(domain.IssueManualCompensation); len(tickets) != 1 {
		t.Errorf("opened %d MANUAL_COMPENSATION_REQUIRED tickets, want 1", len(tickets))
	}
}

func TestForceCompensateBypassesAbuseGuard(t *testing.T) {
	f := newSLAFixture(t)
	f.seedOrder(true)
	f.seedBreachedTicket(domain.IssueDeliveryFailed)
	// History that would block the automatic path.
	for i := 0; i < 4; i++ {
		f.counter.RecordCompensation(context.Background(), "buyer@example.com", time.Now().UTC().Add(-time.Duration(i+1)*24*time.Hour))
	}

	if err := f.uc.ForceCompensate(context.Background(), "ticket-1"); err != nil {
		t.Fatalf("ForceCompensate() error = %v", err)
	}
	if len(f.refunds.calls) != 1 {
		t.Fatalf("refund calls = %v, want [tx-1]", f.refunds.calls)
	}
	order, _ := f.orderRepo.GetOrderByID("order-1")
	if order.Status != domain.StatusRefunded {
		t.Errorf("order.Status = %q, want %q", order.Status, domain.StatusRefunded)
	}
	ticket, _ := f.ticketRepo.GetTicketByID("ticket-1")
	if ticket.Status != domain.TicketResolved {
		t.Errorf("ticket.Status = %q, want %q", ticket.Status, domain.TicketResolved)
	}
}
