package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/docugen/fulfillment-service/internal/domain"
)

// In-memory fakes implementing the domain ports. The order fake mirrors the
// database semantics that matter: the unique transaction_id constraint and
// row updates.

type fakeOrderRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Order
	byTxID map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byID:   make(map[string]*domain.Order),
		byTxID: make(map[string]*domain.Order),
	}
}

func (r *fakeOrderRepo) CreateOrder(order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTxID[order.TransactionID]; exists {
		return domain.ErrDuplicateTransaction
	}
	cp := *order
	r.byID[order.ID] = &cp
	r.byTxID[order.TransactionID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrderByTransactionID(transactionID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byTxID[transactionID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) GetOrderByRecoveryToken(token string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.byID {
		if order.RecoveryToken == token {
			cp := *order
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateOrderStage(orderID string, stage domain.OrderStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Stage = stage
	}
	return nil
}

func (r *fakeOrderRepo) SetInputReady(orderID, paramsJSON string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Stage = domain.StageInputReady
		order.TargetParamsJSON = paramsJSON
	}
	return nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(orderID string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Status = status
	}
	return nil
}

func (r *fakeOrderRepo) MarkCompleted(orderID, artifactRef string, notifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Status = domain.StatusCompleted
		order.Stage = domain.StageNotified
		order.ArtifactRef = artifactRef
		order.NotifiedAt = &notifiedAt
	}
	return nil
}

func (r *fakeOrderRepo) MarkRefunded(orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Status = domain.StatusRefunded
		order.CompensationCount++
	}
	return nil
}

func (r *fakeOrderRepo) SetArtifactRef(orderID, artifactRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.byID[orderID]; ok {
		order.Stage = domain.StageStored
		order.ArtifactRef = artifactRef
	}
	return nil
}

func (r *fakeOrderRepo) CountRecentByIdentity(normalizedIdentity string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, order := range r.byID {
		if order.NormalizedIdentity == normalizedIdentity && !order.CreatedAt.Before(since) {
			total++
		}
	}
	return total, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.ResolutionTicket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.ResolutionTicket)}
}

func (r *fakeTicketRepo) CreateTicket(ticket *domain.ResolutionTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetTicketByID(ticketID string) (*domain.ResolutionTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	cp := *ticket
	return &cp, nil
}

func (r *fakeTicketRepo) UpdateTicketStatus(ticketID string, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[ticketID]; ok {
		ticket.Status = status
	}
	return nil
}

func (r *fakeTicketRepo) ResolveTicket(ticketID string, notes string, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[ticketID]; ok {
		ticket.Status = domain.TicketResolved
		ticket.Notes = notes
		ticket.ResolvedAt = &resolvedAt
	}
	return nil
}

func (r *fakeTicketRepo) FindBreachedTickets(now time.Time) ([]*domain.ResolutionTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var breached []*domain.ResolutionTicket
	for _, ticket := range r.tickets {
		if (ticket.Status == domain.TicketPending || ticket.Status == domain.TicketInProgress) && ticket.SLADeadline.Before(now) {
			cp := *ticket
			breached = append(breached, &cp)
		}
	}
	return breached, nil
}

func (r *fakeTicketRepo) FindPendingTickets(page, limit int64) ([]*domain.ResolutionTicket, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*domain.ResolutionTicket
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketPending || ticket.Status == domain.TicketInProgress {
			cp := *ticket
			pending = append(pending, &cp)
		}
	}
	return pending, int64(len(pending)), nil
}

func (r *fakeTicketRepo) ticketsOfKind(kind domain.IssueKind) []*domain.ResolutionTicket {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ResolutionTicket
	for _, ticket := range r.tickets {
		if ticket.IssueKind == kind {
			cp := *ticket
			out = append(out, &cp)
		}
	}
	return out
}

type fakeInputRepo struct {
	mu     sync.Mutex
	inputs map[string]*domain.QuizInput
	// failUntil makes the first N reads miss, simulating the lagging
	// checkout client.
	failUntil int
	calls     int
}

func newFakeInputRepo() *fakeInputRepo {
	return &fakeInputRepo{inputs: make(map[string]*domain.QuizInput)}
}

func (r *fakeInputRepo) SaveInput(input *domain.QuizInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *input
	r.inputs[input.NormalizedIdentity] = &cp
	return nil
}

func (r *fakeInputRepo) GetInputByIdentity(normalizedIdentity string) (*domain.QuizInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failUntil {
		return nil, domain.ErrInputNotFound
	}
	input, ok := r.inputs[normalizedIdentity]
	if !ok {
		return nil, domain.ErrInputNotFound
	}
	cp := *input
	return &cp, nil
}

type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks map[string]*domain.BlockEntry
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[string]*domain.BlockEntry)}
}

func (r *fakeBlockRepo) UpsertBlock(block *domain.BlockEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *block
	r.blocks[block.NormalizedIdentity] = &cp
	return nil
}

func (r *fakeBlockRepo) IsBlocked(normalizedIdentity string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	block, ok := r.blocks[normalizedIdentity]
	return ok && block.ExpiresAt.After(now), nil
}

func (r *fakeBlockRepo) DeleteExpired(now time.Time) error { return nil }

// fakeLocker implements set-if-absent semantics under a mutex, the same
// guarantee the redis implementation gives across processes.
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	releases int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) TryAcquire(ctx context.Context, normalizedIdentity string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[normalizedIdentity] {
		return false, nil
	}
	l.held[normalizedIdentity] = true
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, normalizedIdentity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, normalizedIdentity)
	l.releases++
	return nil
}

type fakeCompensationCounter struct {
	mu     sync.Mutex
	events map[string][]time.Time
}

func newFakeCompensationCounter() *fakeCompensationCounter {
	return &fakeCompensationCounter{events: make(map[string][]time.Time)}
}

func (c *fakeCompensationCounter) RecordCompensation(ctx context.Context, normalizedIdentity string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[normalizedIdentity] = append(c.events[normalizedIdentity], at)
	return nil
}

func (c *fakeCompensationCounter) CountSince(ctx context.Context, normalizedIdentity string, since time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, at := range c.events[normalizedIdentity] {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

// fakeProvider scripts the generation provider: errs are returned call by
// call, then plans.
type fakeProvider struct {
	mu    sync.Mutex
	name  string
	errs  []error
	plan  *domain.GeneratedPlan
	plans []*domain.GeneratedPlan
	calls int
	// lastParams records what the provider was asked to generate from.
	lastParams domain.TargetParams
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, params domain.TargetParams, corrections []string) (*domain.GeneratedPlan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastParams = params
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return nil, err
	}
	if len(p.plans) > 0 {
		plan := p.plans[0]
		p.plans = p.plans[1:]
		return plan, nil
	}
	return p.plan, nil
}

type fakeRenderer struct {
	errs  []error
	calls int
}

func (r *fakeRenderer) Render(ctx context.Context, order *domain.Order, plan *domain.GeneratedPlan) ([]byte, string, error) {
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return nil, "", err
	}
	return []byte("artifact"), "text/html", nil
}

type fakeStore struct {
	uploads int
	err     error
}

func (s *fakeStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	s.uploads++
	if s.err != nil {
		return "", s.err
	}
	return "gs://bucket/" + objectName, nil
}

func (s *fakeStore) SignURL(ref string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + ref, nil
}

type fakeMailer struct {
	errs  []error
	calls int
}

func (m *fakeMailer) SendArtifact(ctx context.Context, recipient string, attachment []byte, contentType, recoveryURL string) error {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return err
	}
	return nil
}

type fakeRefundClient struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (c *fakeRefundClient) Refund(ctx context.Context, transactionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, transactionID)
	return nil
}

func noSleep(time.Duration) {}

func noWait(context.Context, time.Duration) error { return nil }

func validPlan(params domain.TargetParams) *domain.GeneratedPlan {
	plan := &domain.GeneratedPlan{}
	for i := 0; i < params.SectionCount; i++ {
		section := domain.PlanSection{Title: "section", Total: params.UnitCeiling - 1}
		for j := 0; j < params.ItemsPerSection; j++ {
			section.Items = append(section.Items, "item")
		}
		plan.Sections = append(plan.Sections, section)
	}
	return plan
}

func testParams() domain.TargetParams {
	return domain.TargetParams{
		Goal:            "maintain",
		SectionCount:    7,
		ItemsPerSection: 3,
		UnitCeiling:     2000,
	}
}

func newTestTicketUsecase(repo domain.TicketRepository) *DefaultTicketUsecase {
	return NewDefaultTicketUsecase(repo, nil, "", 4*time.Hour, nil)
}
