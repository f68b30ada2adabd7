package domain

import "time"

type OrderStatus string

const (
	StatusProcessing OrderStatus = "PROCESSING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusFailed     OrderStatus = "FAILED"
	StatusRefunded   OrderStatus = "REFUNDED"
)

// OrderStage tracks pipeline progress inside PROCESSING so a crashed
// worker can resume from persisted state instead of in-memory context.
type OrderStage string

const (
	StageReceived   OrderStage = "RECEIVED"
	StageInputReady OrderStage = "INPUT_READY"
	StageGenerated  OrderStage = "GENERATED"
	StageRendered   OrderStage = "RENDERED"
	StageStored     OrderStage = "STORED"
	StageNotified   OrderStage = "NOTIFIED"
)

type Order struct {
	ID                 string
	TransactionID      string
	Identity           string
	NormalizedIdentity string
	Status             OrderStatus
	Stage              OrderStage
	// ArtifactRef is the permanent object path, never a signed URL.
	ArtifactRef       string
	TargetParamsJSON  string
	PaymentMethod     string
	Refundable        bool
	RecoveryToken     string
	CompensationCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	NotifiedAt        *time.Time
}
