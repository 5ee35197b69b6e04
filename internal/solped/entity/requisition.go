package entity

import "time"

// Requisition is a purchase requisition ("SolPed") tracked through the
// approval workflow. Its ID comes from the per-year sequence allocator and is
// never reused, even after deletion.
type Requisition struct {
	ID       string `json:"id" gorm:"primaryKey;size:20"` // SP-<year>-<6 digits>
	Status   string `json:"status" gorm:"size:32;not null;default:DRAFT;index"`
	Priority string `json:"priority" gorm:"size:10;not null;default:MEDIUM"`

	CreatedByID string `json:"created_by_id" gorm:"size:32;not null;index"`
	CreatedBy   *User  `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`

	// Requester-owned fields, writable only in DRAFT.
	AreaID        *string    `json:"area_id" gorm:"size:32"`
	Area          *Area      `json:"area,omitempty" gorm:"foreignKey:AreaID"`
	NeededBy      *time.Time `json:"needed_by"`
	WorkOrder     string     `json:"work_order" gorm:"size:100"`
	Justification string     `json:"justification" gorm:"type:text"`
	Observations  string     `json:"observations" gorm:"type:text"`

	// Administration-owned fields, writable once past DRAFT.
	Supplier          string     `json:"supplier" gorm:"size:200"`
	SupplierContact   string     `json:"supplier_contact" gorm:"size:200"`
	Conditions        string     `json:"conditions" gorm:"type:text"`
	TotalPrice        *float64   `json:"total_price" gorm:"type:decimal(15,2)"`
	Currency          string     `json:"currency" gorm:"size:10"`
	QuotationDate     *time.Time `json:"quotation_date"`
	PurchaseOrder     string     `json:"purchase_order" gorm:"size:100"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	ReceivedDate      *time.Time `json:"received_date"`

	// Set on transition into REJECTED_VALIDATION, cleared on the next
	// transition away.
	RejectionReason *string `json:"rejection_reason" gorm:"type:text"`

	Items   []RequisitionItem `json:"items,omitempty" gorm:"foreignKey:RequisitionID"`
	History []HistoryRecord   `json:"history,omitempty" gorm:"foreignKey:RequisitionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Requisition) TableName() string {
	return "requisitions"
}

// Statuses. Serialized forms are case-sensitive and fixed.
const (
	StatusDraft               = "DRAFT"
	StatusSubmittedToAdmin    = "SUBMITTED_TO_ADMIN"
	StatusInReviewQuoting     = "IN_REVIEW_QUOTING"
	StatusPendingValidation   = "PENDING_PRICE_VALIDATION"
	StatusRejectedValidation  = "REJECTED_VALIDATION"
	StatusApprovedForPurchase = "APPROVED_FOR_PURCHASE"
	StatusOrderIssued         = "PURCHASE_ORDER_ISSUED"
	StatusPurchased           = "PURCHASED"
	StatusReceivedDelivered   = "RECEIVED_DELIVERED"
	StatusCancelled           = "CANCELLED"
)

// AllStatuses in lifecycle order.
var AllStatuses = []string{
	StatusDraft,
	StatusSubmittedToAdmin,
	StatusInReviewQuoting,
	StatusPendingValidation,
	StatusRejectedValidation,
	StatusApprovedForPurchase,
	StatusOrderIssued,
	StatusPurchased,
	StatusReceivedDelivered,
	StatusCancelled,
}

// Priorities
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// RequisitionItem is one line of a requisition. The item list is always
// replaced as a whole, never patched per row.
type RequisitionItem struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	Quantity      float64  `json:"quantity" gorm:"type:decimal(12,2);not null"`
	UnitID        *string  `json:"unit_id" gorm:"size:32"`
	Unit          *Unit    `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Name          string   `json:"name" gorm:"size:200;not null"`
	Specification string   `json:"specification" gorm:"type:text"`
	Brand         string   `json:"brand" gorm:"size:100"`
	SuggestedLink string   `json:"suggested_link" gorm:"size:500"`
	Observations  string   `json:"observations" gorm:"type:text"`
	UnitPrice     *float64 `json:"unit_price" gorm:"type:decimal(12,4)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (RequisitionItem) TableName() string {
	return "requisition_items"
}

// HistoryRecord is one append-only audit entry. A requisition gets one on
// creation and one per status transition; records are never mutated.
type HistoryRecord struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	RequisitionID string `json:"requisition_id" gorm:"size:20;not null;index"`

	UserID         string  `json:"user_id" gorm:"size:32;not null"`
	User           *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	PreviousStatus *string `json:"previous_status" gorm:"size:32"`
	NewStatus      string  `json:"new_status" gorm:"size:32;not null"`
	Action         string  `json:"action" gorm:"size:200;not null"`
	Notes          string  `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (HistoryRecord) TableName() string {
	return "requisition_history"
}

// Sequence is the per-year counter backing requisition IDs. The row is only
// ever advanced with an atomic upsert, never read-then-written.
type Sequence struct {
	Year       int `json:"year" gorm:"primaryKey"`
	LastNumber int `json:"last_number" gorm:"not null;default:0"`
}

func (Sequence) TableName() string {
	return "requisition_sequences"
}
