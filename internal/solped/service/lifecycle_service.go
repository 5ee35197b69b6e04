package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService is the single entry point for every mutating requisition
// operation. It consults the engine (transition authority, edit guard) before
// touching storage, persists atomically, and hands the notification fan-out
// plan back to the caller for dispatch.
type LifecycleService struct {
	reqRepo  *repository.RequisitionRepository
	seqRepo  *repository.SequenceRepository
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewLifecycleService(reqRepo *repository.RequisitionRepository, seqRepo *repository.SequenceRepository, userRepo *repository.UserRepository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		reqRepo:  reqRepo,
		seqRepo:  seqRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// ItemInput is one requisition line in a create or replace request.
type ItemInput struct {
	Quantity      float64  `json:"quantity" binding:"required"`
	UnitID        *string  `json:"unit_id"`
	Name          string   `json:"name" binding:"required"`
	Specification string   `json:"specification"`
	Brand         string   `json:"brand"`
	SuggestedLink string   `json:"suggested_link"`
	Observations  string   `json:"observations"`
	UnitPrice     *float64 `json:"unit_price"`
}

// CreateRequisitionRequest carries the requester-owned fields plus the
// initial item list.
type CreateRequisitionRequest struct {
	Priority      string      `json:"priority"`
	AreaID        *string     `json:"area_id"`
	NeededBy      *time.Time  `json:"needed_by"`
	WorkOrder     string      `json:"work_order"`
	Justification string      `json:"justification"`
	Observations  string      `json:"observations"`
	Items         []ItemInput `json:"items"`
}

// Create drafts a new requisition. The identifier, the row, its items and the
// first history record are persisted as one atomic unit. No notification is
// generated on creation.
func (s *LifecycleService) Create(ctx context.Context, actor engine.Actor, req *CreateRequisitionRequest) (*entity.Requisition, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	id, err := s.seqRepo.NextID(ctx, time.Now().Year())
	if err != nil {
		return nil, err
	}

	requisition := &entity.Requisition{
		ID:            id,
		Status:        entity.StatusDraft,
		Priority:      priority,
		CreatedByID:   actor.ID,
		AreaID:        req.AreaID,
		NeededBy:      req.NeededBy,
		WorkOrder:     req.WorkOrder,
		Justification: req.Justification,
		Observations:  req.Observations,
		Items:         buildItems(id, req.Items),
		History: []entity.HistoryRecord{{
			ID:            uuid.New().String()[:32],
			RequisitionID: id,
			UserID:        actor.ID,
			NewStatus:     entity.StatusDraft,
			Action:        "Requisition created",
		}},
	}

	if err := s.reqRepo.Create(ctx, requisition); err != nil {
		return nil, fmt.Errorf("create requisition: %w", err)
	}

	s.logger.Info("requisition created",
		zap.String("id", id),
		zap.String("created_by", actor.ID))

	return s.reqRepo.FindByID(ctx, id)
}

// ChangeStatus performs one lifecycle transition. On success it returns the
// updated requisition and the notification fan-out plan; delivery of the plan
// is the notification service's job.
func (s *LifecycleService) ChangeStatus(ctx context.Context, actor engine.Actor, id, target, notes string) (*entity.Requisition, []engine.NotificationIntent, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !engine.CanTransition(req.Status, actor.Role, target) {
		return nil, nil, &engine.InvalidTransitionError{
			From:  req.Status,
			To:    target,
			Role:  actor.Role,
			Legal: engine.NextStatuses(req.Status, actor.Role),
		}
	}
	if engine.RequiresRejectionNote(target) && notes == "" {
		return nil, nil, &engine.ValidationError{Reason: "a rejection reason is required"}
	}

	var rejectionReason *string
	if target == entity.StatusRejectedValidation {
		rejectionReason = &notes
	}

	previous := req.Status
	record := &entity.HistoryRecord{
		ID:             uuid.New().String()[:32],
		RequisitionID:  id,
		UserID:         actor.ID,
		PreviousStatus: &previous,
		NewStatus:      target,
		Action:         fmt.Sprintf("Status changed from %s to %s", previous, target),
		Notes:          notes,
	}

	if err := s.reqRepo.UpdateStatus(ctx, id, previous, target, rejectionReason, record); err != nil {
		return nil, nil, err
	}

	plan, err := s.planFanout(ctx, req, actor, target)
	if err != nil {
		// The transition is already committed; a failed audience lookup must
		// not roll it back. Surface the entity with an empty plan.
		s.logger.Error("fan-out planning failed",
			zap.String("id", id),
			zap.Error(err))
		plan = nil
	}

	s.logger.Info("requisition status changed",
		zap.String("id", id),
		zap.String("from", previous),
		zap.String("to", target),
		zap.String("actor", actor.ID))

	updated, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, plan, nil
}

func (s *LifecycleService) planFanout(ctx context.Context, req *entity.Requisition, actor engine.Actor, target string) ([]engine.NotificationIntent, error) {
	var admins, validators []string
	switch engine.FanoutAudience(target) {
	case engine.AudienceAdministration:
		users, err := s.userRepo.FindActiveByRole(ctx, entity.RoleAdministration)
		if err != nil {
			return nil, err
		}
		admins = userIDs(users)
	case engine.AudienceValidators:
		users, err := s.userRepo.FindActiveByRole(ctx, entity.RoleValidator)
		if err != nil {
			return nil, err
		}
		validators = userIDs(users)
	}
	return engine.PlanFanout(req.ID, req.CreatedByID, actor.ID, target, admins, validators), nil
}

// UpdateRequisitionRequest is a field patch. Fields outside the caller's
// writable group are silently ignored so unrelated UI submissions do not fail
// outright.
type UpdateRequisitionRequest struct {
	// Requester group
	Priority      *string    `json:"priority"`
	AreaID        *string    `json:"area_id"`
	NeededBy      *time.Time `json:"needed_by"`
	WorkOrder     *string    `json:"work_order"`
	Justification *string    `json:"justification"`
	Observations  *string    `json:"observations"`

	// Administration group
	Supplier          *string    `json:"supplier"`
	SupplierContact   *string    `json:"supplier_contact"`
	Conditions        *string    `json:"conditions"`
	TotalPrice        *float64   `json:"total_price"`
	Currency          *string    `json:"currency"`
	QuotationDate     *time.Time `json:"quotation_date"`
	PurchaseOrder     *string    `json:"purchase_order"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	ReceivedDate      *time.Time `json:"received_date"`
}

// Edit applies the patch, restricted to the field groups the edit guard
// grants the actor on this requisition.
func (s *LifecycleService) Edit(ctx context.Context, actor engine.Actor, id string, patch *UpdateRequisitionRequest) (*entity.Requisition, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	groups := engine.EditableGroups(req, actor)
	if len(groups) == 0 {
		return nil, engine.ErrForbidden
	}

	columns := map[string]interface{}{}
	for _, group := range groups {
		switch group {
		case engine.FieldGroupRequester:
			if patch.Priority != nil {
				if err := validatePriority(*patch.Priority); err != nil {
					return nil, err
				}
				columns["priority"] = *patch.Priority
			}
			if patch.AreaID != nil {
				columns["area_id"] = *patch.AreaID
			}
			if patch.NeededBy != nil {
				columns["needed_by"] = *patch.NeededBy
			}
			if patch.WorkOrder != nil {
				columns["work_order"] = *patch.WorkOrder
			}
			if patch.Justification != nil {
				columns["justification"] = *patch.Justification
			}
			if patch.Observations != nil {
				columns["observations"] = *patch.Observations
			}
		case engine.FieldGroupAdministration:
			if patch.Supplier != nil {
				columns["supplier"] = *patch.Supplier
			}
			if patch.SupplierContact != nil {
				columns["supplier_contact"] = *patch.SupplierContact
			}
			if patch.Conditions != nil {
				columns["conditions"] = *patch.Conditions
			}
			if patch.TotalPrice != nil {
				if *patch.TotalPrice < 0 {
					return nil, &engine.ValidationError{Reason: "total price cannot be negative"}
				}
				columns["total_price"] = *patch.TotalPrice
			}
			if patch.Currency != nil {
				columns["currency"] = *patch.Currency
			}
			if patch.QuotationDate != nil {
				columns["quotation_date"] = *patch.QuotationDate
			}
			if patch.PurchaseOrder != nil {
				columns["purchase_order"] = *patch.PurchaseOrder
			}
			if patch.PurchaseDate != nil {
				columns["purchase_date"] = *patch.PurchaseDate
			}
			if patch.EstimatedDelivery != nil {
				columns["estimated_delivery"] = *patch.EstimatedDelivery
			}
			if patch.ReceivedDate != nil {
				columns["received_date"] = *patch.ReceivedDate
			}
		}
	}

	// Conditioned on the status the guard just evaluated: if a transition
	// lands in between, the patch conflicts instead of writing onto the
	// wrong stage.
	if err := s.reqRepo.UpdateFields(ctx, id, req.Status, columns); err != nil {
		return nil, err
	}
	return s.reqRepo.FindByID(ctx, id)
}

// ReplaceItems swaps the whole item list under the same permission rule as
// field edits.
func (s *LifecycleService) ReplaceItems(ctx context.Context, actor engine.Actor, id string, items []ItemInput) (*entity.Requisition, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !engine.CanEdit(req, actor) {
		return nil, engine.ErrForbidden
	}

	if err := s.reqRepo.ReplaceItems(ctx, id, req.Status, buildItems(id, items)); err != nil {
		return nil, err
	}
	return s.reqRepo.FindByID(ctx, id)
}

// Delete purges a requisition under the narrow deletion rule. This is a hard
// delete: history and children do not survive it.
func (s *LifecycleService) Delete(ctx context.Context, actor engine.Actor, id string) error {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !engine.CanDelete(req, actor) {
		return engine.ErrForbidden
	}
	if err := s.reqRepo.Delete(ctx, id, req.Status); err != nil {
		return err
	}
	s.logger.Info("requisition deleted",
		zap.String("id", id),
		zap.String("actor", actor.ID),
		zap.String("status", req.Status))
	return nil
}

// Get loads one requisition; requesters only see their own.
func (s *LifecycleService) Get(ctx context.Context, actor engine.Actor, id string) (*entity.Requisition, error) {
	req, err := s.reqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RoleRequester && req.CreatedByID != actor.ID {
		return nil, engine.ErrForbidden
	}
	return req, nil
}

// List pages through requisitions, scoped to the actor's own documents for
// requesters.
func (s *LifecycleService) List(ctx context.Context, actor engine.Actor, page, pageSize int, filters map[string]string) ([]entity.Requisition, int64, error) {
	scope := ""
	if actor.Role == entity.RoleRequester {
		scope = actor.ID
	}
	return s.reqRepo.FindAll(ctx, page, pageSize, filters, scope)
}

// Statistics returns requisition counts per status.
func (s *LifecycleService) Statistics(ctx context.Context, actor engine.Actor) (map[string]int64, error) {
	scope := ""
	if actor.Role == entity.RoleRequester {
		scope = actor.ID
	}
	return s.reqRepo.CountByStatus(ctx, scope)
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return &engine.ValidationError{Reason: "at least one item is required"}
	}
	for i, item := range items {
		if item.Name == "" {
			return &engine.ValidationError{Reason: fmt.Sprintf("item %d: name is required", i+1)}
		}
		if item.Quantity <= 0 {
			return &engine.ValidationError{Reason: fmt.Sprintf("item %d: quantity must be positive", i+1)}
		}
		if item.UnitPrice != nil && *item.UnitPrice < 0 {
			return &engine.ValidationError{Reason: fmt.Sprintf("item %d: unit price cannot be negative", i+1)}
		}
	}
	return nil
}

func validatePriority(priority string) error {
	switch priority {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh:
		return nil
	}
	return &engine.ValidationError{Reason: "priority must be LOW, MEDIUM or HIGH"}
}

func buildItems(requisitionID string, inputs []ItemInput) []entity.RequisitionItem {
	items := make([]entity.RequisitionItem, 0, len(inputs))
	for i, in := range inputs {
		items = append(items, entity.RequisitionItem{
			ID:            uuid.New().String()[:32],
			RequisitionID: requisitionID,
			Quantity:      in.Quantity,
			UnitID:        in.UnitID,
			Name:          in.Name,
			Specification: in.Specification,
			Brand:         in.Brand,
			SuggestedLink: in.SuggestedLink,
			Observations:  in.Observations,
			UnitPrice:     in.UnitPrice,
			SortOrder:     i + 1,
		})
	}
	return items
}

func userIDs(users []entity.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
