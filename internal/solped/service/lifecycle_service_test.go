package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/bitforja/solped/internal/solped/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLifecycleService(db *gorm.DB) *LifecycleService {
	repos := repository.NewRepositories(db)
	return NewLifecycleService(repos.Requisition, repos.Sequence, repos.User, zap.NewNop())
}

func actorFor(user *entity.User) engine.Actor {
	return engine.Actor{ID: user.ID, Role: user.Role}
}

func draftRequisition(t *testing.T, svc *LifecycleService, actor engine.Actor) *entity.Requisition {
	t.Helper()
	req, err := svc.Create(context.Background(), actor, &CreateRequisitionRequest{
		Justification: "Replacement bearings for line 2",
		Items: []ItemInput{
			{Quantity: 4, Name: "Bearing 6204-2RS"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req
}

func TestCreateDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)

	req := draftRequisition(t, svc, actorFor(requester))

	if req.Status != entity.StatusDraft {
		t.Errorf("status = %s, want %s", req.Status, entity.StatusDraft)
	}
	if len(req.ID) != len("SP-2026-000001") {
		t.Errorf("unexpected id format: %s", req.ID)
	}
	if req.Priority != entity.PriorityMedium {
		t.Errorf("priority = %s, want default %s", req.Priority, entity.PriorityMedium)
	}
	if len(req.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(req.Items))
	}
	if len(req.History) != 1 {
		t.Fatalf("history = %d, want 1", len(req.History))
	}
	if req.History[0].NewStatus != entity.StatusDraft {
		t.Errorf("history status = %s, want %s", req.History[0].NewStatus, entity.StatusDraft)
	}
}

func TestCreateRequiresItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)

	_, err := svc.Create(context.Background(), actorFor(requester), &CreateRequisitionRequest{
		Justification: "no items",
	})
	var validationErr *engine.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFullLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	admin := testutil.SeedTestUser(t, db, "Admin", entity.RoleAdministration)
	validator := testutil.SeedTestUser(t, db, "Validator", entity.RoleValidator)

	req := draftRequisition(t, svc, actorFor(requester))

	steps := []struct {
		actor  engine.Actor
		target string
	}{
		{actorFor(requester), entity.StatusSubmittedToAdmin},
		{actorFor(admin), entity.StatusInReviewQuoting},
		{actorFor(admin), entity.StatusPendingValidation},
		{actorFor(validator), entity.StatusApprovedForPurchase},
		{actorFor(admin), entity.StatusOrderIssued},
		{actorFor(admin), entity.StatusPurchased},
		{actorFor(admin), entity.StatusReceivedDelivered},
	}

	current := req
	for _, step := range steps {
		updated, _, err := svc.ChangeStatus(ctx, step.actor, current.ID, step.target, "")
		if err != nil {
			t.Fatalf("transition %s -> %s: %v", current.Status, step.target, err)
		}
		if updated.Status != step.target {
			t.Fatalf("status = %s, want %s", updated.Status, step.target)
		}
		current = updated
	}

	// Creation plus seven transitions.
	if len(current.History) != 8 {
		t.Errorf("history = %d, want 8", len(current.History))
	}
}

func TestSubmitNotifiesAdministration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	adminA := testutil.SeedTestUser(t, db, "AdminA", entity.RoleAdministration)
	adminB := testutil.SeedTestUser(t, db, "AdminB", entity.RoleAdministration)
	inactive := testutil.SeedTestUser(t, db, "AdminGone", entity.RoleAdministration)
	db.Model(inactive).Update("active", false)

	req := draftRequisition(t, svc, actorFor(requester))

	_, plan, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, "")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	if len(plan) != 2 {
		t.Fatalf("plan = %d intents, want 2", len(plan))
	}
	recipients := map[string]bool{}
	for _, intent := range plan {
		recipients[intent.ForUserID] = true
		if intent.Category != entity.NotificationNew {
			t.Errorf("category = %s, want %s", intent.Category, entity.NotificationNew)
		}
	}
	if !recipients[adminA.ID] || !recipients[adminB.ID] {
		t.Errorf("plan misses an active admin: %v", recipients)
	}
	if recipients[inactive.ID] {
		t.Errorf("plan includes inactive admin")
	}
}

func TestStatusChangeSkipsCreatorAsActor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	// Supervisor creates and cancels their own draft: no notification.
	supervisor := testutil.SeedTestUser(t, db, "Supervisor", entity.RoleSupervisor)
	req := draftRequisition(t, svc, actorFor(supervisor))

	_, plan, err := svc.ChangeStatus(ctx, actorFor(supervisor), req.ID, entity.StatusCancelled, "")
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("plan = %d intents, want 0 when actor is creator", len(plan))
	}
}

func TestRejectionRequiresNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	admin := testutil.SeedTestUser(t, db, "Admin", entity.RoleAdministration)
	validator := testutil.SeedTestUser(t, db, "Validator", entity.RoleValidator)

	req := draftRequisition(t, svc, actorFor(requester))
	for _, step := range []struct {
		actor  engine.Actor
		target string
	}{
		{actorFor(requester), entity.StatusSubmittedToAdmin},
		{actorFor(admin), entity.StatusInReviewQuoting},
		{actorFor(admin), entity.StatusPendingValidation},
	} {
		if _, _, err := svc.ChangeStatus(ctx, step.actor, req.ID, step.target, ""); err != nil {
			t.Fatalf("setup transition to %s: %v", step.target, err)
		}
	}

	_, _, err := svc.ChangeStatus(ctx, actorFor(validator), req.ID, entity.StatusRejectedValidation, "")
	var validationErr *engine.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("reject without note: err = %v, want ValidationError", err)
	}

	rejected, _, err := svc.ChangeStatus(ctx, actorFor(validator), req.ID, entity.StatusRejectedValidation, "price exceeds budget")
	if err != nil {
		t.Fatalf("reject with note: %v", err)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "price exceeds budget" {
		t.Errorf("rejection reason not stored: %v", rejected.RejectionReason)
	}

	// Returning to review clears the stored reason.
	reopened, _, err := svc.ChangeStatus(ctx, actorFor(admin), req.ID, entity.StatusInReviewQuoting, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.RejectionReason != nil {
		t.Errorf("rejection reason = %v, want cleared", *reopened.RejectionReason)
	}
}

func TestInvalidTransitionCarriesLegalSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	req := draftRequisition(t, svc, actorFor(requester))

	_, _, err := svc.ChangeStatus(context.Background(), actorFor(requester), req.ID, entity.StatusApprovedForPurchase, "")
	var transitionErr *engine.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if transitionErr.From != entity.StatusDraft {
		t.Errorf("From = %s, want %s", transitionErr.From, entity.StatusDraft)
	}
	want := map[string]bool{entity.StatusSubmittedToAdmin: true, entity.StatusCancelled: true}
	if len(transitionErr.Legal) != len(want) {
		t.Fatalf("Legal = %v", transitionErr.Legal)
	}
	for _, s := range transitionErr.Legal {
		if !want[s] {
			t.Errorf("unexpected legal target %s", s)
		}
	}
}

func TestConcurrentStatusChangeConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	req := draftRequisition(t, svc, actorFor(requester))

	// A stale writer believes the requisition is still in DRAFT after another
	// writer already moved it on.
	if _, _, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, ""); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	err := repos.Requisition.UpdateStatus(ctx, req.ID, entity.StatusDraft, entity.StatusCancelled, nil, &entity.HistoryRecord{
		ID:            "stale-history-record-0000000000",
		RequisitionID: req.ID,
		UserID:        requester.ID,
		NewStatus:     entity.StatusCancelled,
		Action:        "stale cancel",
	})
	if !errors.Is(err, engine.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestStaleEditConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	req := draftRequisition(t, svc, actorFor(requester))

	// The requisition moves on while three writers still hold the DRAFT
	// snapshot their permission check ran against. Every write conditioned on
	// that snapshot must miss and report Conflict.
	if _, _, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	patch := map[string]interface{}{"justification": "stale patch"}
	if err := repos.Requisition.UpdateFields(ctx, req.ID, entity.StatusDraft, patch); !errors.Is(err, engine.ErrConflict) {
		t.Errorf("UpdateFields: err = %v, want ErrConflict", err)
	}

	items := []entity.RequisitionItem{{
		ID:            "stale-item-00000000000000000000",
		RequisitionID: req.ID,
		Quantity:      1,
		Name:          "Bearing 6204-2RS",
		SortOrder:     1,
	}}
	if err := repos.Requisition.ReplaceItems(ctx, req.ID, entity.StatusDraft, items); !errors.Is(err, engine.ErrConflict) {
		t.Errorf("ReplaceItems: err = %v, want ErrConflict", err)
	}

	if err := repos.Requisition.Delete(ctx, req.ID, entity.StatusDraft); !errors.Is(err, engine.ErrConflict) {
		t.Errorf("Delete: err = %v, want ErrConflict", err)
	}

	// The committed state survived all three stale attempts untouched.
	after, err := repos.Requisition.FindByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if after.Status != entity.StatusSubmittedToAdmin {
		t.Errorf("status = %s, want %s", after.Status, entity.StatusSubmittedToAdmin)
	}
	if after.Justification == "stale patch" {
		t.Errorf("stale patch was applied")
	}
	if len(after.Items) != 1 || after.Items[0].Name != "Bearing 6204-2RS" {
		t.Errorf("items mutated by stale writer: %+v", after.Items)
	}
}

func TestRacingStatusChangesOneWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	req := draftRequisition(t, svc, actorFor(requester))

	// Two callers race the same draft toward different targets. Exactly one
	// transition commits; the loser sees either Conflict (its conditional
	// update missed) or an invalid transition (it reloaded after the winner
	// committed).
	targets := []string{entity.StatusSubmittedToAdmin, entity.StatusCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			_, _, errs[i] = svc.ChangeStatus(ctx, actorFor(requester), req.ID, target, "")
		}(i, target)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var invalidErr *engine.InvalidTransitionError
		if !errors.Is(err, engine.ErrConflict) && !errors.As(err, &invalidErr) {
			t.Errorf("loser %s: err = %v, want ErrConflict or InvalidTransitionError", targets[i], err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}

	after, err := svc.Get(ctx, actorFor(requester), req.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.Status != entity.StatusSubmittedToAdmin && after.Status != entity.StatusCancelled {
		t.Errorf("status = %s, want one of the racing targets", after.Status)
	}
	// Creation plus exactly one committed transition.
	if len(after.History) != 2 {
		t.Errorf("history = %d, want 2", len(after.History))
	}
}

func TestEditGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	other := testutil.SeedTestUser(t, db, "Other", entity.RoleRequester)
	admin := testutil.SeedTestUser(t, db, "Admin", entity.RoleAdministration)
	validator := testutil.SeedTestUser(t, db, "Validator", entity.RoleValidator)

	req := draftRequisition(t, svc, actorFor(requester))

	justification := "updated justification"
	supplier := "ACME Industrial"
	updated, err := svc.Edit(ctx, actorFor(requester), req.ID, &UpdateRequisitionRequest{
		Justification: &justification,
		Supplier:      &supplier, // outside the requester group, silently dropped
	})
	if err != nil {
		t.Fatalf("requester edit: %v", err)
	}
	if updated.Justification != justification {
		t.Errorf("justification not applied")
	}
	if updated.Supplier != "" {
		t.Errorf("supplier = %q, want admin-only field ignored", updated.Supplier)
	}

	if _, err := svc.Edit(ctx, actorFor(other), req.ID, &UpdateRequisitionRequest{Justification: &justification}); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("other requester edit: err = %v, want ErrForbidden", err)
	}

	// Admins cannot touch drafts; validators can never edit.
	if _, err := svc.Edit(ctx, actorFor(admin), req.ID, &UpdateRequisitionRequest{Supplier: &supplier}); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("admin edit draft: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Edit(ctx, actorFor(validator), req.ID, &UpdateRequisitionRequest{Supplier: &supplier}); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("validator edit: err = %v, want ErrForbidden", err)
	}

	// After submission the groups swap: admin may write, requester may not.
	if _, _, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	afterSubmit, err := svc.Edit(ctx, actorFor(admin), req.ID, &UpdateRequisitionRequest{Supplier: &supplier})
	if err != nil {
		t.Fatalf("admin edit after submit: %v", err)
	}
	if afterSubmit.Supplier != supplier {
		t.Errorf("supplier not applied after submit")
	}
	if _, err := svc.Edit(ctx, actorFor(requester), req.ID, &UpdateRequisitionRequest{Justification: &justification}); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("requester edit after submit: err = %v, want ErrForbidden", err)
	}
}

func TestReplaceItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	req := draftRequisition(t, svc, actorFor(requester))

	updated, err := svc.ReplaceItems(ctx, actorFor(requester), req.ID, []ItemInput{
		{Quantity: 2, Name: "Bearing 6204-2RS"},
		{Quantity: 1, Name: "Grease cartridge"},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(updated.Items))
	}
	if updated.Items[0].SortOrder != 1 || updated.Items[1].SortOrder != 2 {
		t.Errorf("sort order not preserved: %d, %d", updated.Items[0].SortOrder, updated.Items[1].SortOrder)
	}

	if _, err := svc.ReplaceItems(ctx, actorFor(requester), req.ID, nil); err == nil {
		t.Errorf("empty item list accepted")
	}
}

func TestDeleteRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	supervisor := testutil.SeedTestUser(t, db, "Supervisor", entity.RoleSupervisor)

	// Requester may delete their own draft.
	req := draftRequisition(t, svc, actorFor(requester))
	if err := svc.Delete(ctx, actorFor(requester), req.ID); err != nil {
		t.Fatalf("delete own draft: %v", err)
	}
	if _, err := svc.Get(ctx, actorFor(requester), req.ID); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("deleted requisition still found: %v", err)
	}

	// Once submitted, only the supervisor may delete.
	req = draftRequisition(t, svc, actorFor(requester))
	if _, _, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Delete(ctx, actorFor(requester), req.ID); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("requester delete after submit: err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, actorFor(supervisor), req.ID); err != nil {
		t.Errorf("supervisor delete: %v", err)
	}
}

func TestRequesterScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	alice := testutil.SeedTestUser(t, db, "Alice", entity.RoleRequester)
	bob := testutil.SeedTestUser(t, db, "Bob", entity.RoleRequester)
	admin := testutil.SeedTestUser(t, db, "Admin", entity.RoleAdministration)

	aliceReq := draftRequisition(t, svc, actorFor(alice))
	draftRequisition(t, svc, actorFor(bob))

	if _, err := svc.Get(ctx, actorFor(bob), aliceReq.ID); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("bob reads alice's requisition: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, actorFor(admin), aliceReq.ID); err != nil {
		t.Errorf("admin read: %v", err)
	}

	mine, total, err := svc.List(ctx, actorFor(alice), 1, 20, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(mine) != 1 {
		t.Errorf("alice sees %d requisitions, want 1", total)
	}

	_, allTotal, err := svc.List(ctx, actorFor(admin), 1, 20, nil)
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if allTotal != 2 {
		t.Errorf("admin sees %d requisitions, want 2", allTotal)
	}
}

func TestStatistics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLifecycleService(db)
	ctx := context.Background()

	requester := testutil.SeedTestUser(t, db, "Requester", entity.RoleRequester)
	supervisor := testutil.SeedTestUser(t, db, "Supervisor", entity.RoleSupervisor)

	draftRequisition(t, svc, actorFor(requester))
	req := draftRequisition(t, svc, actorFor(requester))
	if _, _, err := svc.ChangeStatus(ctx, actorFor(requester), req.ID, entity.StatusSubmittedToAdmin, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	counts, err := svc.Statistics(ctx, actorFor(supervisor))
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if counts[entity.StatusDraft] != 1 {
		t.Errorf("draft count = %d, want 1", counts[entity.StatusDraft])
	}
	if counts[entity.StatusSubmittedToAdmin] != 1 {
		t.Errorf("submitted count = %d, want 1", counts[entity.StatusSubmittedToAdmin])
	}
	// Every status appears in the map even when zero.
	if _, ok := counts[entity.StatusCancelled]; !ok {
		t.Errorf("cancelled missing from counts")
	}
}
