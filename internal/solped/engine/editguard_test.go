package engine

import (
	"testing"

	"github.com/bitforja/solped/internal/solped/entity"
)

func reqWith(status, creatorID string) *entity.Requisition {
	return &entity.Requisition{ID: "SP-2025-000001", Status: status, CreatedByID: creatorID}
}

func TestEditableGroupsRequester(t *testing.T) {
	owner := Actor{ID: "u1", Role: entity.RoleRequester}
	other := Actor{ID: "u2", Role: entity.RoleRequester}

	groups := EditableGroups(reqWith(entity.StatusDraft, "u1"), owner)
	if len(groups) != 1 || groups[0] != FieldGroupRequester {
		t.Fatalf("requester on own draft: got %v, want [requester]", groups)
	}
	if CanEdit(reqWith(entity.StatusDraft, "u1"), other) {
		t.Error("requester must not edit another user's draft")
	}
	// Past DRAFT the requester loses write access even on their own document.
	for _, status := range entity.AllStatuses {
		if status == entity.StatusDraft {
			continue
		}
		if CanEdit(reqWith(status, "u1"), owner) {
			t.Errorf("requester may edit own requisition in %s", status)
		}
	}
}

func TestEditableGroupsAdministration(t *testing.T) {
	admin := Actor{ID: "a1", Role: entity.RoleAdministration}

	editable := map[string]bool{
		entity.StatusSubmittedToAdmin:    true,
		entity.StatusInReviewQuoting:     true,
		entity.StatusPendingValidation:   true,
		entity.StatusRejectedValidation:  true,
		entity.StatusApprovedForPurchase: true,
		entity.StatusOrderIssued:         true,
		entity.StatusPurchased:           true,
	}
	for _, status := range entity.AllStatuses {
		groups := EditableGroups(reqWith(status, "u1"), admin)
		if editable[status] {
			if len(groups) != 1 || groups[0] != FieldGroupAdministration {
				t.Errorf("administration in %s: got %v, want [administration]", status, groups)
			}
		} else if len(groups) != 0 {
			t.Errorf("administration in %s: got %v, want no access", status, groups)
		}
	}
}

func TestValidatorNeverEdits(t *testing.T) {
	validator := Actor{ID: "v1", Role: entity.RoleValidator}
	for _, status := range entity.AllStatuses {
		if CanEdit(reqWith(status, "v1"), validator) {
			t.Errorf("validator may edit in %s", status)
		}
	}
}

func TestSupervisorEditsBothGroupsAnywhere(t *testing.T) {
	sup := Actor{ID: "s1", Role: entity.RoleSupervisor}
	for _, status := range entity.AllStatuses {
		req := reqWith(status, "u1")
		if !CanWriteGroup(req, sup, FieldGroupRequester) || !CanWriteGroup(req, sup, FieldGroupAdministration) {
			t.Errorf("supervisor in %s: got %v, want both groups", status, EditableGroups(req, sup))
		}
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		name   string
		status string
		actor  Actor
		want   bool
	}{
		{"requester own draft", entity.StatusDraft, Actor{ID: "u1", Role: entity.RoleRequester}, true},
		{"requester other draft", entity.StatusDraft, Actor{ID: "u2", Role: entity.RoleRequester}, false},
		{"requester own submitted", entity.StatusSubmittedToAdmin, Actor{ID: "u1", Role: entity.RoleRequester}, false},
		{"administration", entity.StatusDraft, Actor{ID: "a1", Role: entity.RoleAdministration}, false},
		{"validator", entity.StatusDraft, Actor{ID: "v1", Role: entity.RoleValidator}, false},
		{"supervisor draft", entity.StatusDraft, Actor{ID: "s1", Role: entity.RoleSupervisor}, true},
		{"supervisor terminal", entity.StatusReceivedDelivered, Actor{ID: "s1", Role: entity.RoleSupervisor}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDelete(reqWith(tt.status, "u1"), tt.actor); got != tt.want {
				t.Errorf("CanDelete = %v, want %v", got, tt.want)
			}
		})
	}
}
