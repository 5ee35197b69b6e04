package engine

import (
	"reflect"
	"sort"
	"testing"

	"github.com/bitforja/solped/internal/solped/entity"
)

var allRoles = []string{
	entity.RoleRequester,
	entity.RoleAdministration,
	entity.RoleValidator,
	entity.RoleSupervisor,
}

// legalSets is the full ground-truth table: every (status, role) pair and the
// exact set of statuses that role may move into. Pairs not listed have an
// empty legal set.
var legalSets = map[string]map[string][]string{
	entity.StatusDraft: {
		entity.RoleRequester:  {entity.StatusSubmittedToAdmin, entity.StatusCancelled},
		entity.RoleSupervisor: {entity.StatusSubmittedToAdmin, entity.StatusCancelled},
	},
	entity.StatusSubmittedToAdmin: {
		entity.RoleAdministration: {entity.StatusInReviewQuoting, entity.StatusCancelled},
		entity.RoleSupervisor:     {entity.StatusInReviewQuoting, entity.StatusCancelled},
	},
	entity.StatusInReviewQuoting: {
		entity.RoleAdministration: {entity.StatusPendingValidation, entity.StatusCancelled},
		entity.RoleSupervisor:     {entity.StatusPendingValidation, entity.StatusCancelled},
	},
	entity.StatusPendingValidation: {
		entity.RoleValidator:  {entity.StatusApprovedForPurchase, entity.StatusRejectedValidation, entity.StatusCancelled},
		entity.RoleSupervisor: {entity.StatusApprovedForPurchase, entity.StatusRejectedValidation, entity.StatusCancelled},
	},
	entity.StatusRejectedValidation: {
		entity.RoleAdministration: {entity.StatusInReviewQuoting},
		entity.RoleSupervisor:     {entity.StatusInReviewQuoting, entity.StatusCancelled},
	},
	entity.StatusApprovedForPurchase: {
		entity.RoleAdministration: {entity.StatusOrderIssued},
		entity.RoleSupervisor:     {entity.StatusOrderIssued, entity.StatusCancelled},
	},
	entity.StatusOrderIssued: {
		entity.RoleAdministration: {entity.StatusPurchased},
		entity.RoleSupervisor:     {entity.StatusPurchased, entity.StatusCancelled},
	},
	entity.StatusPurchased: {
		entity.RoleAdministration: {entity.StatusReceivedDelivered},
		entity.RoleSupervisor:     {entity.StatusReceivedDelivered, entity.StatusCancelled},
	},
	entity.StatusReceivedDelivered: {},
	entity.StatusCancelled:         {},
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestNextStatusesFullTable(t *testing.T) {
	for _, status := range entity.AllStatuses {
		for _, role := range allRoles {
			want := legalSets[status][role]
			got := NextStatuses(status, role)
			if len(want) == 0 && len(got) == 0 {
				continue
			}
			if !reflect.DeepEqual(sorted(got), sorted(want)) {
				t.Errorf("NextStatuses(%s, %s) = %v, want %v", status, role, got, want)
			}
		}
	}
}

func TestNextStatusesUnknownStatus(t *testing.T) {
	if got := NextStatuses("NO_SUCH_STATUS", entity.RoleSupervisor); got != nil {
		t.Errorf("expected nil legal set for unknown status, got %v", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		current, role, target string
		want                  bool
	}{
		{entity.StatusDraft, entity.RoleRequester, entity.StatusSubmittedToAdmin, true},
		{entity.StatusDraft, entity.RoleAdministration, entity.StatusSubmittedToAdmin, false},
		{entity.StatusDraft, entity.RoleRequester, entity.StatusInReviewQuoting, false},
		{entity.StatusPendingValidation, entity.RoleValidator, entity.StatusApprovedForPurchase, true},
		{entity.StatusPendingValidation, entity.RoleValidator, entity.StatusRejectedValidation, true},
		{entity.StatusPendingValidation, entity.RoleRequester, entity.StatusApprovedForPurchase, false},
		{entity.StatusRejectedValidation, entity.RoleAdministration, entity.StatusInReviewQuoting, true},
		{entity.StatusRejectedValidation, entity.RoleAdministration, entity.StatusCancelled, false},
		{entity.StatusPurchased, entity.RoleSupervisor, entity.StatusCancelled, true},
		{entity.StatusPurchased, entity.RoleAdministration, entity.StatusCancelled, false},
		{entity.StatusReceivedDelivered, entity.RoleSupervisor, entity.StatusCancelled, false},
		{entity.StatusCancelled, entity.RoleSupervisor, entity.StatusDraft, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.current, tt.role, tt.target); got != tt.want {
			t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", tt.current, tt.role, tt.target, got, tt.want)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, status := range []string{entity.StatusReceivedDelivered, entity.StatusCancelled} {
		if !IsTerminal(status) {
			t.Errorf("IsTerminal(%s) = false, want true", status)
		}
		for _, role := range allRoles {
			if got := NextStatuses(status, role); len(got) != 0 {
				t.Errorf("terminal status %s has transitions for %s: %v", status, role, got)
			}
		}
	}
}

func TestRequiresRejectionNote(t *testing.T) {
	if !RequiresRejectionNote(entity.StatusRejectedValidation) {
		t.Error("REJECTED_VALIDATION must require a rejection note")
	}
	for _, status := range entity.AllStatuses {
		if status == entity.StatusRejectedValidation {
			continue
		}
		if RequiresRejectionNote(status) {
			t.Errorf("status %s should not require a rejection note", status)
		}
	}
}
