// Package engine is the requisition lifecycle core: the transition authority,
// the edit guard and the notification fan-out planner. Everything here is a
// pure function over a declarative table; persistence and delivery live in
// the repository and service layers.
package engine

import "github.com/bitforja/solped/internal/solped/entity"

// Actor is the authenticated caller, as supplied by the identity layer.
type Actor struct {
	ID   string
	Role string
}

// transitionTable maps (current status, role) to the set of statuses the role
// may move the requisition into. A missing entry means no transition is
// available. SUPERVISOR can do whatever the stage owner can, and additionally
// cancel from any non-terminal status.
var transitionTable = map[string]map[string][]string{
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

// NextStatuses returns the legal target set for (current status, role).
// The returned slice is a copy; callers may keep it.
func NextStatuses(current, role string) []string {
	byRole, ok := transitionTable[current]
	if !ok {
		return nil
	}
	targets := byRole[role]
	if len(targets) == 0 {
		return nil
	}
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether the role may move the requisition from
// current to target.
func CanTransition(current, role, target string) bool {
	for _, s := range NextStatuses(current, role) {
		if s == target {
			return true
		}
	}
	return false
}

// RequiresRejectionNote reports whether the target status needs a non-empty
// note as a precondition of the transition.
func RequiresRejectionNote(target string) bool {
	return target == entity.StatusRejectedValidation
}

// IsTerminal reports whether a status has no outgoing transitions for any
// role.
func IsTerminal(status string) bool {
	return status == entity.StatusReceivedDelivered || status == entity.StatusCancelled
}
