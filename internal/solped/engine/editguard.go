package engine

import "github.com/bitforja/solped/internal/solped/entity"

// FieldGroup names a set of requisition fields writable together.
type FieldGroup string

const (
	// FieldGroupRequester: area, needed-by, work order, justification,
	// observations, priority.
	FieldGroupRequester FieldGroup = "requester"
	// FieldGroupAdministration: supplier, supplier contact, conditions,
	// total price, currency, quotation date, purchase order, purchase date,
	// estimated delivery, received date.
	FieldGroupAdministration FieldGroup = "administration"
)

// adminEditableStatuses is every non-terminal status except DRAFT.
var adminEditableStatuses = map[string]bool{
	entity.StatusSubmittedToAdmin:    true,
	entity.StatusInReviewQuoting:     true,
	entity.StatusPendingValidation:   true,
	entity.StatusRejectedValidation:  true,
	entity.StatusApprovedForPurchase: true,
	entity.StatusOrderIssued:         true,
	entity.StatusPurchased:           true,
}

// EditableGroups returns the field groups the actor may write on the given
// requisition. An empty result means editing (and item replacement) is
// forbidden. The item list follows the same rule as field edits.
func EditableGroups(req *entity.Requisition, actor Actor) []FieldGroup {
	switch actor.Role {
	case entity.RoleRequester:
		if req.Status == entity.StatusDraft && req.CreatedByID == actor.ID {
			return []FieldGroup{FieldGroupRequester}
		}
	case entity.RoleAdministration:
		if adminEditableStatuses[req.Status] {
			return []FieldGroup{FieldGroupAdministration}
		}
	case entity.RoleValidator:
		// Validators only validate; they never edit content.
	case entity.RoleSupervisor:
		return []FieldGroup{FieldGroupRequester, FieldGroupAdministration}
	}
	return nil
}

// CanEdit reports whether the actor may mutate any field or the item list.
func CanEdit(req *entity.Requisition, actor Actor) bool {
	return len(EditableGroups(req, actor)) > 0
}

// CanWriteGroup reports whether the actor may write a specific field group.
func CanWriteGroup(req *entity.Requisition, actor Actor, group FieldGroup) bool {
	for _, g := range EditableGroups(req, actor) {
		if g == group {
			return true
		}
	}
	return false
}

// CanDelete applies the narrower deletion rule: the requester may delete only
// their own DRAFT requisition; the supervisor may delete at any status.
// Deletion purges the record, it is not a transition.
func CanDelete(req *entity.Requisition, actor Actor) bool {
	switch actor.Role {
	case entity.RoleRequester:
		return req.Status == entity.StatusDraft && req.CreatedByID == actor.ID
	case entity.RoleSupervisor:
		return true
	}
	return false
}
