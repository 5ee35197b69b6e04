package engine

import (
	"fmt"

	"github.com/bitforja/solped/internal/solped/entity"
)

// NotificationIntent is one planned notification. The plan is pure data; the
// notification service decides how to store and deliver it.
type NotificationIntent struct {
	ForUserID string `json:"for_user_id"`
	Message   string `json:"message"`
	Category  string `json:"category"`
}

// Audience classifies who a transition notifies.
type Audience int

const (
	// AudienceCreator notifies the requisition's creator, unless the creator
	// performed the transition themselves.
	AudienceCreator Audience = iota
	// AudienceAdministration notifies every active administration user.
	AudienceAdministration
	// AudienceValidators notifies every active validator user.
	AudienceValidators
)

type fanoutRule struct {
	audience Audience
	category string
	message  func(requisitionID, newStatus string) string
}

// fanoutRules replaces per-transition branching with one table keyed by the
// transition target.
var fanoutRules = map[string]fanoutRule{
	entity.StatusSubmittedToAdmin: {
		audience: AudienceAdministration,
		category: entity.NotificationNew,
		message: func(id, _ string) string {
			return fmt.Sprintf("New requisition %s submitted for review", id)
		},
	},
	entity.StatusPendingValidation: {
		audience: AudienceValidators,
		category: entity.NotificationValidationRequired,
		message: func(id, _ string) string {
			return fmt.Sprintf("Requisition %s pending price validation", id)
		},
	},
}

var defaultFanoutRule = fanoutRule{
	audience: AudienceCreator,
	category: entity.NotificationStatusChange,
	message: func(id, newStatus string) string {
		return fmt.Sprintf("Requisition %s changed status to %s", id, newStatus)
	},
}

// FanoutAudience returns the audience a transition into newStatus notifies.
func FanoutAudience(newStatus string) Audience {
	if rule, ok := fanoutRules[newStatus]; ok {
		return rule.audience
	}
	return defaultFanoutRule.audience
}

// PlanFanout computes the notification plan for a successful transition into
// newStatus. activeAdmins and activeValidators are the IDs of the currently
// active users in those roles; only the list the rule needs is consulted.
func PlanFanout(requisitionID, creatorID, actorID, newStatus string, activeAdmins, activeValidators []string) []NotificationIntent {
	rule, ok := fanoutRules[newStatus]
	if !ok {
		rule = defaultFanoutRule
	}

	msg := rule.message(requisitionID, newStatus)

	var recipients []string
	switch rule.audience {
	case AudienceAdministration:
		recipients = activeAdmins
	case AudienceValidators:
		recipients = activeValidators
	case AudienceCreator:
		if creatorID != actorID {
			recipients = []string{creatorID}
		}
	}

	plan := make([]NotificationIntent, 0, len(recipients))
	for _, userID := range recipients {
		plan = append(plan, NotificationIntent{
			ForUserID: userID,
			Message:   msg,
			Category:  rule.category,
		})
	}
	return plan
}
