// Package workspace implements the access evaluation over a workspace's
// approval lifecycle: whether its members may perform mutating operations and
// what message the UI should surface when they may not. The same decision
// gates writes server-side (see internal/middleware/guards.go); the message
// is advisory for the SPA.
package workspace

import (
	"strings"

	"github.com/vertex-platform/vertex-backend/internal/db/models"
)

// Messages surfaced to the SPA when mutations are blocked.
const (
	PendingMessage          = "This workspace is awaiting approval by a platform admin. Changes are disabled until it is approved."
	GenericRejectionMessage = "This workspace was rejected by a platform admin. Contact support for details."
)

// Decision is the outcome of evaluating a workspace's approval state.
type Decision struct {
	CanMutate       bool   `json:"can_mutate"`
	ApprovalMessage string `json:"approval_message,omitempty"`
}

// Evaluate maps a workspace's approval status to a mutation decision. A nil
// workspace (no active selection) never blocks, so workspace-independent
// screens like the picker stay usable. Unrecognized statuses fail closed.
func Evaluate(ws *models.Workspace) Decision {
	if ws == nil {
		return Decision{CanMutate: true}
	}

	switch ws.ApprovalStatus {
	case models.ApprovalStatusApproved:
		return Decision{CanMutate: true}
	case models.ApprovalStatusPending:
		return Decision{CanMutate: false, ApprovalMessage: PendingMessage}
	case models.ApprovalStatusRejected:
		note := strings.TrimSpace(ws.ApprovalNote)
		if note == "" {
			return Decision{CanMutate: false, ApprovalMessage: GenericRejectionMessage}
		}
		return Decision{CanMutate: false, ApprovalMessage: "This workspace was rejected: " + note}
	default:
		// Schema drift from the database is treated like an unapproved
		// workspace rather than silently permitting writes.
		return Decision{CanMutate: false, ApprovalMessage: PendingMessage}
	}
}
