// Package rbac decides which requests may proceed based on the session's
// authentication state and the capabilities derived from the user's role.
package rbac

import "github.com/finboard/finboard/internal/session"

// Capability is a permission derived from a role.
type Capability int

const (
	// CapabilityManagement requires the management role.
	CapabilityManagement Capability = iota + 1
	// CapabilityAccounting requires the accounting or management role.
	CapabilityAccounting
)

func (c Capability) String() string {
	switch c {
	case CapabilityManagement:
		return "management"
	case CapabilityAccounting:
		return "accounting"
	default:
		return "unknown"
	}
}

// GrantedBy reports whether state holds the capability.
func (c Capability) GrantedBy(state session.State) bool {
	switch c {
	case CapabilityManagement:
		return state.HasManagementAccess()
	case CapabilityAccounting:
		return state.HasAccountingAccess()
	default:
		return false
	}
}

// DecisionKind enumerates gate outcomes.
type DecisionKind int

const (
	// DecisionAllow lets the request through.
	DecisionAllow DecisionKind = iota
	// DecisionPending means the session is not resolved yet.
	DecisionPending
	// DecisionRedirect sends the browser to Location.
	DecisionRedirect
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionPending:
		return "pending"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of a gate.
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Allowed reports whether the decision lets the request through.
func (d Decision) Allowed() bool {
	return d.Kind == DecisionAllow
}
