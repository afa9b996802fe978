// Package authz makes the allow/deny decision for every mutating action.
// It is pure: the acting identity is a parameter, never ambient state, and
// nothing here touches storage.
package authz

type Action int

const (
	ActionPostMessage Action = iota
	ActionDeleteMessage
	ActionToggleLike
	ActionViewFollowers
	ActionViewFollowing
)

type Decision int

const (
	// Allow permits the action.
	Allow Decision = iota
	// Deny means an identity is present but lacks privilege. Callers may
	// present it the same way as RequireLogin, but the distinction is
	// preserved for auditing.
	Deny
	// RequireLogin means no identity is present at all.
	RequireLogin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case RequireLogin:
		return "require_login"
	}
	return "unknown"
}

// Decide applies the decision table. actorID is nil for anonymous requests.
// ownerID is only consulted for ActionDeleteMessage and is ignored
// otherwise; any authenticated user may post, toggle likes (their own
// messages included), and view follow listings.
func Decide(actorID *uint, action Action, ownerID uint) Decision {
	if actorID == nil {
		return RequireLogin
	}
	if action == ActionDeleteMessage && *actorID != ownerID {
		return Deny
	}
	return Allow
}
