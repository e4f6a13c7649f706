package policy

import (
	"net/url"
	"strings"
)

type Action int

const (
	// ActionReadPublic covers pages every visitor can see (news home and detail, auth pages).
	ActionReadPublic Action = iota
	// ActionViewPrivate covers pages that need a session but no record (notes list, add form).
	ActionViewPrivate
	ActionCreate
	ActionRead
	ActionEdit
	ActionDelete
)

func (a Action) requiresAuth() bool {
	return a != ActionReadPublic
}

func (a Action) ownerScoped() bool {
	return a == ActionRead || a == ActionEdit || a == ActionDelete
}

type DecisionKind int

const (
	Allow DecisionKind = iota
	DenyNotFound
	RedirectToLogin
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case DenyNotFound:
		return "deny_not_found"
	case RedirectToLogin:
		return "redirect_to_login"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind DecisionKind
	// Location is only set for RedirectToLogin.
	Location string
}

// Owned is any record carrying an author. OwnerID must be safe to call on a
// nil pointer and return 0 there.
type Owned interface {
	OwnerID() int64
}

// DecisionObserver is notified of every decision, it must not block.
type DecisionObserver func(action Action, decision Decision)

// Guard decides whether a requester may perform an action on a record.
type Guard struct {
	LoginURL string

	// Observer is optional.
	Observer DecisionObserver
}

func NewGuard(loginURL string) *Guard {
	return &Guard{LoginURL: loginURL}
}

// Check applies the access rules in order:
//
// 1. Anonymous requesters are sent to the login page for anything but public reads.
//
// 2. Public reads are always allowed.
//
// 3. Owner-scoped actions on a missing record, or on a record owned by somebody
// else, are denied as not found. Another user's record must look exactly like a
// record that does not exist.
//
// 4. Everything else is allowed.
func (g *Guard) Check(requester Requester, action Action, record Owned) Decision {
	decision := g.decide(requester, action, record)
	if g.Observer != nil {
		g.Observer(action, decision)
	}
	return decision
}

func (g *Guard) decide(requester Requester, action Action, record Owned) Decision {
	if action.requiresAuth() && requester.IsAnonymous() {
		return Decision{Kind: RedirectToLogin, Location: g.LoginRedirect(requester.Origin)}
	}

	if action == ActionReadPublic {
		return Decision{Kind: Allow}
	}

	if action.ownerScoped() {
		if record == nil || record.OwnerID() != requester.User.ID {
			return Decision{Kind: DenyNotFound}
		}
	}
	return Decision{Kind: Allow}
}

// LoginRedirect builds "<login>?next=<origin>", leaving slashes in origin readable.
func (g *Guard) LoginRedirect(origin string) string {
	if origin == "" {
		return g.LoginURL
	}

	sep := "?"
	if strings.Contains(g.LoginURL, "?") {
		sep = "&"
	}
	return g.LoginURL + sep + "next=" + escapeNext(origin)
}

func escapeNext(origin string) string {
	parts := strings.Split(origin, "/")
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, "/")
}
