package policy

import "newsnotes/cmd/internal/domain/entity"

// Requester is the explicit identity threaded through every guard and service call.
// A nil User means the request is anonymous.
type Requester struct {
	User *entity.User

	// Origin is the URI originally requested, used as the login "next" target.
	Origin string
}

func Anonymous(origin string) Requester {
	return Requester{Origin: origin}
}

func AuthenticatedAs(user *entity.User, origin string) Requester {
	return Requester{User: user, Origin: origin}
}

func (r Requester) IsAnonymous() bool {
	return r.User == nil
}

// UserID returns 0 for anonymous requesters.
func (r Requester) UserID() int64 {
	if r.User == nil {
		return 0
	}
	return r.User.ID
}
