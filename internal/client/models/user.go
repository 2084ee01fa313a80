// Package models defines the client-side data types of the Ricebook
// synchronization layer: the current-user snapshot, the follow graph,
// aggregated followee profiles, feed posts, and profile documents.
package models

// UserSnapshot is the locally held view of the logged-in user.
//
// It is owned exclusively by the session store and replaced wholesale on
// every update; callers must never mutate individual fields of a snapshot
// they received.
type UserSnapshot struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
	Avatar    string `json:"avatar"`
	LoggedIn  bool   `json:"loggedin"`
	// Password is write-only: it is carried through registration and login
	// payloads but never displayed.
	Password string `json:"password,omitempty"`
}

// WithStatus returns a copy of the snapshot with the headline replaced.
// The receiver is left untouched.
func (u UserSnapshot) WithStatus(status string) UserSnapshot {
	u.Status = status
	return u
}

// FollowGraph is the authenticated user's following set as reported by,
// or reconciled with, the backend.
type FollowGraph struct {
	Username  string   `json:"username"`
	Following []string `json:"following"`
}

// Contains reports whether username is already in the following set.
func (g *FollowGraph) Contains(username string) bool {
	for _, u := range g.Following {
		if u == username {
			return true
		}
	}
	return false
}

// FolloweeInfo is the per-followee join of the displayname, headline and
// avatar endpoints. Derived and read-only; recomputed per aggregation call.
type FolloweeInfo struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
	Headline    string `json:"headline"`
	Avatar      string `json:"avatar"`
}
