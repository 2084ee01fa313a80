package models

import "time"

// DateLayout is the canonical timestamp format used on the wire for
// article dates: YYYY-MM-DD HH:MM:SS.
const DateLayout = "2006-01-02 15:04:05"

// Post is one feed article. Immutable once fetched; a feed re-fetch
// replaces the held collection wholesale.
type Post struct {
	ID       int64     `json:"id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Image    string    `json:"image"`
	Date     string    `json:"date"`
	Comments []Comment `json:"comments"`
}

// ParsedDate returns the post date parsed from DateLayout. A malformed
// date parses to the zero time, which sorts after every valid one.
func (p Post) ParsedDate() time.Time {
	t, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Comment is the client projection of a server comment: commenter and
// content only, in server order.
type Comment struct {
	Commenter string `json:"commenter"`
	Content   string `json:"content"`
}
