package models

import "strconv"

// Review is one submitted testimonial. Date is a display string fixed at
// creation time and never recomputed.
type Review struct {
	ID      string `json:"id,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Reply   string `json:"reply"`
	Date    string `json:"date"`
}

// Ref is the identifier reply controls carry for the review at index.
// Records written by other tools may have no ID, or one that cannot sit in a
// URL path segment; those fall back to position.
func (r Review) Ref(index int) string {
	if SafeID(r.ID) {
		return r.ID
	}
	return strconv.Itoa(index)
}

// SafeID reports whether id is non-empty and limited to [A-Za-z0-9._-].
func SafeID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
