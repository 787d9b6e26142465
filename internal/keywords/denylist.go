package keywords

import "commentsent/internal/models"

// DefaultDeniedAuthor is the automated account excluded when no denylist is configured.
const DefaultDeniedAuthor = "sneakpeek_bot"

// Denylist drops comments by exact author name.
type Denylist struct {
	authors map[string]struct{}
}

// NewDenylist creates a denylist. Empty names are ignored.
func NewDenylist(authors ...string) *Denylist {
	d := &Denylist{authors: make(map[string]struct{}, len(authors))}

	for _, a := range authors {
		if a != "" {
			d.authors[a] = struct{}{}
		}
	}

	return d
}

// Contains reports whether author is denied.
func (d *Denylist) Contains(author string) bool {
	_, ok := d.authors[author]

	return ok
}

// Len returns the number of denied authors.
func (d *Denylist) Len() int {
	return len(d.authors)
}

// Apply returns the comments whose author is not denied and how many were removed.
func (d *Denylist) Apply(comments []models.Comment) ([]models.Comment, int) {
	kept := make([]models.Comment, 0, len(comments))

	for _, c := range comments {
		if !d.Contains(c.Author) {
			kept = append(kept, c)
		}
	}

	return kept, len(comments) - len(kept)
}
