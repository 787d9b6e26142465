package models

// Category names one of the two keyword-defined comment classes.
type Category string

// SentimentRecord is the scored form of a classified comment. Author and
// CreatedUTC are nil when provenance is not recorded; a recorded empty author
// or zero timestamp is still written.
type SentimentRecord struct {
	Author     *string `json:"author,omitempty"`
	CreatedUTC *int64  `json:"created_utc,omitempty"`
	Body       string  `json:"body"`
	Score      float64 `json:"score"`
}

// WithProvenance returns a copy of r carrying the author and timestamp of c.
func (r SentimentRecord) WithProvenance(c Comment) SentimentRecord {
	author, created := c.Author, c.CreatedUTC
	r.Author = &author
	r.CreatedUTC = &created

	return r
}

// AuthorName returns the recorded author, or "" when none was recorded.
func (r SentimentRecord) AuthorName() string {
	if r.Author == nil {
		return ""
	}

	return *r.Author
}
