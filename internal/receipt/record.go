package receipt

import "time"

// Detail is a single layout-specific fact extracted from a document.
type Detail struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is the structured result of extracting one document.
type Record struct {
	Title            string    `json:"title"`
	Timestamp        time.Time `json:"timestamp"`
	Type             string    `json:"type"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Details          []Detail  `json:"details,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	ExternalID       int64     `json:"external_id,omitempty"`
	LinkedExternalID *int64    `json:"linked_external_id,omitempty"`
}

// Properties returns the candidate field set used by tag and link
// resolution: Title and Type first, then the details in extraction order.
// Tags are never part of the set.
func (r Record) Properties() []Detail {
	props := make([]Detail, 0, len(r.Details)+2)
	props = append(props,
		Detail{Name: "Title", Value: r.Title},
		Detail{Name: "Type", Value: r.Type},
	)
	return append(props, r.Details...)
}

// Complete reports whether the record carries everything an extractor is
// required to populate. Anything less is a no-match, never a partial record.
func (r Record) Complete() bool {
	return r.Title != "" &&
		r.Type != "" &&
		!r.Timestamp.IsZero() &&
		r.Amount != 0
}

// User identifies who submitted a document.
type User struct {
	ID   int64
	Name string
}

// Content is an immutable document payload with a display name.
type Content struct {
	name string
	data []byte
}

// NewContent creates a Content from raw bytes and a display name.
func NewContent(name string, data []byte) Content {
	return Content{name: name, data: data}
}

// Name returns the display name.
func (c Content) Name() string {
	return c.name
}

// Data returns the raw payload.
func (c Content) Data() []byte {
	return c.data
}

// WithName returns a copy of the content under a new display name.
func (c Content) WithName(name string) Content {
	return Content{name: name, data: c.data}
}
