package domain

// ItemRef identifies one enumerated item.
// It is owned by the enumerator; the pipeline treats it as read-only.
type ItemRef struct {
	// ID is the connector-specific identifier used to fetch content
	// (Drive file ID, "owner/repo#123", absolute file path).
	ID string `json:"id"`

	// Title is the display name used in section headers.
	Title string `json:"title"`

	// URI is a stable locator such as gdrive://files/{id} or file:///path.
	URI string `json:"uri,omitempty"`

	// Group is an optional grouping key (for example the top-level Drive folder).
	// Only used by group planning.
	Group string `json:"group,omitempty"`

	// Metadata carries connector-specific display fields.
	Metadata map[string]any `json:"-"`
}

// MetaString returns a string metadata value or "" when absent.
func (r ItemRef) MetaString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	s, _ := r.Metadata[key].(string)
	return s
}

// Content is the fetched body of one item.
// It is consumed exactly once by the writer and not retained.
type Content struct {
	Data     []byte
	MIMEType string
}

// Size returns the payload size in bytes.
func (c *Content) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Data)
}

// Bucket is a contiguous, ordered slice of items assigned to one artifact.
type Bucket struct {
	// Index is 1-based.
	Index int
	// Name is the artifact name, without directory.
	Name  string
	Items []ItemRef
}

// Len returns the number of items in the bucket.
func (b Bucket) Len() int {
	return len(b.Items)
}
