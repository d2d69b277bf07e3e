// Package markdown renders text documents as titled markdown sections.
package markdown

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// DefaultSeparator is the horizontal rule written between documents.
const DefaultSeparator = "\n\n---\n"

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer writes "# Title" followed by the document text.
type Renderer struct {
	separator []byte
}

// New creates a markdown renderer with the default separator.
func New() *Renderer {
	return &Renderer{separator: []byte(DefaultSeparator)}
}

// NewWithSeparator creates a renderer with a custom separator.
func NewWithSeparator(sep string) *Renderer {
	return &Renderer{separator: []byte(sep)}
}

// Separator returns the bytes written between documents.
func (r *Renderer) Separator() []byte {
	return r.separator
}

// Render returns "# {title}\n\n{text}". Content that is not valid UTF-8
// is rejected so binary files do not end up in a text artifact.
func (r *Renderer) Render(ref domain.ItemRef, content *domain.Content) ([]byte, error) {
	if content == nil {
		return nil, fmt.Errorf("%s: no content", ref.Title)
	}
	if !utf8.Valid(content.Data) {
		return nil, fmt.Errorf("%s: content is not valid UTF-8", ref.Title)
	}

	data := bytes.TrimPrefix(content.Data, []byte("\xef\xbb\xbf"))

	var buf bytes.Buffer
	buf.Grow(len(ref.Title) + len(data) + 4)
	buf.WriteString("# ")
	buf.WriteString(ref.Title)
	buf.WriteString("\n\n")
	buf.Write(data)
	return buf.Bytes(), nil
}
