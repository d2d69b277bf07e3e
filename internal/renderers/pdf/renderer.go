// Package pdf passes PDF documents through unchanged after validating them.
// Merging happens in the PDF artifact sink, so the separator is empty.
package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// MIMEType is the MIME type of PDF documents.
const MIMEType = "application/pdf"

var pdfMagic = []byte("%PDF-")

var disableConfigDir sync.Once

// Ensure Renderer implements the interface.
var _ driven.Renderer = (*Renderer)(nil)

// Renderer validates PDF content with pdfcpu.
type Renderer struct {
	conf *model.Configuration
}

// New creates a PDF renderer using relaxed validation.
func New() *Renderer {
	return &Renderer{conf: Configuration()}
}

// Configuration returns a pdfcpu configuration that never touches the
// user's pdfcpu config directory.
func Configuration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Separator returns nil: PDFs are concatenated by the sink.
func (r *Renderer) Separator() []byte {
	return nil
}

// Render returns the document unchanged if pdfcpu can read it.
// Corrupt documents are rejected, so the pipeline skips them.
func (r *Renderer) Render(ref domain.ItemRef, content *domain.Content) ([]byte, error) {
	if content == nil || !bytes.HasPrefix(content.Data, pdfMagic) {
		return nil, fmt.Errorf("%s: not a PDF document", ref.Title)
	}
	if err := api.Validate(bytes.NewReader(content.Data), r.conf); err != nil {
		return nil, fmt.Errorf("%s: invalid PDF: %w", ref.Title, err)
	}
	return content.Data, nil
}
