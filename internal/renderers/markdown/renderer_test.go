package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
)

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name  string
		title string
		data  string
		want  string
	}{
		{name: "plain", title: "notes.md", data: "hello", want: "# notes.md\n\nhello"},
		{name: "empty body", title: "empty.md", data: "", want: "# empty.md\n\n"},
		{name: "byte order mark", title: "bom.md", data: "\xef\xbb\xbfbody", want: "# bom.md\n\nbody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New().Render(domain.ItemRef{Title: tt.title}, &domain.Content{Data: []byte(tt.data)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestRenderer_Render_RejectsBinary(t *testing.T) {
	_, err := New().Render(domain.ItemRef{Title: "x.md"}, &domain.Content{Data: []byte{0xff, 0xfe, 0x00}})
	assert.Error(t, err)

	_, err = New().Render(domain.ItemRef{Title: "x.md"}, nil)
	assert.Error(t, err)
}

func TestRenderer_Separator(t *testing.T) {
	assert.Equal(t, DefaultSeparator, string(New().Separator()))
	assert.Equal(t, "\n", string(NewWithSeparator("\n").Separator()))
	assert.Empty(t, NewWithSeparator("").Separator())
}
