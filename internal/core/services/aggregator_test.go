package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
)

func openArtifact(t *testing.T, sink *fakeSink, name string, r *fakeRenderer) *AggregationWriter {
	t.Helper()
	w, err := sink.Create(context.Background(), name)
	require.NoError(t, err)
	return NewAggregationWriter(w, r)
}

func content(s string) *domain.Content {
	return &domain.Content{Data: []byte(s)}
}

func TestAggregationWriter_SeparatorOnlyBetweenItems(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{sep: "\n---\n"})

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, agg.WriteItem(domain.ItemRef{ID: id}, content(id)))
	}
	require.NoError(t, agg.Commit())

	body, ok := sink.artifact("out")
	require.True(t, ok)
	assert.Equal(t, "a:a\n---\nb:b\n---\nc:c", body)
	assert.Equal(t, 2, strings.Count(body, "---"))
	assert.Equal(t, 3, agg.Written())
}

func TestAggregationWriter_SingleItemHasNoSeparator(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{sep: "|"})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("x")))
	require.NoError(t, agg.Commit())

	body, _ := sink.artifact("out")
	assert.Equal(t, "a:x", body)
}

func TestAggregationWriter_EmptySeparator(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("1")))
	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "b"}, content("2")))
	require.NoError(t, agg.Commit())

	body, _ := sink.artifact("out")
	assert.Equal(t, "a:1b:2", body)
}

func TestAggregationWriter_RenderErrorSkipsWithoutSeparator(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{sep: "|", fail: map[string]bool{"b": true}})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("1")))

	err := agg.WriteItem(domain.ItemRef{ID: "b"}, content("2"))
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "b", renderErr.Ref.ID)

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "c"}, content("3")))
	require.NoError(t, agg.Commit())

	body, _ := sink.artifact("out")
	assert.Equal(t, "a:1|c:3", body)
	assert.Equal(t, 2, agg.Written())
}

func TestAggregationWriter_WriteErrorIsWriteFailed(t *testing.T) {
	sink := newFakeSink()
	sink.writeErr["out"] = errors.New("disk full")
	sink.failOn = "b"
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("1")))
	err := agg.WriteItem(domain.ItemRef{ID: "b"}, content("2"))

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Equal(t, 1, agg.Written())
}

func TestAggregationWriter_DestinationUnusablePassesThrough(t *testing.T) {
	sink := newFakeSink()
	sink.writeErr["out"] = domain.ErrDestinationUnusable
	sink.failOn = "a"
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	err := agg.WriteItem(domain.ItemRef{ID: "a"}, content("1"))

	assert.ErrorIs(t, err, domain.ErrDestinationUnusable)
	assert.NotErrorIs(t, err, domain.ErrWriteFailed)
}

func TestAggregationWriter_CommitIsIdempotentAndBlocksWrites(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("1")))
	require.NoError(t, agg.Commit())
	require.NoError(t, agg.Commit())
	require.NoError(t, agg.Abort(), "abort after commit is a no-op")

	err := agg.WriteItem(domain.ItemRef{ID: "b"}, content("2"))
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
	assert.Empty(t, sink.aborted)
	assert.Equal(t, "mem://out", agg.Location())
}

func TestAggregationWriter_AbortDiscards(t *testing.T) {
	sink := newFakeSink()
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	require.NoError(t, agg.WriteItem(domain.ItemRef{ID: "a"}, content("1")))
	require.NoError(t, agg.Abort())

	_, ok := sink.artifact("out")
	assert.False(t, ok)
	assert.Equal(t, []string{"out"}, sink.aborted)
}

func TestAggregationWriter_CommitErrorIsWriteFailed(t *testing.T) {
	sink := newFakeSink()
	sink.commitErr["out"] = errors.New("rename failed")
	agg := openArtifact(t, sink, "out", &fakeRenderer{})

	err := agg.Commit()

	assert.ErrorIs(t, err, domain.ErrWriteFailed)
}
