package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagaeng/saga/internal/ingest"
	"github.com/sagaeng/saga/internal/query"
)

// Given: the root command
// When: it is constructed
// Then: every subcommand is registered
func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "upload", "query", "search-code", "delete", "delete-crawl", "crawl-session", "stats", "doctor", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

// Given: a fresh base directory
// When: a document is ingested and then queried for
// Then: the query returns the ingested document
func TestIngestAndQuery_RoundTrip(t *testing.T) {
	t.Setenv("SAGA_HOME", t.TempDir())

	a, err := newApp(false)
	require.NoError(t, err)
	defer a.close()

	content := "saga stores documents and serves semantic search over the local filesystem"
	result := a.pipeline.AddDocument(rootContext(), ingest.AddDocumentInput{
		Title:       "round trip",
		Content:     content,
		ContentType: "text",
	})
	require.NotNil(t, result.Document)

	queryResult, err := a.engine.Query(rootContext(), "semantic search over documents", query.Options{Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, queryResult.Items)
	assert.Equal(t, result.Document.ID, queryResult.Items[0].Document.ID)
}

// Given: the version command
// When: it is executed
// Then: it prints version information without error
func TestVersionCmd_Execute(t *testing.T) {
	var stdout bytes.Buffer
	c := newVersionCmd()
	c.SetOut(&stdout)
	c.SetErr(&bytes.Buffer{})
	require.NoError(t, c.Execute())
	assert.Contains(t, stdout.String(), "saga version")
}
