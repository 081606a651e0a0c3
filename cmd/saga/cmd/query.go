package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/internal/query"
)

type queryOptions struct {
	limit       int
	offset      int
	tags        []string
	source      string
	crawlID     string
	author      string
	contentType string
	languages   []string
	scope       string
	documentID  string
	rerank      bool
	format      string
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a semantic query over the stored documents",
		Long: `query embeds the given text, searches the chunk vector index,
aggregates matches per document, and returns a ranked, paginated result
set of documents.

Examples:
  saga query "how does the scheduler retry"
  saga query "goroutine leak" --tags bug --limit 5
  saga query "config loading" --scope document --document-id doc-abc123`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum documents to return")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "result offset for pagination")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "require these tags (repeatable)")
	cmd.Flags().StringVar(&opts.source, "source", "", "filter by source: upload, crawl, api")
	cmd.Flags().StringVar(&opts.crawlID, "crawl-id", "", "filter by crawl session id")
	cmd.Flags().StringVar(&opts.author, "author", "", "filter by author")
	cmd.Flags().StringVar(&opts.contentType, "content-type", "", "filter by content type")
	cmd.Flags().StringSliceVar(&opts.languages, "languages", nil, "filter by detected language codes (repeatable)")
	cmd.Flags().StringVar(&opts.scope, "scope", "global", "search scope: global or document")
	cmd.Flags().StringVar(&opts.documentID, "document-id", "", "document id, required when --scope=document")
	cmd.Flags().BoolVar(&opts.rerank, "rerank", false, "apply the configured reranker to candidates")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json")

	return cmd
}

func runQuery(text string, opts queryOptions) error {
	a, err := newApp(debugMode)
	if err != nil {
		return err
	}
	defer a.close()

	scope := query.ScopeGlobal
	if opts.scope == "document" {
		scope = query.ScopeDocument
	}

	result, err := a.engine.Query(rootContext(), text, query.Options{
		Limit:           opts.limit,
		Offset:          opts.offset,
		IncludeMetadata: true,
		UseReranking:    opts.rerank,
		Scope:           scope,
		DocumentID:      opts.documentID,
		Filters: query.Filters{
			Tags:        opts.tags,
			Source:      opts.source,
			CrawlID:     opts.crawlID,
			Author:      opts.author,
			ContentType: opts.contentType,
			Languages:   opts.languages,
		},
	})
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return printJSON(result)
	}
	printQueryResult(result)
	return nil
}

func printQueryResult(result query.Result) {
	if len(result.Items) == 0 {
		fmt.Println("no matching documents")
		return
	}
	for i, item := range result.Items {
		fmt.Printf("%d. %s  (score %.3f, %d chunks)\n", i+1, item.Document.Title, item.Score, item.ChunksCount)
		fmt.Printf("   id: %s  source: %s\n", item.Document.ID, item.Document.Source)
		if len(item.Tags) > 0 {
			tags := make([]string, len(item.Tags))
			for j, t := range item.Tags {
				tags[j] = t.Tag
			}
			fmt.Printf("   tags: %s\n", strings.Join(tags, ", "))
		}
		snippet := item.Document.Content
		if len(snippet) > 160 {
			snippet = snippet[:160] + "..."
		}
		fmt.Printf("   %s\n", strings.ReplaceAll(snippet, "\n", " "))
	}
	fmt.Printf("\n%d total, showing %d-%d", result.Pagination.TotalDocuments, result.Pagination.Offset+1, result.Pagination.Offset+len(result.Items))
	if result.Pagination.HasMore {
		fmt.Printf(" (more at --offset %d)", *result.Pagination.NextOffset)
	}
	fmt.Println()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
