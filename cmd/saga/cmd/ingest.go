package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagaeng/saga/internal/ingest"
	"github.com/sagaeng/saga/internal/model"
)

func newIngestCmd() *cobra.Command {
	var title, contentType, source, crawlID, author string
	var tags []string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a single plain-text or markdown file as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(debugMode)
			if err != nil {
				return err
			}
			defer a.close()

			meta := model.Metadata{
				CrawlID: crawlID,
				Author:  author,
				Tags:    tags,
			}
			if source != "" {
				meta.Source = model.Source(source)
			}

			result := a.pipeline.AddDocument(rootContext(), ingest.AddDocumentInput{
				Title:       firstNonEmpty(title, args[0]),
				Content:     string(data),
				ContentType: firstNonEmpty(contentType, "text"),
				Metadata:    meta,
			})
			if result.Rejected != nil {
				return result.Rejected
			}
			fmt.Printf("ingested %s as document %s (%d chunks)\n", args[0], result.Document.ID, result.Document.ChunksCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "document title (defaults to the file path)")
	cmd.Flags().StringVar(&contentType, "content-type", "text", "content type: text, markdown")
	cmd.Flags().StringVar(&source, "source", "api", "source: upload, crawl, api")
	cmd.Flags().StringVar(&crawlID, "crawl-id", "", "crawl session id, if any")
	cmd.Flags().StringVar(&author, "author", "", "document author")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags to attach (repeatable)")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
