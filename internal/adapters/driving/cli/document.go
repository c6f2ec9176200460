package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage course documents",
	Long:  `Add, list, view, or delete course documents.`,
}

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a document from a file and index it",
	Long: `Reads a text, markdown, or PDF file, stores its normalised text and
builds its chunk index. Adding the same path again updates the document.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentAddTextCmd = &cobra.Command{
	Use:   "add-text [text]",
	Short: "Add a document from raw text and index it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentAddText,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentTitle string

func init() {
	documentAddCmd.Flags().StringVarP(&documentTitle, "title", "t", "", "Document title (default: from file)")
	documentAddTextCmd.Flags().StringVarP(&documentTitle, "title", "t", "", "Document title")
	_ = documentAddTextCmd.MarkFlagRequired("title")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentAddTextCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	result, err := documentService.AddFile(cmd.Context(), args[0], documentTitle)
	if result != nil {
		printIngest(cmd, result.Document, result.Updated)
	}
	if err != nil {
		if result != nil {
			cmd.Printf("Indexing failed; retry with: lectern reindex %s\n", result.Document.ID)
		}
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("  Chunks: %d\n", result.Chunks)
	return nil
}

func runDocumentAddText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	result, err := documentService.Add(cmd.Context(), &domain.RawDocument{
		Title:    documentTitle,
		MIMEType: "text/plain",
		Content:  []byte(args[0]),
	})
	if result != nil {
		printIngest(cmd, result.Document, result.Updated)
	}
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("  Chunks: %d\n", result.Chunks)
	return nil
}

func printIngest(cmd *cobra.Command, doc domain.Document, updated bool) {
	verb := "Added"
	if updated {
		verb = "Updated"
	}
	cmd.Printf("%s document %s\n", verb, doc.ID)
	cmd.Printf("  Title: %s\n", doc.Title)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Add one with: lectern document add <file>")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		if docs[i].URI != "" {
			cmd.Printf("    URI: %s\n", docs[i].URI)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("Title: %s\n", doc.Title)
	if doc.URI != "" {
		cmd.Printf("URI: %s\n", doc.URI)
	}
	if doc.MIMEType != "" {
		cmd.Printf("Type: %s\n", doc.MIMEType)
	}
	cmd.Printf("Length: %d characters\n", len([]rune(doc.Content)))
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format(time.RFC3339))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format(time.RFC3339))

	if indexService != nil {
		if n, err := indexService.ChunkCount(cmd.Context(), doc.ID); err == nil {
			cmd.Printf("Chunks: %d\n", n)
		}
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(doc.Content, "\n"))
	return err
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
