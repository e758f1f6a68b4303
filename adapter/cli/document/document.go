package document

import (
	"fmt"
	"mime"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/patentdesk/adapter/cli"
	documentsApp "github.com/felixgeelhaar/patentdesk/internal/documents/application"
	"github.com/felixgeelhaar/patentdesk/internal/shared/infrastructure/security"
)

// Cmd is the document command group.
var Cmd = &cobra.Command{
	Use:   "document",
	Short: "Share files on a project",
	Long:  `Upload deliverables to a project, list what has been shared, and issue download links.`,
}

var uploadContentType string

var uploadCmd = &cobra.Command{
	Use:   "upload [project-id] [file]",
	Short: "Upload a file to a project",
	Long: `Upload a local file to a project. The client is emailed about the new
document. Requires STORAGE_ENDPOINT.

Examples:
  patentdesk document upload 550e8400-e29b-41d4-a716-446655440000 ./search-report.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		f, err := security.SafeOpen(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		contentType := uploadContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(info.Name()))
		}

		ctx := cmd.Context()
		doc, err := app.UploadDocumentHandler.Handle(ctx, documentsApp.UploadDocumentCommand{
			Actor:       app.Actor,
			ProjectID:   projectID,
			Filename:    info.Name(),
			ContentType: contentType,
			Size:        info.Size(),
			Content:     f,
		})
		if err != nil {
			return fmt.Errorf("failed to upload document: %w", err)
		}
		app.Flush(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Uploaded %s (%d bytes)\n", doc.Filename(), doc.Size())
		fmt.Fprintf(out, "  ID: %s\n", doc.ID())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List a project's documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		docs, err := app.ListDocumentsHandler.Handle(cmd.Context(), app.Actor, projectID)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(docs) == 0 {
			fmt.Fprintln(out, "No documents found.")
			return nil
		}
		for _, d := range docs {
			fmt.Fprintf(out, "%s  %-40s %8d bytes  from %s  %s\n",
				d.ID.String()[:8], d.Filename, d.SizeBytes, d.UploaderRole,
				d.CreatedAt.In(app.Location).Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link [document-id]",
	Short: "Print a temporary download link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		documentID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid document ID: %w", err)
		}

		link, err := app.DocumentDownloadURLHandler.Handle(cmd.Context(), app.Actor, documentID)
		if err != nil {
			return fmt.Errorf("failed to create download link: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, link.URL)
		fmt.Fprintf(out, "  expires %s\n", link.ExpiresAt.In(app.Location).Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "content type (default from the file extension)")

	Cmd.AddCommand(uploadCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(linkCmd)
}
