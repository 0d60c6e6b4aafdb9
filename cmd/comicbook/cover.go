package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuanying/comicbook/internal/thumbnail"
)

func newCoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <file.cbz>",
		Short: "Extract the cover image",
		Long: `Extract the first page of the book as its cover.

With --max-width the cover is re-encoded as a JPEG thumbnail no wider than
the given width; otherwise the original image bytes are written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			outputPath, _ := flags.GetString("output")
			maxWidth, _ := flags.GetInt("max-width")
			quality, _ := flags.GetInt("quality")

			if maxWidth < 0 {
				return fmt.Errorf("invalid --max-width %d: must not be negative", maxWidth)
			}
			if quality < 1 || quality > 100 {
				return fmt.Errorf("invalid --quality %d: must be between 1 and 100", quality)
			}

			book, cleanup, err := openBook(cmd.Context(), args[0], nil, opts.Logger)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := book.Cover(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read cover: %w", err)
			}

			ext := filepath.Ext(book.Sections[0].ID)
			if maxWidth > 0 {
				thumb, err := thumbnail.Make(data, thumbnail.Options{MaxWidth: maxWidth, JPEGQuality: quality})
				if err != nil {
					return fmt.Errorf("failed to make thumbnail: %w", err)
				}
				data = thumb.Data
				ext = ".jpg"
				opts.Logger.Debug("cover thumbnail", "width", thumb.Width, "height", thumb.Height)
			}

			if outputPath == "" {
				outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".cover" + ext
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write cover: %w", err)
			}

			opts.Logger.Info("wrote cover", "path", outputPath, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: input with .cover.<ext> suffix)")
	cmd.Flags().Int("max-width", 0, "Resize the cover to at most this width and encode as JPEG")
	cmd.Flags().Int("quality", 85, "JPEG quality for thumbnails (1-100)")
	return cmd
}
