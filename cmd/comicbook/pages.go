package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yuanying/comicbook/internal/blobstore"
)

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages <file.cbz>",
		Short: "Load every page once and report its handle",
		Long: `Load each section of the book the way a viewer would, print the
page handle, and unload it again. Useful for checking that every page of an
archive can be read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			keep, _ := cmd.Flags().GetBool("keep")

			store := blobstore.NewMemory("")
			book, cleanup, err := openBook(cmd.Context(), args[0], store, opts.Logger)
			if err != nil {
				return err
			}
			defer cleanup()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			failed := 0
			for i, s := range book.Sections {
				page, err := s.Load(cmd.Context())
				if err != nil {
					opts.Logger.Warn("failed to load page", "page", s.ID, "error", err)
					fmt.Fprintf(tw, "%d\t%s\tERROR\t%v\n", i+1, s.ID, err)
					failed++
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, s.ID, s.Size, page)
				if !keep {
					s.Unload()
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			opts.Logger.Debug("page handles before teardown", "live", store.Len())
			if failed > 0 {
				return fmt.Errorf("%d of %d pages failed to load", failed, len(book.Sections))
			}
			return nil
		},
	}
	cmd.Flags().Bool("keep", false, "Keep pages loaded until the book is closed")
	return cmd
}
