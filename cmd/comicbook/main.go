package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuanying/comicbook/internal/archive"
	"github.com/yuanying/comicbook/internal/blobstore"
	"github.com/yuanying/comicbook/internal/comic"
)

type globalOptions struct {
	Logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comicbook",
		Short: "Inspect and serve comic book archives (CBZ)",
		Long: `comicbook opens image archives such as CBZ files as paginated books.

It reads ComicBookInfo metadata from the archive comment, orders the page
images, and can extract covers or serve the pages to a browser.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides --log-level)")

	cmd.AddCommand(newInfoCmd(), newCoverCmd(), newPagesCmd(), newServeCmd())
	return cmd
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Flags()
	levelName, _ := flags.GetString("log-level")
	format, _ := flags.GetString("log-format")
	verbose, _ := flags.GetBool("verbose")

	var level slog.Level
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return globalOptions{}, fmt.Errorf("invalid --log-level %q: must be debug, info, warn or error", levelName)
	}
	if verbose {
		level = slog.LevelDebug
	}

	logger, err := newLogger(cmd.ErrOrStderr(), format, level)
	if err != nil {
		return globalOptions{}, err
	}
	return globalOptions{Logger: logger}, nil
}

func newLogger(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: must be text or json", format)
	}
}

// openBook opens a CBZ file as a book. The caller must call the returned
// cleanup function, which destroys the book and closes the archive.
func openBook(ctx context.Context, path string, store blobstore.Store, logger *slog.Logger) (*comic.Book, func(), error) {
	z, err := archive.OpenZip(path)
	if err != nil {
		return nil, nil, err
	}

	book, err := comic.Open(ctx, z, z, comic.Options{Store: store, Logger: logger})
	if err != nil {
		z.Close()
		return nil, nil, fmt.Errorf("failed to open book %s: %w", path, err)
	}

	cleanup := func() {
		book.Destroy()
		if err := z.Close(); err != nil {
			logger.Warn("failed to close archive", "path", path, "error", err)
		}
	}
	return book, cleanup, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
