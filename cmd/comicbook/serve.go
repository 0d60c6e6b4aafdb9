package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuanying/comicbook/internal/blobstore"
	"github.com/yuanying/comicbook/internal/comic"
)

const blobPrefix = "/blob/"

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p><a href="/cover">Cover</a></p>
<ol>
{{range .Pages}}<li><a href="{{.URL}}">{{.Label}}</a></li>
{{end}}</ol>
</body>
</html>
`))

type indexPage struct {
	Title string
	Pages []indexEntry
}

type indexEntry struct {
	Label string
	URL   string
}

// pageServer serves a book's pages over HTTP. Pages are loaded on request
// and unloaded once they fall more than window pages from the last request.
type pageServer struct {
	book   *comic.Book
	store  *blobstore.Memory
	window int
	logger *slog.Logger

	mu     sync.Mutex
	loaded map[int]struct{}
}

func newPageServer(book *comic.Book, store *blobstore.Memory, window int, logger *slog.Logger) *pageServer {
	return &pageServer{
		book:   book,
		store:  store,
		window: window,
		logger: logger,
		loaded: make(map[int]struct{}),
	}
}

func (s *pageServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /cover", s.handleCover)
	mux.HandleFunc("GET /page/{href...}", s.handlePage)
	mux.Handle(blobPrefix, s.store)
	return mux
}

func (s *pageServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Title: s.book.Metadata.Title}
	for _, item := range s.book.TOC {
		u := url.URL{Path: "/page/" + item.Href}
		page.Pages = append(page.Pages, indexEntry{Label: item.Label, URL: u.EscapedPath()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Warn("failed to render index", "error", err)
	}
}

func (s *pageServer) handleCover(w http.ResponseWriter, r *http.Request) {
	data, err := s.book.Cover(r.Context())
	if err != nil {
		s.logger.Warn("failed to read cover", "error", err)
		http.Error(w, "cover unavailable", http.StatusInternalServerError)
		return
	}
	if mediaType := comic.MediaTypeOf(s.book.Sections[0].ID); mediaType != "" {
		w.Header().Set("Content-Type", mediaType)
	}
	_, _ = w.Write(data)
}

func (s *pageServer) handlePage(w http.ResponseWriter, r *http.Request) {
	href := r.PathValue("href")
	index := s.book.ResolveHref(href)
	if index == comic.NotFound {
		http.NotFound(w, r)
		return
	}

	err := s.withPage(r.Context(), index, func(page string) {
		http.Redirect(w, r, page, http.StatusSeeOther)
	})
	if err != nil {
		s.logger.Warn("failed to load page", "page", href, "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
	}
}

// withPage loads the page at index, unloads pages outside the window and
// calls fn with the page URL. The window cannot move until fn returns, so
// the URL stays live while fn uses it.
func (s *pageServer) withPage(ctx context.Context, index int, fn func(page string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.book.Sections[index].Load(ctx)
	if err != nil {
		return err
	}
	s.loaded[index] = struct{}{}
	for i := range s.loaded {
		if i < index-s.window || i > index+s.window {
			s.book.Sections[i].Unload()
			delete(s.loaded, i)
		}
	}
	s.logger.Debug("page window", "current", index, "loaded", len(s.loaded), "live", s.store.Len())

	fn(page)
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <file.cbz>",
		Short: "Serve the book's pages over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			window, _ := cmd.Flags().GetInt("window")
			if window < 0 {
				return fmt.Errorf("invalid --window %d: must not be negative", window)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := blobstore.NewMemory(blobPrefix)
			book, cleanup, err := openBook(ctx, args[0], store, opts.Logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newPageServer(book, store, window, opts.Logger).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				opts.Logger.Info("serving book", "title", book.Metadata.Title, "addr", addr, "pages", len(book.Sections))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			opts.Logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().Int("window", 2, "Pages kept loaded on each side of the last requested page")
	return cmd
}
