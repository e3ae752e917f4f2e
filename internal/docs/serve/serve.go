// Package serve runs the local preview server: a static file server over
// site_dir plus a watcher that rebuilds the site when docs_dir or the
// configuration changes. A failed rebuild keeps the last good site on
// disk, so the preview never goes blank mid-edit.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/riemax-project/riemax/internal/docs/config"
	"github.com/riemax-project/riemax/internal/docs/site"
)

// debounceDelay batches bursts of filesystem events (editors write several
// times per save) into one rebuild.
const debounceDelay = 400 * time.Millisecond

// Server is the preview server.
type Server struct {
	configPath string
	addr       string
	log        logr.Logger

	rebuild chan struct{}
}

// New creates a preview server. configPath may be empty to use the default
// config lookup; addr is the listen address, e.g. "127.0.0.1:8000".
func New(configPath, addr string, log logr.Logger) *Server {
	return &Server{
		configPath: configPath,
		addr:       addr,
		log:        log,
		rebuild:    make(chan struct{}, 1),
	}
}

// Run builds the site, then serves it until ctx is cancelled, rebuilding
// on changes under docs_dir or to the config file.
func (s *Server) Run(ctx context.Context) error {
	cfg, err := s.build(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.watchPaths(watcher, cfg); err != nil {
		return err
	}

	go s.watchLoop(ctx, watcher)
	go s.rebuildLoop(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  chiLogger{s.log},
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)
	router.Handle("/*", fileServer(cfg.SiteDir))

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", "addr", s.addr, "site_dir", cfg.SiteDir)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// build loads the configuration and runs one full site build.
func (s *Server) build(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}

	report, err := site.New(cfg, s.log).Build(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range report.Warnings {
		s.log.Info("build warning", "warning", w)
	}
	return cfg, nil
}

// watchPaths registers docs_dir (recursively) and the config file.
func (s *Server) watchPaths(watcher *fsnotify.Watcher, cfg *config.Config) error {
	err := filepath.WalkDir(cfg.DocsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != cfg.DocsDir {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch docs dir: %w", err)
	}

	for _, candidate := range []string{s.configPath, "docs.yml", "docs.yaml", "mkdocs.yml"} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			if err := watcher.Add(candidate); err != nil {
				return fmt.Errorf("watch config file: %w", err)
			}
			break
		}
	}
	return nil
}

// watchLoop debounces filesystem events into rebuild requests.
func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			// New directories need to join the watch set.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			s.log.V(1).Info("change detected", "path", event.Name, "op", event.Op.String())

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case s.rebuild <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Error(err, "watcher error")
		}
	}
}

// rebuildLoop serializes rebuilds. A failed rebuild logs the error and
// leaves the previous site output in place.
func (s *Server) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rebuild:
			if _, err := s.build(ctx); err != nil {
				s.log.Error(err, "rebuild failed, keeping previous site")
			}
		}
	}
}

// fileServer serves site_dir with directory URLs resolving to index.html.
func fileServer(siteDir string) http.Handler {
	fsHandler := http.FileServer(http.Dir(siteDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Pretty URLs: /guide/ is a directory with an index.html inside.
		path := filepath.Join(siteDir, filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/")))
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(path, "index.html")); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		fsHandler.ServeHTTP(w, r)
	})
}

// chiLogger adapts logr to chi's request log format.
type chiLogger struct {
	log logr.Logger
}

func (l chiLogger) Print(v ...interface{}) {
	l.log.V(1).Info(fmt.Sprint(v...))
}

// DefaultAddr is the preview listen address when none is given.
var DefaultAddr = net.JoinHostPort("127.0.0.1", "8000")
