package serve

import (
	"context"
	"errors"
	"fmt"
	"github.com/fsnotify/fsnotify"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sitecms/internal/catalog"
	"sitecms/internal/domain/config"
	"sitecms/internal/forms"
	"sitecms/internal/metrics"
	"sitecms/internal/platform/logger"
	"sitecms/internal/render"
	"sitecms/internal/site"
	"sitecms/internal/source"
	"sync"
	"time"
)

type Server struct {
	site    config.SiteConfig
	cat     *catalog.Catalog
	forms   *forms.Service
	body    *render.BodyRenderer
	routes  *site.RouteBuilder
	log     *logger.Logger
	metrics *metrics.Metrics

	// watchDir is the local content root; empty disables live reload.
	watchDir string

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, cat *catalog.Catalog, submissions *forms.Service, log *logger.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		site:     cfg.Site,
		cat:      cat,
		forms:    submissions,
		body:     render.NewBodyRenderer(),
		routes:   &site.RouteBuilder{},
		log:      log,
		metrics:  m,
		sseConns: make(map[chan string]struct{}),
	}
	if cfg.Serve.LiveReload && cat.Mode() == source.ModeLocal {
		s.watchDir = cfg.Content.Root
	}
	return s
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Handler is the full route table wrapped in the request-id middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/content/{kind}", s.handleList)
	mux.HandleFunc("GET /api/content/{kind}/{id}", s.handleOne)
	mux.HandleFunc("GET /api/services", s.handleServices)
	mux.HandleFunc("GET /api/pages/{slug}/related", s.handleRelated)

	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("POST /api/careers", s.handleCareers)

	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /robots.txt", s.handleRobots)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	if s.watchDir != "" {
		mux.HandleFunc("GET /dev/events", s.handleSSE)
	}

	return s.withRequestID(mux)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s.watchDir != "" {
		if err := s.startWatch(ctx); err != nil {
			return fmt.Errorf("serve: watch %s: %w", s.watchDir, err)
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("listening", "addr", addr, "mode", s.cat.Mode(), "live_reload", s.watchDir != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		err = filepath.WalkDir(s.watchDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return
		}
		s.watcher = w
		go s.watchLoop(ctx)
	})
	return err
}

// watchLoop only tells connected browsers to reload. Local reads happen on
// every request, so there is nothing to rebuild.
func (s *Server) watchLoop(ctx context.Context) {
	s.log.Debug("watching content", "dir", s.watchDir)
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(200 * time.Millisecond)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				// new subdirectories need their own watch
				if isDir(ev.Name) {
					_ = s.watcher.Add(ev.Name)
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", "err", err)
		case <-debounce.C:
			debounce.Stop()
			s.log.Info("content changed, reloading clients")
			s.broadcastSSE("reload")
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		close(ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
