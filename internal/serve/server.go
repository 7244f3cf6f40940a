package serve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"devwrite/internal/api"
	"devwrite/internal/app"
	"devwrite/internal/build"
	"devwrite/internal/domain/config"
	"devwrite/internal/domain/content"
	"devwrite/internal/feed"
	"devwrite/internal/index"
	"devwrite/internal/mail"
	"devwrite/internal/markdown"
	"devwrite/internal/member"
	"devwrite/internal/notify"
	"devwrite/internal/render"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
)

// Options replaces collaborators that talk to the outside world. Nil
// fields are built from the config.
type Options struct {
	Notifier notify.Notifier
	Mailer   mail.Sender
}

type Server struct {
	cfg config.Config

	idx       *index.Store
	site      *app.Site
	membersDB *member.DB
	members   *member.Service
	sessions  *app.Sessions
	notifier  notify.Notifier
	api       *gin.Engine

	mu        sync.Mutex
	built     bool
	published map[string]struct{}

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, opts Options) (*Server, error) {
	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("serve: failed to open index: %w", err)
	}
	site, err := app.NewSite(cfg, st)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("serve: failed to create site: %w", err)
	}
	db, err := member.Open(cfg.Members.DBPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("serve: failed to open member database: %w", err)
	}

	if opts.Notifier == nil {
		opts.Notifier = notify.New(cfg.Notify.DiscordWebhook)
	}
	if opts.Mailer == nil {
		opts.Mailer = mail.NewSender(cfg.Mail)
	}

	s := &Server{
		cfg:       cfg,
		idx:       st,
		site:      site,
		membersDB: db,
		members:   member.NewService(member.NewRepository(db), opts.Mailer, cfg.Mail),
		sessions:  app.NewSessions(site.MD.Pipeline(), logClipboard{}, markdown.SystemClock, cfg.Render.CopyReset, 0),
		notifier:  opts.Notifier,
		published: make(map[string]struct{}),
		sseConns:  make(map[chan string]struct{}),
	}
	s.api = api.NewServer(api.NewHandler(site, s.members, s.sessions, s.notifier))
	return s, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.members.Wait()
	if err := s.membersDB.Close(); err != nil {
		log.Printf("[serve] close member database: %v", err)
	}
	if s.idx != nil {
		return s.idx.Close()
	}
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.rebuild(ctx); err != nil {
		return err
	}

	if err := s.startWatch(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("[serve] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler routes the site pages, the static assets, the dev event stream
// and the JSON API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/tags", s.handleTags)
	mux.HandleFunc("/tags/", s.handleTags)
	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/categories/", s.handleCategories)
	mux.HandleFunc("/join", s.handleJoin)
	mux.HandleFunc("/join/", s.handleJoin)
	mux.HandleFunc("/rss.xml", s.handleRSS)

	mux.HandleFunc("/dev/events", s.handleSSE)
	mux.Handle("/api/", s.api)

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFS()))))

	return mux
}

func (s *Server) rebuild(ctx context.Context) error {
	log.Printf("[serve] ingest from %s ...", s.cfg.Build.SourceDir)
	warns, n, err := build.Reindex(s.cfg, s.idx)
	if err != nil {
		return err
	}
	for _, w := range warns {
		log.Printf("[warn] %s: %s", w.Path, w.Msg)
	}
	log.Printf("[serve] ingested %d posts", n)

	if err := s.announceNew(ctx); err != nil {
		log.Printf("[serve] announce: %v", err)
	}

	log.Printf("[serve] rebuild complete")
	s.broadcastSSE("reload")

	return nil
}

// announceNew notifies about public posts that were not there at the
// previous rebuild. The first rebuild only records what exists.
func (s *Server) announceNew(ctx context.Context) error {
	metas, err := s.idx.List(index.ListOptions{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	var fresh []content.PostSummary
	current := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if !m.IsPublic() {
			continue
		}
		current[m.Slug] = struct{}{}
		if _, ok := s.published[m.Slug]; !ok && s.built {
			fresh = append(fresh, m)
		}
	}
	s.published = current
	s.built = true
	s.mu.Unlock()

	var errs []error
	for _, m := range fresh {
		if err := s.notifier.Published(ctx, m.Title, s.site.PostURL(m.Slug)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Slug, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.Walk(s.cfg.Build.SourceDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	log.Printf("[serve] watching for file changes ...")
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
				// new directories need their own watch
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
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
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			debounce.Stop()
			ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.rebuild(ctx2); err != nil {
				log.Printf("[serve] rebuild error: %v", err)
			}
			cancel()
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

// handleRoot serves the feed at "/" and posts or pages at "/<slug>".
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		s.handleFeed(w, r)
		return
	}
	slug := strings.Trim(r.URL.Path, "/")
	if slug == "" || strings.Contains(slug, "/") {
		s.handleNotFound(w, r)
		return
	}
	s.handlePost(w, r, slug)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	crit := feed.Criteria{
		Keyword:  q.Get("q"),
		Tag:      q.Get("tag"),
		Category: q.Get("category"),
		Order:    feed.Order(q.Get("order")),
	}

	htmlBytes, err := s.site.FeedPage(r.Context(), crit)
	if err != nil {
		log.Printf("render feed error: %v", err)
		http.Error(w, "render feed error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, slug string) {
	htmlBytes, fp, err := s.site.PostPage(r.Context(), slug, s.sessions.For(w, r))
	if err != nil {
		if errors.Is(err, index.ErrNotFound) {
			s.handleNotFound(w, r)
			return
		}
		log.Printf("render post error: %v", err)
		http.Error(w, "render post error", http.StatusInternalServerError)
		return
	}

	etag := fp.ETag()
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Cookie")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/tags" && r.URL.Path != "/tags/" {
		s.handleNotFound(w, r)
		return
	}
	htmlBytes, err := s.site.TagsPage(r.Context())
	if err != nil {
		log.Printf("render tags overview error: %v", err)
		http.Error(w, "render tags overview error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/categories" && r.URL.Path != "/categories/" {
		s.handleNotFound(w, r)
		return
	}
	htmlBytes, err := s.site.CategoriesPage(r.Context())
	if err != nil {
		log.Printf("render categories overview error: %v", err)
		http.Error(w, "render categories overview error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/join" && r.URL.Path != "/join/" {
		s.handleNotFound(w, r)
		return
	}
	htmlBytes, err := s.site.JoinPage(r.Context())
	if err != nil {
		log.Printf("render join error: %v", err)
		http.Error(w, "render join error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	data, err := s.site.RSS()
	if err != nil {
		log.Printf("render rss error: %v", err)
		http.Error(w, "render rss error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	htmlBytes, err := s.site.NotFoundPage(r.Context(), r.URL.Path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(htmlBytes)
}

// staticFS serves the theme's static directory over the built-in one.
func (s *Server) staticFS() fs.FS {
	lower, err := fs.Sub(render.DefaultTheme(), "static")
	if err != nil {
		panic(err)
	}
	dir := filepath.Join(s.cfg.Build.ThemeDir, s.cfg.Site.Theme, "static")
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return lower
	}
	return overlayFS{upper: os.DirFS(dir), lower: lower}
}

type overlayFS struct {
	upper, lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if f, err := o.upper.Open(name); err == nil {
		return f, nil
	}
	return o.lower.Open(name)
}

// logClipboard stands in for the browser clipboard on the server side.
type logClipboard struct{}

func (logClipboard) WriteText(text string) error {
	log.Printf("[copy] %d bytes copied", len(text))
	return nil
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
