// Package server is the composition root: it builds every dependency from
// the configuration, mounts the routes and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config → sqlite.DB → repositories
//	SECRET_KEY → keys → Signer (cookies) + Sealer (tokens at rest)
//	reddit OAuth provider + API client factory → Publisher → PostService
//	services → handler.Handler → routes
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	"golang.org/x/oauth2"

	"github.com/daily3me/daily3/internal/auth"
	"github.com/daily3me/daily3/internal/cache"
	"github.com/daily3me/daily3/internal/config"
	"github.com/daily3me/daily3/internal/handler"
	"github.com/daily3me/daily3/internal/middleware"
	"github.com/daily3me/daily3/internal/model"
	"github.com/daily3me/daily3/internal/reddit"
	sqliteRepo "github.com/daily3me/daily3/internal/repository/sqlite"
	"github.com/daily3me/daily3/internal/service"
	"github.com/daily3me/daily3/web"
)

// feedCacheSize is the entry limit of the feed cache. Only one key is used.
const feedCacheSize = 16

// Server owns the router and the database connection.
type Server struct {
	router    *chi.Mux
	config    *config.Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	feedCache *cache.Memory[[]model.Post]
}

// New opens the database and wires every component.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setup(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setup() error {
	cfg := s.config

	keys, err := auth.DeriveKeys(cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("deriving keys: %w", err)
	}
	cookieMaxAge := time.Duration(cfg.CookieMaxAge) * time.Second
	signer, err := auth.NewSigner(keys.Cookie, cookieMaxAge)
	if err != nil {
		return fmt.Errorf("creating signer: %w", err)
	}
	sealer, err := auth.NewSealer(keys.Tokens)
	if err != nil {
		return fmt.Errorf("creating sealer: %w", err)
	}
	tokens := auth.NewTokenStore(s.db, sealer)

	// === REDDIT ===
	httpClient := reddit.NewHTTPClient(cfg.Reddit.UserAgent, cfg.Reddit.HTTPTimeout)
	provider := auth.NewRedditProvider(auth.ProviderConfig{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RedirectURL:  cfg.Reddit.RedirectURI,
		HTTPClient:   httpClient,
	})
	newAPI := func(ctx context.Context, tok *oauth2.Token) service.RedditAPI {
		return reddit.New(provider.Client(ctx, tok), reddit.WithUserAgent(cfg.Reddit.UserAgent))
	}

	publisher, err := service.NewPublisher(newAPI, provider, cfg.Reddit.Subreddit, cfg.Reddit.SubmitMode, s.logger)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}

	// === SERVICES ===
	s.feedCache = cache.NewMemory[[]model.Post](cache.Config{TTL: cfg.FeedCacheTTL, MaxSize: feedCacheSize})
	feed := service.NewFeedService(s.db, s.db, s.db, s.feedCache, cfg.FeedSize, s.logger)
	posts := service.NewPostService(s.db, s.feedCache, publisher, tokens, cfg.Reddit.PersistRefreshedTokens, s.logger)
	favorites := service.NewFavoriteService(s.db, s.logger)
	logins := service.NewAuthService(s.db, provider, newAPI, tokens, s.logger)

	// === TEMPLATES ===
	templates, err := web.Templates(cfg.TemplateDir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := handler.NewRenderer(templates, handler.TemplateFuncs(cfg.DateFormat, time.Now), s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}
	static, err := web.Static(cfg.StaticDir)
	if err != nil {
		return fmt.Errorf("loading static files: %w", err)
	}

	h := handler.New(handler.Deps{
		Feed:      feed,
		Posts:     posts,
		Favorites: favorites,
		Logins:    logins,
		Pinger:    s.db,
		Renderer:  renderer,
		GAID:      cfg.GAID,
		Logger:    s.logger,
	})

	lim, err := middleware.NewIPLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}

	resolver := auth.NewResolver(signer, s.db, s.db, provider, s.logger)
	cookies := auth.CookieOptions{MaxAge: cookieMaxAge, Secure: cfg.IsProduction()}

	Routes(s.router, h, Options{
		Visitor: auth.LoadVisitor(resolver, cookies),
		Limiter: lim,
		Static:  http.FileServerFS(static),
		Logger:  s.logger,
	})
	return nil
}

// Options carries the middleware and file server mounted by Routes.
type Options struct {
	Visitor func(http.Handler) http.Handler
	Limiter *limiter.Limiter
	Static  http.Handler
	Logger  *slog.Logger
}

// Routes mounts every route on r.
//
//	GET      /                      home feed
//	GET      /authorize             OAuth redirect target
//	GET      /me                    own profile
//	GET      /u/{username}          profile
//	GET      /favorites             own favorites
//	POST     /post_daily3           create today's post (user panel fragment)
//	GET|POST /favorite/{post_id}    toggle a favorite (plain text)
//	GET      /logout, /beta, /beta-off
//	GET      /_ah/warmup            readiness probe
//	GET      /static/*              assets
func Routes(r chi.Router, h *handler.Handler, o Options) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(o.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", o.Static))
	r.Get("/_ah/warmup", h.Warmup)

	r.Group(func(r chi.Router) {
		r.Use(o.Visitor)

		r.Get("/", h.Home)
		r.Get("/authorize", h.Authorize)
		r.Get("/me", h.Me)
		r.Get("/u/{username}", h.Profile)
		r.Get("/favorites", h.Favorites)
		r.Get("/logout", h.Logout)
		r.Get("/beta", h.BetaOn)
		r.Get("/beta-off", h.BetaOff)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(o.Limiter, o.Logger))
			r.Post("/post_daily3", h.PostDaily3)
			r.Get("/favorite/{post_id}", h.Favorite)
			r.Post("/favorite/{post_id}", h.Favorite)
		})

		r.NotFound(h.NotFound)
	})
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests
// and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
			slog.String("subreddit", s.config.Reddit.Subreddit),
			slog.String("submitMode", s.config.Reddit.SubmitMode),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully", slog.Any("feedCache", s.feedCache.Stats()))
	}

	return nil
}
