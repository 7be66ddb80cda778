package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weddingpress-web/internal/apiclient"
	"weddingpress-web/internal/config"
	"weddingpress-web/internal/handlers"
	"weddingpress-web/internal/middleware"
	"weddingpress-web/internal/migrations"
	"weddingpress-web/internal/repository"
	"weddingpress-web/internal/services"
	"weddingpress-web/internal/session"
	"weddingpress-web/internal/views"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sweepInterval = 10 * time.Minute

func Run() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Session storage
	store, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Session.Driver).Msg("Failed to open session store")
	}
	defer closeStore()

	// Backend client and repositories
	client := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	authRepo := repository.NewAuthRepository(client)
	publicRepo := repository.NewPublicRepository(client)
	weddingRepo := repository.NewWeddingRepository(client)
	eventRepo := repository.NewEventRepository(client)
	storyRepo := repository.NewStoryRepository(client)
	galleryRepo := repository.NewGalleryRepository(client)
	guestRepo := repository.NewGuestRepository(client)
	giftRepo := repository.NewGiftAccountRepository(client)
	guestBookRepo := repository.NewGuestBookRepository(client)
	mediaRepo := repository.NewMediaRepository(client)

	// Sessions; a 401 from the backend ends the admin session
	sessionManager := session.NewManager(store, authRepo, cfg.Session.TTL)
	client.OnUnauthorized = middleware.ForceLogout(sessionManager)

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go sessionManager.RunSweeper(sweepCtx, sweepInterval)

	// Initialize services
	statsService := services.NewStatsService(guestRepo, guestBookRepo)
	uploader, err := services.NewUploader(ctx, cfg, mediaRepo)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Upload.Driver).Msg("Failed to create uploader")
	}
	wsHub := services.NewWSHub(publicRepo, cfg.Guestbook.PollInterval)

	// Templates and cookies
	templates := views.NewTemplateCache()
	if err := templates.Load(views.FS()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}
	cookies := sessions.NewCookieStore([]byte(cfg.Session.CookieSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	pages := &handlers.Pages{
		Templates:  templates,
		Cookies:    cookies,
		CookieName: cfg.Session.CookieName,
	}
	live := handlers.NewLiveRegistry(append([]string{cfg.Server.PublicURL}, cfg.CSRF.TrustedOrigins...)...)
	debounce := cfg.Listing.Debounce

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionManager, pages)
	dashboardHandler := handlers.NewDashboardHandler(statsService, pages, cfg.Server.PublicURL)
	weddingHandler := handlers.NewWeddingHandler(weddingRepo, pages)
	uploadHandler := handlers.NewUploadHandler(uploader)
	importHandler := handlers.NewGuestImportHandler(guestRepo, pages, live)
	moderationHandler := handlers.NewGuestBookModerationHandler(guestBookRepo, pages, live, func(ctx context.Context) {
		wedding, err := weddingRepo.Get(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve wedding after moderation")
			return
		}
		wsHub.Refresh(ctx, wedding.ID)
	})
	invitationHandler := handlers.NewInvitationHandler(publicRepo, wsHub, pages)
	wsHandler := handlers.NewWebSocketHandler(wsHub, publicRepo)

	events := handlers.NewResourceHandler(handlers.EventsResource(eventRepo), pages, live, debounce)
	stories := handlers.NewResourceHandler(handlers.StoriesResource(storyRepo), pages, live, debounce)
	gallery := handlers.NewResourceHandler(handlers.GalleryResource(galleryRepo), pages, live, debounce)
	guests := handlers.NewResourceHandler(handlers.GuestsResource(guestRepo, cfg.Server.PublicURL), pages, live, debounce)
	gifts := handlers.NewResourceHandler(handlers.GiftsResource(giftRepo), pages, live, debounce)
	guestbook := handlers.NewResourceHandler(handlers.GuestBookResource(guestBookRepo), pages, live, debounce)

	protect := csrf.Protect(
		[]byte(cfg.CSRF.Key),
		csrf.Secure(cfg.CSRF.Secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(cfg.CSRF.TrustedOrigins),
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	// Public invitation pages
	r.Group(func(r chi.Router) {
		r.Use(corsMiddleware)
		invitationHandler.Routes(r, wsHandler.Routes)
	})

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/admin/login", authHandler.LoginPage)
		r.Post("/admin/login", authHandler.Login)
		r.Post("/admin/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cookies, cfg.Session.CookieName, sessionManager))
			r.Get("/admin", dashboardHandler.Show)
			r.Get("/admin/wedding", weddingHandler.Edit)
			r.Post("/admin/wedding", weddingHandler.Save)
			r.With(corsMiddleware).Post("/admin/api/upload", uploadHandler.Upload)

			events.Mount(r)
			stories.Mount(r)
			gallery.Mount(r)
			guests.Mount(r, importHandler.Routes)
			gifts.Mount(r)
			guestbook.Mount(r, moderationHandler.Routes)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("backend", cfg.Backend.BaseURL).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Stop guestbook pollers and close their connections
	wsHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openSessionStore builds the configured admin session store and applies its migrations
func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Session.Driver {
	case "sqlite":
		db, err := repository.OpenSQLite(cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(ctx, db, "sqlite"); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Session.SQLitePath).Msg("SQLite session store ready")
		return repository.NewSQLiteSessionStore(db), func() { db.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		if err := migrations.Up(ctx, db, "postgres"); err != nil {
			db.Close()
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("Database connection established")
		return repository.NewPostgresSessionStore(pool), func() {
			db.Close()
			pool.Close()
		}, nil

	default:
		log.Warn().Msg("Using in-memory session store; sessions are lost on restart")
		return repository.NewMemorySessionStore(), func() {}, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS for the JSON endpoints
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
