//	@title			Galleria API
//	@version		1.0
//	@description	Authenticated image gallery over Postgres and S3-compatible object storage.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	SessionAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque session token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/galleria/service/internal/auth"
	"github.com/galleria/service/internal/config"
	"github.com/galleria/service/internal/db"
	"github.com/galleria/service/internal/image"
	appMiddleware "github.com/galleria/service/internal/middleware"
	"github.com/galleria/service/internal/session"
	"github.com/galleria/service/internal/storage"
	"github.com/galleria/service/internal/user"
	"github.com/galleria/service/internal/web"

	_ "github.com/galleria/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)

	sessionRepo := session.NewRepository(pool)
	sessionSvc := session.NewService(sessionRepo, cfg.SessionTTL)

	authSvc := auth.NewService(userSvc, sessionSvc)
	authHandler := auth.NewHandler(authSvc, cfg.SessionTTL, cfg.IsProduction())

	imageRepo := image.NewRepository(pool)
	imageSvc := image.NewService(imageRepo, store, cfg.SignedURLTTL)
	imageHandler := image.NewHandler(imageSvc, cfg.MaxUploadMB<<20)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Pages: the gallery redirects to /login without a session.
	r.Get("/", web.Page("index.html"))
	r.Get("/login", web.Page("login.html"))
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequirePage(sessionSvc))
		r.Get("/gallery", web.Page("gallery.html"))
	})

	// Public auth endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	// Session-gated API endpoints respond 401 instead of redirecting.
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(sessionSvc))
		r.Post("/upload", imageHandler.Upload)
		r.Get("/images", imageHandler.List)
		r.Delete("/images/{id}", imageHandler.Delete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
