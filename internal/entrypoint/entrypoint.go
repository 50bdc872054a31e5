package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/config"
	"github.com/booklend/booklend/internal/database"
	"github.com/booklend/booklend/internal/database/books"
	"github.com/booklend/booklend/internal/database/loans"
	"github.com/booklend/booklend/internal/database/users"
	http_controllers "github.com/booklend/booklend/internal/http"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it
// within the configured shutdown timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the database, repositories and authentication stack
// together and starts serving.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Booklend v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	booksRepo := books.NewRepository(db.DB)
	accountsRepo := users.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)

	authService := auth.NewService(accountsRepo, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying database handle: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Books:          booksRepo,
		Accounts:       accountsRepo,
		Loans:          loansRepo,
		AuthService:    authService,
		SessionManager: sessionManager,
		CSRFSecret:     resolveCSRFSecret(cfg),
		SecureCookies:  cfg.Auth.SecureCookies,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	})
}

// resolveCSRFSecret decodes the configured secret or generates an
// ephemeral one. A generated secret invalidates in-flight forms on
// restart, so production deployments should pin SESSION_SECRET.
func resolveCSRFSecret(cfg *config.Config) []byte {
	hexSecret := cfg.Auth.SessionSecret
	if hexSecret == "" {
		generated, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate session secret: %v", err)
		}
		log.Printf("SESSION_SECRET not set, generated an ephemeral one")
		hexSecret = generated
	}

	secret, err := hex.DecodeString(hexSecret)
	if err != nil {
		log.Fatalf("SESSION_SECRET must be a hex string: %v", err)
	}
	return secret
}
