// Command repocertd is the hosted repocert service.
// It accepts assessment submissions from the CLI, serves the read API and
// badges, and handles GitHub App webhooks.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/repocert/repocert/internal/api"
	"github.com/repocert/repocert/internal/history"
	"github.com/repocert/repocert/internal/platform"
	ghsurface "github.com/repocert/repocert/internal/surface"
	"github.com/repocert/repocert/internal/tenant"
	"github.com/repocert/repocert/internal/webhook"
)

type config struct {
	Port        string
	DatabaseURL string
	APIToken    string

	// Blob storage. Exactly one backend is selected: GCS_BUCKET, then
	// S3_BUCKET, then local disk.
	LocalStoragePath string
	GCSBucket        string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string

	WebhookSecret string
	GitHubAppID   string
	GitHubKeyPath string
}

func loadConfig() config {
	return config{
		Port:             envOrDefault("PORT", "8080"),
		DatabaseURL:      envOrDefault("DATABASE_URL", "postgres://localhost:5432/repocert?sslmode=disable"),
		APIToken:         os.Getenv("REPOCERT_API_TOKEN"),
		LocalStoragePath: envOrDefault("LOCAL_STORAGE_PATH", "/var/lib/repocert"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		WebhookSecret:    os.Getenv("GITHUB_WEBHOOK_SECRET"),
		GitHubAppID:      os.Getenv("GITHUB_APP_ID"),
		GitHubKeyPath:    os.Getenv("GITHUB_PRIVATE_KEY_PATH"),
	}
}

func main() {
	cfg := loadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	storage, err := selectStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("initialize storage: %v", err)
	}

	tenantSvc := tenant.NewService(db)
	historySvc := history.NewService(db, tenantSvc, storage)
	apiHandler := api.NewHandler(db, tenantSvc, historySvc)

	publisher, err := buildPublisher(cfg)
	if err != nil {
		log.Fatalf("initialize GitHub publisher: %v", err)
	}
	webhookHandler := webhook.NewHandler([]byte(cfg.WebhookSecret), tenantSvc, historySvc, publisher)

	// Webhooks authenticate with an HMAC signature, so only the API routes
	// sit behind the bearer token check.
	apiMux := http.NewServeMux()
	apiHandler.RegisterRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/api/", api.BearerAuth(cfg.APIToken)(apiMux))
	mux.Handle("POST /v1/webhooks/github", webhookHandler)
	mux.HandleFunc("GET /healthz", healthHandler(db))

	handler := api.CORS(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("starting repocertd on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// selectStorage picks a blob backend from the environment. GCS wins over S3,
// S3 over local disk.
func selectStorage(ctx context.Context, cfg config) (history.StorageClient, error) {
	switch {
	case cfg.GCSBucket != "":
		log.Printf("using GCS storage bucket %s", cfg.GCSBucket)
		return history.NewGCSStorage(ctx, cfg.GCSBucket)
	case cfg.S3Bucket != "":
		log.Printf("using S3 storage bucket %s", cfg.S3Bucket)
		return history.NewS3Storage(ctx, history.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		log.Printf("using local storage at %s", cfg.LocalStoragePath)
		return history.NewLocalStorage(cfg.LocalStoragePath), nil
	}
}

// buildPublisher creates the GitHub App check run publisher, or returns nil
// when no App credentials are configured.
func buildPublisher(cfg config) (webhook.CheckRunPublisher, error) {
	if cfg.GitHubAppID == "" || cfg.GitHubKeyPath == "" {
		log.Println("no GitHub App credentials, check run publishing disabled")
		return nil, nil
	}

	appID, err := strconv.ParseInt(cfg.GitHubAppID, 10, 64)
	if err != nil {
		return nil, err
	}
	keyPEM, err := os.ReadFile(cfg.GitHubKeyPath)
	if err != nil {
		return nil, err
	}
	return ghsurface.NewGitHubPublisher(appID, keyPEM)
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
