package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "loanbook-backend/docs"
	"loanbook-backend/internal/loans"
	"loanbook-backend/internal/notifications"
	"loanbook-backend/internal/platform/auth"
	"loanbook-backend/internal/platform/db"
	"loanbook-backend/internal/platform/events"
	"loanbook-backend/internal/platform/httpx"
	"loanbook-backend/internal/users"
)

// @title    Loanbook API
// @version  1.0
// @description Money and object loans between users.
// @BasePath /
func main() {
	// 設定読み込み（CONFIG_PATH で上書き可）
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = db.DefaultConfigPath
	}
	cfg, err := db.LoadConfig(path)
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: mode must be dev or release in config.yaml")
		return
	}

	// 金額は JSON 数値で返す
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: driver=%s", cfg.DB.Driver)

	// イベント配信（NATS 未設定なら捨てる）
	var pub events.Publisher = events.Nop{}
	if cfg.NATS.URL != "" {
		np, err := events.ConnectNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Printf("[WARN] NATS unavailable, events disabled: %v", err)
		} else {
			defer np.Close()
			pub = np
		}
	}

	hub := notifications.NewHub()
	go hub.Run(ctx)

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userSvc := users.NewService(conn, tokens)
	notifSvc := notifications.NewService(conn, users.NewStore(conn), hub)
	loanSvc := loans.NewService(conn, userSvc, notifSvc, pub)

	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), httpx.RequestID())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		origins := cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.HeaderUserID, httpx.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location", httpx.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := httpx.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	users.RegisterPublicRoutes(r, userSvc, limiter.Middleware())

	api := r.Group("/", auth.Identity(tokens, cfg.Auth.DefaultUserID))
	users.RegisterRoutes(api, userSvc)
	loans.RegisterRoutes(api, loanSvc)
	notifications.RegisterRoutes(api, notifSvc)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			certFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Key)
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] shutdown: %v", err)
	}
}
