package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"adda-backend/internal/attendance"
	_ "adda-backend/internal/docs"
	"adda-backend/internal/platform/auth"
	"adda-backend/internal/platform/config"
	"adda-backend/internal/platform/db"
	"adda-backend/internal/platform/events"
	"adda-backend/internal/platform/logger"
	"adda-backend/internal/platform/storage"
	"adda-backend/internal/share"
	"adda-backend/internal/users"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	envFile := flag.String("env", config.DefaultEnvFile, "optional .env file with secrets")
	flag.Parse()

	if err := run(*cfgPath, *envFile); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfgPath, envFile string) error {
	// load config
	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		return err
	}
	mode := cfg.Mode
	logger.Info("starting", "mode", mode, "version", cfg.Version)

	loc, err := attendance.LoadZone(cfg.Attendance.Timezone)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.EnsureSchema(ctx, conn); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("connected to DB", "db", cfg.DB.DBName)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	pub, err := events.New(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer pub.Close()

	var cache users.Cache
	if cfg.Redis.URL != "" {
		rc, err := users.NewRedisCache(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, leaderboard cache degraded", "err", err)
		}
		cache = rc
	}

	// services
	authSvc := auth.NewService(auth.NewStore(conn), []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	usersSvc := users.NewService(users.NewStore(conn), cache)
	authSvc.SetRankingInvalidator(usersSvc)
	attSvc := attendance.NewService(attendance.NewStore(conn), store, users.NewPoints(conn), attendance.Options{
		Bucket:         cfg.Storage.Bucket,
		Location:       loc,
		Cache:          usersSvc,
		Events:         pub,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	shareSvc, err := share.NewService(cfg.Server.PublicBaseURL)
	if err != nil {
		return err
	}

	if mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.Middleware(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	if mode == config.ModeDev {
		// CORS is only needed while the frontend runs on its own dev server
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "Location", "X-Request-ID"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowCredentials: true,
		}))
	}
	r.Use(auth.Sessions(cfg.SessionKey(), mode == config.ModeRelease))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if local, ok := store.(*storage.Local); ok {
		r.Static("/storage", local.Root())
	}

	auth.RegisterRoutes(r.Group("/auth"), authSvc)

	// /api/v1
	api := r.Group("/api/v1", auth.RequireAuth(authSvc))
	attendance.RegisterRoutes(api, attSvc)
	users.RegisterRoutes(api, usersSvc)
	share.RegisterRoutes(api, shareSvc)

	r.NoRoute(frontend(cfg.Server.WebDir))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// TLS
	tlsDir := "config/tls/" + mode
	certFile := path.Join(tlsDir, cfg.Certificate.Cert)
	keyFile := path.Join(tlsDir, cfg.Certificate.Key)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "tls", true)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}
	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// frontend serves the built single-page app from dir. Known files are served
// directly; any other path gets index.html so client-side routes such as
// /profile/<id> and the /auth/login page (the sign-out redirect target) load.
// Unmatched API calls and non-GET /auth requests get a JSON 404.
func frontend(dir string) gin.HandlerFunc {
	var fileFS fs.FS
	if dir != "" {
		fileFS = os.DirFS(dir)
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		page := c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
		if fileFS == nil || strings.HasPrefix(p, "/api/") || (strings.HasPrefix(p, "/auth/") && !page) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "no such route"}})
			return
		}

		reqPath := strings.TrimPrefix(path.Clean(p), "/")
		if reqPath == "" {
			reqPath = "index.html"
		}
		if serveFile(c, fileFS, reqPath, !strings.HasSuffix(reqPath, "index.html")) {
			return
		}
		if serveFile(c, fileFS, "index.html", false) {
			return
		}
		c.Status(http.StatusNotFound)
	}
}

func serveFile(c *gin.Context, fsys fs.FS, name string, immutable bool) bool {
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		return false
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		c.Header("Content-Type", ct)
	}
	if immutable {
		c.Header("Cache-Control", "public, max-age=86400, immutable")
	}
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), rs)
	return true
}
