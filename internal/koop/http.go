// HTTP сервер сайта кооператива: публичное API, административное API под
// аутентификацией, живой редактор, файлы, карта сайта и фоновые задачи.
package koop

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/tarimkoop/koop/internal/koop/business"
	"github.com/tarimkoop/koop/internal/koop/config"
	"github.com/tarimkoop/koop/internal/koop/cronmanager"
	"github.com/tarimkoop/koop/internal/koop/editor"
	filestorage "github.com/tarimkoop/koop/internal/koop/file-storage"
	"github.com/tarimkoop/koop/internal/koop/maintenance"
	"github.com/tarimkoop/koop/internal/koop/notifications"
	tokenscache "github.com/tarimkoop/koop/internal/koop/tokens-cache"
)

const shutdownTimeout = 10 * time.Second

type Services struct {
	db          *gorm.DB
	cfg         *config.Config
	storage     filestorage.FileStorage
	bl          *business.Business
	realtime    *notifications.RealtimeService
	metrics     *Metrics
	captcha     *CaptchaSignatures
	tokensCache *tokenscache.TokensCache
	editorCfg   editor.Config
	version     string

	auth *Authentication
}

func NewServices(db *gorm.DB, cfg *config.Config, storage filestorage.FileStorage, version string) *Services {
	realtime := notifications.NewRealtimeService()
	metrics := NewMetrics()

	editorCfg := editor.DefaultConfig()
	editorCfg.SettleDelay = cfg.EditorSettleDelay
	editorCfg.LoadDelay = cfg.EditorLoadDelay

	return &Services{
		db:          db,
		cfg:         cfg,
		storage:     storage,
		bl:          business.NewBL(db, realtime),
		realtime:    realtime,
		metrics:     metrics,
		captcha:     NewCaptchaService(cfg.SecretKey, cfg.CaptchaDisabled, metrics.captchaReplays),
		tokensCache: tokenscache.NewTokensCache(),
		editorCfg:   editorCfg,
		version:     version,
	}
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Koop")
		return next(c)
	}
}

// NewEcho собирает маршруты и middleware.
func NewEcho(s *Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		if code >= http.StatusInternalServerError {
			slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		}
		EErrorMsgStatus(c, nil, code)
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "5M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/auth/files/"
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/ws/")
		},
	}))
	e.Use(s.metrics.Middleware())
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/sitemap.xml" || p == "/robots.txt"
		},
	}))

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")
	s.auth = AddAuthenticationServices(s.db, apiGroup, []byte(s.cfg.SecretKey), s.captcha, s.tokensCache)

	authGroup := apiGroup.Group("auth/",
		AuthMiddleware(AuthConfig{
			Secret:      []byte(s.cfg.SecretKey),
			DB:          s.db,
			TokensCache: s.tokensCache,
		}),
	)
	authGroup.POST("sign-out/", s.signOut)
	authGroup.GET("me/", s.getMe)
	authGroup.POST("me/password/", s.changePassword)

	s.AddSiteServices(e, apiGroup)
	s.AddNewsServices(apiGroup, authGroup)
	s.AddAnnouncementServices(apiGroup, authGroup)
	s.AddMemberServices(apiGroup, authGroup)
	s.AddBoardServices(apiGroup, authGroup)
	s.AddProjectServices(apiGroup, authGroup)
	s.AddFileServices(apiGroup, authGroup)
	s.AddEditorServices(authGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": s.version,
			"captcha": !s.cfg.CaptchaDisabled,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return e
}

// Server запускает фоновые задачи, сервер метрик и основной сервер. Возвращается после отмены ctx.
func Server(ctx context.Context, db *gorm.DB, cfg *config.Config, storage filestorage.FileStorage, version string) error {
	s := NewServices(db, cfg, storage, version)
	e := NewEcho(s)

	heartbeat := maintenance.NewHeartbeat(db, s.bl)
	cleaner := maintenance.NewAssetCleaner(db, storage)

	jobRegistry := cronmanager.JobRegistry{
		"heartbeat": cronmanager.Job{
			Func:     heartbeat.Run,
			Schedule: cfg.HeartbeatCron,
		},
		"assets_clean": cronmanager.Job{
			Func: func(ctx context.Context) error {
				_, err := cleaner.CleanAssets(ctx)
				return err
			},
			Schedule: cfg.AssetsCleanCron,
			Timeout:  10 * time.Minute,
		},
		"captcha_clean": cronmanager.Job{
			Func: func(context.Context) error {
				s.captcha.Clear()
				return nil
			},
			Schedule: "@hourly",
		},
	}

	cronManager := cronmanager.NewCronManager(jobRegistry)
	if err := cronManager.LoadJobs(); err != nil {
		return err
	}
	cronManager.Start()

	// Prometheus metrics
	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", s.metrics.Handler())
	go func() {
		if err := metricsServer.Start(":2112"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("Shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.realtime.CloseAll()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown server", "err", err)
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown metrics server", "err", err)
		}
		cronManager.Stop()
	}()

	slog.Info("Start server", "version", version, "addr", ":8080")
	if err := e.Start(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
