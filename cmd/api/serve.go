package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"newsnotes/cmd/internal/config"
	"newsnotes/cmd/internal/domain/database"
	"newsnotes/cmd/internal/domain/database/repository"
	"newsnotes/cmd/internal/domain/policy"
	"newsnotes/cmd/internal/http/handler"
	authmiddleware "newsnotes/cmd/internal/http/middleware"
	cognitoclient "newsnotes/cmd/internal/infrastructure/aws/cognito"
	"newsnotes/cmd/internal/infrastructure/aws/websocket"
	"newsnotes/cmd/internal/metrics"
	"newsnotes/cmd/internal/service"
	"newsnotes/cmd/internal/service/jobs"
	"newsnotes/cmd/internal/utils"
	"newsnotes/cmd/internal/utils/uid"
	"newsnotes/cmd/internal/utils/validators"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(parseLogLevel(cfg.LogLevel))

	if err = uid.Init(cfg.MachineID); err != nil {
		return err
	}

	db, err := database.Init(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	m, err := metrics.New()
	if err != nil {
		return err
	}

	validate := validators.New()
	guard := policy.NewGuard(cfg.LoginURL)
	guard.Observer = m.ObserveDecision

	// Getting repos
	newsRepo := repository.NewNewsRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	auth, verifier, err := newAuthenticator(ctx, cfg)
	if err != nil {
		return err
	}

	routes := &handler.Routes{Metrics: m.Handler()}

	// Live comments are only pushed when an API Gateway websocket endpoint is configured
	var notifier service.CommentNotifier
	if cfg.LiveCommentsEnabled() {
		gateway, err := websocket.NewAWSGatewayClient(ctx, cfg.WSGatewayEndpoint, cfg.WSGatewayRegion)
		if err != nil {
			return err
		}

		wsService := service.NewWebSocketService(connRepo, newsRepo, gateway)
		notifier = wsService
		routes.WS = handler.NewWSDefault(wsService)
		go jobs.NewConnectionCleaner(wsService).Start(ctx)
	}

	// Getting services
	newsService := service.NewNewsService(newsRepo, commentRepo, guard, validate, cfg.NewsCountOnHomePage, cfg.HomeCacheTTL)
	commentService := service.NewCommentService(commentRepo, newsRepo, guard, validate, notifier)
	noteService := service.NewNoteService(noteRepo, guard, validate)
	userService := service.NewUserService(userRepo, auth, validate)

	// Getting handlers
	routes.News = handler.NewNewsDefault(newsService)
	routes.Comments = handler.NewCommentDefault(commentService)
	routes.Notes = handler.NewNoteDefault(noteService)
	routes.Users = handler.NewUserDefault(userService, cfg.Production)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(parseLogLevel(cfg.LogLevel))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(requestLogger())
	e.Use(m.Middleware())
	e.Use(authmiddleware.NewIdentityMiddleware(&authmiddleware.IdentityMiddlewareConfig{
		UserRepo: userRepo,
		Verifier: verifier,
	}))

	handler.Register(e, routes)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newAuthenticator picks the identity provider and the matching session verifier.
func newAuthenticator(ctx context.Context, cfg *config.Config) (service.Authenticator, utils.TokenVerifier, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderCognito:
		client, err := cognitoclient.NewCognitoClient(ctx, cfg.CognitoRegion, cfg.CognitoAppClientID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init cognito client: %w", err)
		}

		verifier, err := utils.NewJWKSVerifier(cfg.CognitoRegion, cfg.CognitoPoolID, cfg.CognitoAppClientID)
		if err != nil {
			return nil, nil, err
		}
		return service.NewCognitoAuthenticator(client), verifier, nil

	default:
		tokens, err := utils.NewHMACTokens(cfg.SessionSecret, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return service.NewLocalAuthenticator(tokens), tokens, nil
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				log.Warnf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			log.Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	})
}
