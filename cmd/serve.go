package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rotkit/api/handler"
	apiMiddleware "rotkit/api/middleware"
	"rotkit/api/routes"
	"rotkit/config"
	"rotkit/internal/job"
	"rotkit/internal/repository"
	"rotkit/internal/service"
	"rotkit/internal/storage"
	"rotkit/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, newLogger(cfg))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	db, err := config.ConnectionDb(cfg)
	if err != nil {
		return err
	}

	otpStore, closeStore, err := newOTPStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	mailer, err := newEmailSender(cfg.Mail, logger)
	if err != nil {
		return err
	}

	var images service.ImageStore
	storageCfg := storage.S3Config(cfg.Storage)
	if storageCfg.Enabled() {
		store, err := storage.NewS3Store(ctx, storageCfg)
		if err != nil {
			return err
		}
		images = store
	} else {
		logger.Warn("S3 storage not configured, profile uploads disabled")
	}

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	sessionManager := &utils.JWTManager{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer}
	sessions := service.JWTSessionIssuer{Manager: sessionManager}
	challenges := newChallengeIssuer(cfg)

	clock := service.RealClock{}
	otpService := service.NewOTPService(otpStore, service.NewRandomCodeGenerator(), clock, logger, service.AuthConfig{
		OTPTTL: cfg.OTPTTL,
	})
	authService := service.NewAuthService(
		userRepo,
		adminRepo,
		securityRepo,
		otpService,
		mailer,
		service.BcryptPasswordHasher{Cost: 12},
		sessions,
		challenges,
		clock,
		logger,
	)
	profileService := service.NewProfileService(userRepo, adminRepo, securityRepo, images, clock, logger)

	validate := validator.New()
	authHandler := handler.NewAuthHandler(authService, validate, logger)
	authHandler.Cookies.Domain = cfg.CookieDomain
	authHandler.Cookies.Secure = cfg.CookieSecure
	profileHandler := handler.NewProfileHandler(profileService, logger)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestID())
	app.Use(echoMiddleware.BodyLimit("3M"))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"ip":         v.RemoteIP,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Tokens: sessions}
	router := routes.NewRouter(app, authHandler, profileHandler, authMiddleware, cfg.RatePerMinute)
	router.RegisterRoutes()

	scheduler := job.NewCronScheduler(logger)
	pruneJob := job.NewSecurityLogPruneJob(securityRepo, cfg.SecurityLogRetention, logger)
	if err := scheduler.AddJob(pruneJob, cfg.SecurityLogPruneSpec); err != nil {
		return fmt.Errorf("schedule %s: %w", pruneJob.Name(), err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		errCh <- app.StartServer(server)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// newChallengeIssuer keeps the challenge alive exactly as long as the OTP it guards.
func newChallengeIssuer(cfg *config.Config) service.ChallengeTokenIssuerJWT {
	return service.ChallengeTokenIssuerJWT{
		Secret: []byte(cfg.ChallengeJWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.OTPTTL,
	}
}

func newOTPStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (repository.OTPStore, func(), error) {
	if cfg.OTPStore == "memory" {
		logger.Warn("using in-process OTP store, codes are lost on restart and not shared between replicas")
		return repository.NewMemoryOTPStore(), func() {}, nil
	}
	client, err := config.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRedisOTPStore(client), func() { _ = client.Close() }, nil
}

func newEmailSender(cfg config.MailConfig, logger logrus.FieldLogger) (service.EmailSender, error) {
	switch cfg.Provider {
	case "resend":
		return service.NewResendEmailSender(cfg.ResendAPIKey, cfg.From)
	case "sendgrid":
		return service.NewSendgridEmailSender(cfg.SendgridAPIKey, cfg.From, cfg.FromName)
	case "smtp":
		return service.NewSMTPEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
	case "log":
		return service.LogEmailSender{Logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
}
