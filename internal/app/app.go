package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phonegate/internal/config"
	"phonegate/internal/handlers"
	"phonegate/internal/models"
	"phonegate/internal/repositories"
	"phonegate/internal/routes"
	"phonegate/internal/services"
	"phonegate/internal/sms"
)

type App struct {
	Config *config.Config
	Engine *gin.Engine
	Log    *zap.Logger

	DB     *sql.DB
	Redis  *redis.Client
	Store  repositories.VerificationStore
	Users  repositories.UserDirectory
	Locker repositories.Locker
	Sender sms.Sender

	Issuer   *services.CodeIssuer
	Verifier *services.OTPVerifier
	Gate     *services.AccessGate
	Admin    *services.AdminService
	Profile  *services.ProfileService
}

type Option func(*App)

// WithSender replaces the configured SMS provider.
func WithSender(s sms.Sender) Option {
	return func(a *App) { a.Sender = s }
}

// NewLogger builds the process logger and installs it as zap's global.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Log: logger}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openLocker(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.Sender == nil {
		s, err := newSender(cfg.SMS)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Sender = s
	}

	a.Issuer = services.NewCodeIssuer(a.Store, a.Sender, a.Locker, cfg.SMS.Language, cfg.Gate.IssueLockTTL, logger)
	a.Verifier = services.NewOTPVerifier(a.Store, logger)
	a.Gate = services.NewAccessGate(a.Users, a.Store, a.Issuer, cfg.Gate.AllowedRoutes, cfg.Gate.FailClosed, logger)
	a.Admin = services.NewAdminService(a.Users, a.Store, logger)
	a.Profile = services.NewProfileService(a.Users, a.Store, logger)

	gin.SetMode(cfg.App.Mode)
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	routes.SetupRoutes(r, routes.Handlers{
		Verify: handlers.NewVerifyHandler(a.Users, a.Verifier, a.Issuer, cfg.Gate.LandingPath, cfg.SMS.Language),
		User:   handlers.NewUserHandler(a.Users, a.Store, a.Profile, cfg.SMS.Language),
		Admin:  handlers.NewAdminHandler(a.Admin, cfg.SMS.Language),
	}, routes.Options{
		JWTSecret:  []byte(cfg.JWT.Secret),
		VerifyPath: cfg.Gate.VerifyPath,
		Gate:       a.Gate,
		Users:      a.Users,
	})
	a.Engine = r
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Driver == "memory" {
		a.Log.Warn("Using in-memory storage, data is lost on restart")
		a.Store = repositories.NewMemoryVerificationStore()
		seed := make([]models.User, 0, len(cfg.Users))
		for _, u := range cfg.Users {
			user := models.User{ID: u.ID, RoleID: u.RoleID}
			if u.PhoneNumber != "" {
				phone := u.PhoneNumber
				user.PhoneNumber = &phone
			}
			seed = append(seed, user)
		}
		a.Users = repositories.NewMemoryUserDirectory(seed...)
		return nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.DB = db
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	repo := repositories.NewPhoneVerificationRepository(db)
	if cfg.Database.Migrate {
		if err := Migrate(ctx, db); err != nil {
			return err
		}
	}
	a.Store = repo
	a.Users = repositories.NewUserRepository(db)
	return nil
}

func (a *App) openLocker(ctx context.Context) error {
	cfg := a.Config
	if cfg.Redis.Addr == "" {
		a.Locker = repositories.NewMemoryLocker()
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.Redis = rdb
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	a.Locker = repositories.NewRedisLocker(rdb, cfg.Redis.Prefix)
	return nil
}

func newSender(cfg config.SMSConfig) (sms.Sender, error) {
	client := resty.New().SetTimeout(cfg.Timeout)
	switch cfg.Provider {
	case "mobizon":
		return sms.NewMobizonClient(cfg.Mobizon.APIKey, cfg.Mobizon.SenderID, cfg.Mobizon.Prefix, client), nil
	case "mobilpark":
		return sms.NewMobilParkClient(cfg.MobilPark.Username, cfg.MobilPark.Password, cfg.MobilPark.From, client), nil
	case "dry_run":
		return sms.DryRunSender{Sender: cfg.Mobizon.SenderID}, nil
	}
	return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
}

// Migrate runs the schema step for both tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := repositories.NewPhoneVerificationRepository(db).Migrate(ctx); err != nil {
		return err
	}
	return repositories.MigrateUsers(ctx, db)
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Failed to close database", zap.Error(err))
		}
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func Run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
