package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"filelinkbot/database"
	"filelinkbot/services"
)

// UpdateHandler consumes telegram updates pushed to the webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

type Authenticator interface {
	Login(username, password string) (string, error)
	VerifyJWT(token string) (string, error)
}

type BatchReader interface {
	Resolve(ctx context.Context, batchID string) (*database.Batch, error)
}

type StateReader interface {
	Status(ctx context.Context, adminID int64) (database.AdminState, error)
}

type StatsReader interface {
	Get(ctx context.Context) (services.Stats, error)
}

type ChannelManager interface {
	List(ctx context.Context) ([]database.ForceSubChannel, error)
	Add(ctx context.Context, channelID int64, inviteLink string) error
	Remove(ctx context.Context, channelID int64) error
}

type Config struct {
	Port          int
	WebhookPath   string
	WebhookSecret string
	AdminID       int64
}

// Deps are the services behind the HTTP routes. A nil Auth disables the
// admin API.
type Deps struct {
	Updates  UpdateHandler
	Auth     Authenticator
	Batches  BatchReader
	State    StateReader
	Stats    StatsReader
	Channels ChannelManager
	Logger   *zap.Logger
}

type Server struct {
	cfg    Config
	deps   Deps
	router *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

// NewServer راه‌اندازی سرور API
func NewServer(cfg Config, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: gin.New(),
		logger: deps.Logger.With(zap.String("component", "api")),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))
	s.router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	s.setupRoutes()

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("api server listening", zap.Int("port", s.cfg.Port))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop متوقف کردن سرور
func (s *Server) Stop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.index)
	s.router.GET("/health", s.healthCheck)
	s.router.POST(s.cfg.WebhookPath, s.webhookSecretMiddleware(), s.webhook)

	s.router.POST("/api/admin/login", s.adminEnabledMiddleware(), s.login)

	admin := s.router.Group("/api/admin")
	admin.Use(s.adminEnabledMiddleware(), s.adminAuthMiddleware())
	{
		admin.GET("/state", s.getAdminState)
		admin.GET("/stats", s.getStats)
		admin.GET("/batches/:id", s.getBatch)
		admin.GET("/channels", s.listChannels)
		admin.POST("/channels", s.addChannel)
		admin.DELETE("/channels/:id", s.removeChannel)
	}
}
