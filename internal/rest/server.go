package rest

import (
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/redis/rueidis"
	"github.com/uptrace/bunrouter"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database"
	"github.com/wardenhq/warden/internal/moderation"
	"github.com/wardenhq/warden/internal/rest/handler"
	"github.com/wardenhq/warden/internal/rest/middleware/ratelimit"
	restTypes "github.com/wardenhq/warden/internal/rest/types"
	"github.com/wardenhq/warden/internal/setup/config"
)

// Server implements the REST API service.
type Server struct {
	moderationHandler *handler.ModerationHandler
	recordHandler     *handler.RecordHandler
	startTime         time.Time
	logger            *zap.Logger
}

// NewServer creates the API handler. The dispatcher is shared with the
// bot so both surfaces apply identical validation and auditing.
func NewServer(
	dispatcher *moderation.Dispatcher,
	db database.Client,
	redisClient rueidis.Client,
	cfg *config.API,
	logger *zap.Logger,
) http.Handler {
	logger = logger.Named("api")

	server := &Server{
		moderationHandler: handler.NewModerationHandler(dispatcher, logger),
		recordHandler:     handler.NewRecordHandler(db, logger),
		startTime:         time.Now(),
		logger:            logger,
	}

	rateLimiter := ratelimit.New(
		redisClient,
		cfg.RateLimit,
		time.Duration(cfg.RateWindow)*time.Second,
		logger,
	)

	router := bunrouter.New()

	router.Use(
		server.logRequests,
		rateLimiter.AsRESTMiddleware,
	).WithGroup("/v1/moderation", func(g *bunrouter.Group) {
		g.POST("/:action", server.moderationHandler.ExecuteAction)
		g.GET("/warnings/:guildID", server.recordHandler.GetWarnings)
		g.GET("/bans/:guildID/:userID", server.recordHandler.GetActiveBan)
	})

	router.GET("/health", server.health)

	return gzhttp.GzipHandler(router)
}

// health reports process liveness and uptime.
func (s *Server) health(w http.ResponseWriter, _ bunrouter.Request) error {
	return bunrouter.JSON(w, restTypes.HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

// logRequests logs each request with its duration.
func (s *Server) logRequests(next bunrouter.HandlerFunc) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		start := time.Now()
		err := next(w, req)

		s.logger.Debug("Request handled",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", time.Since(start)))

		return err
	}
}
