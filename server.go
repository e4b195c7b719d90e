package main

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clubdash/pkg/adjust"
	"clubdash/pkg/auth"
	"clubdash/pkg/config"
	"clubdash/pkg/metrics"
	"clubdash/pkg/store"
	"clubdash/process/receipts"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	noticeUnavailable = "Não foi possível carregar os dados agora. Tente novamente em instantes."
	noticeWriteFailed = "Não foi possível salvar agora. Tente novamente em instantes."
	dateLayout        = "2006-01-02"
)

type server struct {
	cfg      config.Config
	db       *gorm.DB
	store    store.Store
	issuer   *auth.Issuer
	adj      adjust.Store
	metrics  *metrics.Registry
	receipts *receipts.Ingester
	log      *slog.Logger
	now      func() time.Time
}

func newServer(cfg config.Config, db *gorm.DB, adj adjust.Store, log *slog.Logger, now func() time.Time) *server {
	m := metrics.New()
	st := store.NewGorm(db, store.WithLogger(log), store.WithClock(now), store.WithChangeHook(m.Mutation))
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret))
	issuer.Now = now
	return &server{
		cfg:     cfg,
		db:      db,
		store:   st,
		issuer:  issuer,
		adj:     adj,
		metrics: m,
		receipts: &receipts.Ingester{
			Store:         st,
			Extract:       receipts.TesseractExtractor("por"),
			MinConfidence: cfg.OCRMinConfidence,
			Metrics:       m,
			Log:           log,
			Now:           now,
		},
		log: log,
		now: now,
	}
}

func (s *server) setupRoutes(r *gin.Engine) {
	registerValidators()
	r.Use(gin.Recovery(), requestID(), s.requestLogger(), s.metrics.Middleware())

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	r.POST("/login", s.loginHandler)
	r.POST("/refresh", s.refreshHandler)
	r.POST("/logout", s.logoutHandler)

	authGroup := r.Group("")
	authGroup.Use(s.jwtAuthMiddleware())
	authGroup.GET("/me", s.meHandler)
	authGroup.GET("/overview", s.overviewHandler)
	authGroup.GET("/members", s.listMembersHandler)
	authGroup.GET("/members/:id", s.getMemberHandler)
	authGroup.GET("/events", s.listEventsHandler)
	authGroup.GET("/events/:id", s.getEventHandler)
	authGroup.GET("/events/:id/attendance", s.attendanceHandler)
	authGroup.GET("/events/:id/rollcall", s.rollCallHandler)
	authGroup.GET("/transactions", s.listTransactionsHandler)
	authGroup.GET("/dues", s.duesHandler)
	authGroup.GET("/projection", s.projectionHandler)

	admin := authGroup.Group("")
	admin.Use(requireAdmin())
	admin.POST("/members", s.createMemberHandler)
	admin.PUT("/members/:id", s.updateMemberHandler)
	admin.DELETE("/members/:id", s.deleteMemberHandler)
	admin.POST("/events", s.createEventHandler)
	admin.PUT("/events/:id", s.updateEventHandler)
	admin.DELETE("/events/:id", s.deleteEventHandler)
	admin.POST("/events/:id/attendance", s.recordAttendanceHandler)
	admin.DELETE("/events/:id/attendance/:memberId", s.deleteAttendanceHandler)
	admin.POST("/transactions", s.createTransactionHandler)
	admin.DELETE("/transactions/:id", s.deleteTransactionHandler)
	admin.PUT("/dues/:memberId", s.setDuesHandler)
	admin.PUT("/projection/adjustments", s.setAdjustmentHandler)
	admin.DELETE("/projection/adjustments", s.resetAdjustmentsHandler)
	admin.POST("/receipts", s.uploadReceiptHandler)
	admin.GET("/receipts", s.listReceiptsHandler)
	admin.POST("/users", s.createUserHandler)
}

// registerValidators adds the isodate tag (YYYY-MM-DD) to gin's validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(dateLayout, fl.Field().String())
			return err == nil
		})
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *server) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < 8 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		claims, err := s.issuer.Parse(authHeader[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("sid", claims.SessionID)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !roleOf(c).CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func roleOf(c *gin.Context) auth.Role {
	v, _ := c.Get("role")
	r, _ := v.(auth.Role)
	return r
}

// readFailed answers a read whose data could not be loaded: the body keeps
// its empty shape and carries a notice.
func (s *server) readFailed(c *gin.Context, err error, body gin.H) {
	s.log.Warn("read degraded", "path", c.FullPath(), "err", err, "request_id", c.GetString("request_id"))
	body["notice"] = noticeUnavailable
	c.JSON(http.StatusOK, body)
}

// writeFailed maps a mutation error to its status code.
func (s *server) writeFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("write failed", "path", c.FullPath(), "err", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable", "notice": noticeWriteFailed})
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func (s *server) receiptDir() string {
	return filepath.Join(s.cfg.UploadBase, "receipts")
}
