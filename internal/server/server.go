package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/interact"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Catalog domain.Service
	Metrics *observability.Metrics `optional:"true"`
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	catalogSvc domain.Service
	metrics    *observability.Metrics
	engine     *gin.Engine
}

func NewServer(p Params) *Server {
	s := &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		catalogSvc: p.Catalog,
		metrics:    p.Metrics,
	}
	s.engine = NewEngine(s.log)
	s.RegisterRoutes(s.engine)
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// NewEngine builds a gin engine with recovery, request logging and a notice collector
// attached to every request context.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), collectNotices())
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})))
	}

	admin := r.Group("/admin")
	{
		admin.GET("/products", s.ListProducts)
		admin.POST("/products", s.CreateProduct)
		admin.POST("/products/reload", s.ReloadProducts)
		admin.GET("/products/export.xlsx", s.ExportProducts)
		admin.DELETE("/products/:id", s.DeleteProduct)
		admin.POST("/products/:id/edit", s.BeginEdit)

		admin.GET("/edit", s.GetEdit)
		admin.PATCH("/edit", s.ChangeEdit)
		admin.POST("/edit/save", s.SaveEdit)
		admin.POST("/edit/cancel", s.CancelEdit)
	}
}

func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("admin api listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("admin api stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	tracer := otel.Tracer("catalogadmin/server")
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		span.SetAttributes(attribute.String("request.id", requestID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			log.Error("request failed", fields...)
			return
		}
		log.Debug("request", fields...)
	}
}

func collectNotices() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := interact.WithCollector(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
