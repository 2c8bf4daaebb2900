package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	_ "marcenaria_mdf/docs" // generated by swag init
	"marcenaria_mdf/internal/adapter/http/handlers"
	"marcenaria_mdf/internal/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownGrace = 10 * time.Second

// Handlers groups every HTTP handler mounted under /v1.
type Handlers struct {
	Budgets   *handlers.BudgetHandler
	Customers *handlers.CustomerHandler
	Payments  *handlers.BillingPaymentHandler
	Reports   *handlers.ReportHandler
}

// Server is the wired API plus the resources it must release on shutdown.
type Server struct {
	engine *gin.Engine
	app    *App
	addr   string
}

// NewServer wires the application described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	app, err := buildApp(cfg)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[api] recovered from panic path=%s err=%v", c.Request.URL.Path, recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	Register(engine, cfg.APITokens, app.Handlers)

	return &Server{engine: engine, app: app, addr: ":" + cfg.Port}, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

// Serve listens until ctx is cancelled, then drains in-flight requests and
// closes the application's resources.
func (s *Server) Serve(ctx context.Context) error {
	defer s.app.Close()

	srv := &http.Server{Addr: s.addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[api] listening addr=%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[api] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Register mounts the /v1 API on r. Everything except ping needs a bearer token.
func Register(r gin.IRouter, tokens []string, h Handlers) {
	v1 := r.Group("/v1")
	addPingRoutes(v1)

	private := v1.Group("")
	private.Use(handlers.BearerAuth(tokens))
	addCustomerRoutes(private, h.Customers)
	addBudgetRoutes(private, h.Budgets)
	addPaymentRoutes(private, h.Payments)
	addReportRoutes(private, h.Reports)
}
