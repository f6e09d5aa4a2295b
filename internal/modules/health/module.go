package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/internal/trader"
	"signal_bot/pkg/logger"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Service.HealthAddr}
}

// Trades источник снапшота активных сделок.
type Trades interface {
	ActiveTrades() map[string]models.TradeSummary
	ActiveCount() int
}

func NewRouter(state *service.State, trades Trades) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// liveness: процесс жив
	r.GET("/livez", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/readyz", func(c *gin.Context) {
		if !state.Ready() {
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
		c.String(http.StatusOK, "ready")
	})

	r.GET("/healthz", func(c *gin.Context) {
		var last int64
		if t := state.LastSignal(); !t.IsZero() {
			last = t.Unix()
		}
		c.JSON(http.StatusOK, gin.H{
			"ready":          state.Ready(),
			"uptimeSec":      int64(state.Uptime().Seconds()),
			"lastSignalUnix": last,
			"signalsSeen":    state.SignalsSeen(),
			"activeTrades":   trades.ActiveCount(),
		})
	})

	r.GET("/trades", func(c *gin.Context) {
		c.JSON(http.StatusOK, trades.ActiveTrades())
	})

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg Config, state *service.State, r *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("health http: %v", err)
				}
			}()
			state.SetReady(true)
			logger.Info("health http on %s", cfg.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewRouter,
			func(t *trader.Trader) Trades { return t },
		),
		fx.Invoke(RunHTTP),
	)
}
