package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"testimonials/internal/app"
	"testimonials/internal/notify"
	"testimonials/internal/reviews"
	synchub "testimonials/internal/sync"
	"testimonials/pkg/logging"
	"testimonials/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "config file (default ./testimonials.yaml)")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api server failed", zap.Error(err))
	}
}

func run(cfg utils.Config, logger *zap.Logger) error {
	ctx := context.Background()

	hub := synchub.NewHub()
	publishers := synchub.Multi{hub}

	if cfg.Kafka.Enabled {
		kafka, err := synchub.DialKafka(cfg.Kafka.BrokerList(), cfg.Kafka.Topic, logger)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publishers = append(publishers, kafka)
		logger.Info("kafka events enabled", zap.String("topic", cfg.Kafka.Topic))
	}

	var udp *notify.Server
	if cfg.Notify.Enabled {
		udp = notify.NewServer(cfg.Notify.Addr, nil, logger)
		if err := udp.Listen(); err != nil {
			return err
		}
		defer udp.Close()
		publishers = append(publishers, udp)
	}

	a, err := app.New(ctx, cfg, logger, publishers)
	if err != nil {
		return err
	}
	defer a.Close()

	renderer, err := reviews.NewRenderer()
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.GinLogger(logger))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", synchub.WSHandler(hub, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Driver})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := a.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"store_error": err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"store":       "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/", func(c *gin.Context) {
		lang := reviews.NegotiateLang(c.GetHeader("Accept-Language"))
		c.Redirect(http.StatusFound, lang.TestimonialsPath())
	})

	handler := reviews.NewHandler(a.Service, renderer, logger)
	handler.RegisterPageRoutes(router)
	handler.RegisterAPIRoutes(router.Group("/api"))

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)
	var wg gosync.WaitGroup

	var tcpSrv *synchub.Server
	if cfg.Sync.Enabled {
		tcpSrv = synchub.NewServer(cfg.Sync.Addr, hub, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	if udp != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := udp.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Warn("tcp shutdown", zap.Error(err))
		}
	}

	if udp != nil {
		if err := udp.Close(); err != nil {
			logger.Warn("udp shutdown", zap.Error(err))
		}
	}

	wg.Wait()
	logger.Info("servers stopped")
	return runErr
}
