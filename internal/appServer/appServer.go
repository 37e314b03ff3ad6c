// launching the server, cache janitor and kafka warm-up consumer
package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/dynimage/config"
	"github.com/ds124wfegd/dynimage/internal/pkg/cache"
	"github.com/ds124wfegd/dynimage/internal/pkg/captcha"
	"github.com/ds124wfegd/dynimage/internal/pkg/kafka"
	"github.com/ds124wfegd/dynimage/internal/pkg/processor"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
	"github.com/ds124wfegd/dynimage/internal/pkg/storage"
	"github.com/ds124wfegd/dynimage/internal/service"
	"github.com/ds124wfegd/dynimage/internal/transport"
	"github.com/ds124wfegd/dynimage/internal/worker"
	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// application holds everything the http server and the background workers share.
type application struct {
	router   *gin.Engine
	cache    *cache.ResultCache
	render   service.RenderService
	producer kafka.Producer
}

func newApplication(cfg *config.Config) (*application, error) {
	fonts, err := raster.NewFontBook()
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	keys, err := captcha.DeriveKeys(cfg.Captcha.Secret)
	if err != nil {
		return nil, err
	}
	cipher, err := captcha.NewCipher(keys)
	if err != nil {
		return nil, err
	}

	registry, err := stage.NewRegistry(stage.Dependencies{
		Sources: storage.NewFileStorage(cfg.App.SourceRoot, cfg.App.FetchTimeout),
		Fonts:   fonts,
		Captcha: captcha.NewDistortion(fonts),
	})
	if err != nil {
		return nil, err
	}
	if err := stage.RegisterExtensions(registry, fonts); err != nil {
		return nil, err
	}
	creators, transformations := registry.IDs()
	logrus.WithFields(logrus.Fields{
		"creators":        creators,
		"transformations": transformations,
	}).Info("Stages registered")

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	} else {
		producer = kafka.NewMockProducer(cfg.Kafka.EventsTopic)
	}

	resultCache := cache.NewResultCache()
	renderService := service.NewRenderService(processor.NewExecutor(registry), resultCache, cipher, producer)
	captchaService := service.NewCaptchaService(cipher, service.CaptchaDefaults{
		Alphabet: cfg.Captcha.Alphabet,
		Length:   cfg.Captcha.Length,
		Width:    cfg.Captcha.Width,
		Height:   cfg.Captcha.Height,
	})

	return &application{
		router:   transport.InitRoutes(transport.NewHandler(renderService, captchaService)),
		cache:    resultCache,
		render:   renderService,
		producer: producer,
	}, nil
}

// applyLogLevel falls back to info on an unknown level.
func applyLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func NewServer(cfg *config.Config, v *viper.Viper) {

	logrus.SetFormatter(new(logrus.JSONFormatter))
	applyLogLevel(cfg.App.LogLevel)

	// only the log level is reloaded, everything else needs a restart
	v.OnConfigChange(func(e fsnotify.Event) {
		logrus.WithField("file", e.Name).Info("Config changed")
		applyLogLevel(v.GetString("app.log_level"))
	})
	v.WatchConfig()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := newApplication(cfg)
	if err != nil {
		logrus.Fatalf("error occured while building the application: %s", err.Error())
	}
	defer app.producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.NewCacheJanitor(app.cache, cfg.App.CacheSweepInterval).Start(ctx)
	if cfg.Kafka.Enabled {
		go kafka.StartWarmupConsumer(ctx, cfg.Kafka.Brokers, cfg.Kafka.WarmTopic, cfg.Kafka.GroupID, app.render.Warm)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, app.router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
