package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/events"
	"github.com/charlie0129/battstat/pkg/presenter"
	"github.com/charlie0129/battstat/pkg/source"
)

type daemon struct {
	conf      config.Config
	hub       *events.Hub
	display   *presenter.Buffer
	presenter *presenter.Presenter
	history   *History
	registry  *prometheus.Registry
	metrics   *metrics
}

func newDaemon(conf config.Config) *daemon {
	hub := events.NewHub()
	display := &presenter.Buffer{}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &daemon{
		conf:      conf,
		hub:       hub,
		display:   display,
		presenter: presenter.New(hub, display, presenter.WithAutoRegister(conf.AutoRegister())),
		history:   NewHistory(conf.HistorySize()),
		registry:  reg,
		metrics:   newMetrics(reg),
	}
}

func (d *daemon) setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", d.getStatus)
	router.GET("/snapshot", d.getSnapshot)
	router.GET("/subscription", d.getSubscription)
	router.PUT("/subscription", d.subscribe)
	router.DELETE("/subscription", d.unsubscribe)
	router.GET("/history", d.getHistory)
	router.GET("/config", d.getConfig)
	router.GET("/version", getVersion)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{})))

	return router
}

// registerReceivers wires the always-on consumers of battery events.
func (d *daemon) registerReceivers() {
	filter := events.NewFilter(events.ActionBatteryChanged)
	d.hub.Register(d.metrics, filter)
	d.hub.Register(d.history, filter)
}

// Override adjusts the loaded config, e.g. from command line flags. It is
// applied at startup and again after every SIGHUP reload.
type Override func(config.Config) error

func applyOverrides(conf config.Config, overrides []Override) error {
	for _, o := range overrides {
		if err := o(conf); err != nil {
			return err
		}
	}
	return nil
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool, overrides ...Override) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	if err := applyOverrides(conf, overrides); err != nil {
		return err
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	src, err := source.New(conf.Source(), source.Options{
		SysfsRoot: conf.SysfsRoot(),
		Battery:   conf.BatteryName(),
		Index:     conf.BatteryIndex(),
	})
	if err != nil {
		logrus.Fatalf("failed to open battery source: %v", err)
	}
	logrus.WithField("source", src.Name()).Info("battery source opened")

	d := newDaemon(conf)
	router := d.setupRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.hub.Run(ctx)
	d.registerReceivers()

	var mqttClient mqtt.Client
	if broker := conf.MQTTBroker(); broker != "" {
		mqttClient, err = newMQTTClient(broker, conf.MQTTClientID())
		if err != nil {
			// Keep serving locally without MQTT.
			logrus.Errorf("failed to connect to MQTT broker: %v", err)
		} else {
			d.hub.Register(&mqttPublisher{
				client:  mqttClient,
				topic:   conf.MQTTTopic(),
				metrics: d.metrics,
			}, events.NewFilter(events.ActionBatteryChanged))
		}
	}

	var reporter *summaryReporter
	if schedule := conf.SummarySchedule(); schedule != "" {
		var pc publishClient
		if mqttClient != nil {
			pc = mqttClient
		}
		reporter, err = newSummaryReporter(d.history, schedule, pc, conf.MQTTTopic())
		if err != nil {
			logrus.Errorf("invalid summary schedule %q: %v", schedule, err)
		} else {
			reporter.Start()
		}
	}

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			if err := applyOverrides(conf, overrides); err != nil {
				logrus.Errorf("failed to apply overrides after reload: %v", err)
			}
			logrus.WithFields(conf.LogrusFields()).Infof("config reloaded, source and poll interval apply after restart")
		}
	}()

	srv := &http.Server{
		Handler: router,
	}

	// Remove a stale socket left by an unclean exit.
	if _, err := os.Stat(unixSocketPath); err == nil {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		_ = os.Remove(unixSocketPath)
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	go func() {
		logrus.Debugln("battery poller starts")

		source.NewPoller(src, d.hub, conf.PollInterval()).Run(ctx)
	}()

	d.presenter.Start()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	d.presenter.Stop()

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	shutdownCancel()

	if reporter != nil {
		reporter.Stop()
	}

	if mqttClient != nil {
		logrus.Info("disconnecting from MQTT broker")
		mqttClient.Disconnect(500)
	}

	cancel()

	logrus.Info("exiting")
	return nil
}
