package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/billmal071/bookfinder/internal/catalog"
	"github.com/billmal071/bookfinder/internal/config"
	"github.com/billmal071/bookfinder/internal/logging"
	"github.com/billmal071/bookfinder/internal/session"
)

// newSession builds a session backed by the configured catalog client
func newSession() (*session.Session, error) {
	cfg := config.Get()

	var metrics *catalog.Metrics
	if metricsServer != nil {
		metrics = metricsServer.metrics
	}

	client, err := catalog.NewClient(catalog.Options{
		BaseURL:        cfg.Catalog.BaseURL,
		APIKey:         cfg.Catalog.APIKey,
		ConnectTimeout: cfg.Network.ConnectTimeout,
		ReadTimeout:    cfg.Network.ReadTimeout,
		UserAgent:      cfg.Network.UserAgent,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, err
	}

	sess := session.New(client)

	log := logging.For("cli")
	sess.Subscribe(func(st session.State) {
		log.WithFields(logrus.Fields{
			"phase":    st.Phase.String(),
			"token":    st.Token,
			"books":    len(st.Books),
			"selected": st.SelectedID,
		}).Debug("session state changed")
	})

	return sess, nil
}

// metricsEndpoint serves catalog metrics over HTTP while a command runs
type metricsEndpoint struct {
	metrics *catalog.Metrics
	server  *http.Server
}

func startMetrics(addr string) (*metricsEndpoint, error) {
	metrics := catalog.NewMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.For("metrics").WithError(err).Warn("metrics endpoint stopped")
		}
	}()
	logging.For("metrics").WithField("addr", ln.Addr().String()).Info("serving metrics")

	return &metricsEndpoint{metrics: metrics, server: srv}, nil
}

// Close stops the HTTP server
func (m *metricsEndpoint) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = m.server.Shutdown(ctx)
}
