package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	HTTP monitor for a running beacon.
 *
 *		/metrics	Prometheus.
 *		/frame		The frame being sent, by segment.
 *		/status		Phase, last DAC code, counters.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Monitor struct {
	tx       *Transmitter
	registry *prometheus.Registry
	metrics  *Metrics
	server   *http.Server
}

func NewMonitor(tx *Transmitter) (*Monitor, error) {
	var m = &Monitor{ //nolint:exhaustruct
		tx:       tx,
		registry: prometheus.NewRegistry(),
		metrics:  NewMetrics(tx),
	}

	if err := m.metrics.Register(m.registry); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var mux = http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct
	mux.HandleFunc("/frame", m.handleFrame)
	mux.HandleFunc("/status", m.handleStatus)

	m.server = &http.Server{ //nolint:exhaustruct
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return m, nil
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) Handler() http.Handler {
	return m.server.Handler
}

func (m *Monitor) handleFrame(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, m.tx.Frame().Segments())
}

func (m *Monitor) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "phase %s\n", m.tx.Phase())
	fmt.Fprintf(w, "last_dac_code %d\n", m.tx.LastCode())
	fmt.Fprintf(w, "samples %d\n", m.tx.Samples())
	fmt.Fprintf(w, "cycles %d\n", m.tx.Cycles())
}

/*-------------------------------------------------------------------
 *
 * Name:	Serve
 *
 * Purpose:	Listen on addr until ctx is done.
 *
 * Inputs:	announce	- Also announce with DNS-SD, using
 *				  name if given.
 *
 *--------------------------------------------------------------------*/

func (m *Monitor) Serve(ctx context.Context, addr string, announce bool, name string) error {
	var ln, listenErr = net.Listen("tcp", addr)
	if listenErr != nil {
		return fmt.Errorf("monitor: %w", listenErr)
	}

	var port = ln.Addr().(*net.TCPAddr).Port

	logger.Info("Monitor listening", "addr", ln.Addr().String())

	if announce {
		dns_sd_announce(ctx, name, port)
	}

	go func() {
		<-ctx.Done()

		var shutdownCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		m.server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	var err = m.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
