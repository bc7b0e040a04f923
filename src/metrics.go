package beacon

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the transmitter's observation port.  Every value is
// read at scrape time, so nothing is added to the tick path.
type Metrics struct {
	samplesTotal prometheus.CounterFunc
	cyclesTotal  prometheus.CounterFunc
	lastDACCode  prometheus.GaugeFunc
	dataPhase    prometheus.GaugeFunc
	frameInfo    *prometheus.GaugeVec
	slipsTotal   prometheus.Counter
}

func NewMetrics(tx *Transmitter) *Metrics {
	var m = &Metrics{
		samplesTotal: prometheus.NewCounterFunc(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "samples_total",
			Help:      "DAC samples generated.",
		}, func() float64 { return float64(tx.Samples()) }),

		cyclesTotal: prometheus.NewCounterFunc(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "cycles_total",
			Help:      "Complete preamble, data and guard cycles sent.",
		}, func() float64 { return float64(tx.Cycles()) }),

		lastDACCode: prometheus.NewGaugeFunc(prometheus.GaugeOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "last_dac_code",
			Help:      "Most recent DAC code written.",
		}, func() float64 { return float64(tx.LastCode()) }),

		dataPhase: prometheus.NewGaugeFunc(prometheus.GaugeOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "data_phase",
			Help:      "1 while sending data, 0 during the preamble.",
		}, func() float64 { return float64(tx.Phase()) }),

		frameInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "frame_info",
			Help:      "Constant 1, labelled with the frame being sent.",
		}, []string{"frame"}),

		slipsTotal: prometheus.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct
			Namespace: "beacon",
			Name:      "tick_slips_total",
			Help:      "Ticks dropped because the tick source fell behind.",
		}),
	}

	m.frameInfo.WithLabelValues(tx.Frame().String()).Set(1)

	return m
}

// Register adds all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.samplesTotal,
		m.cyclesTotal,
		m.lastDACCode,
		m.dataPhase,
		m.frameInfo,
		m.slipsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// RecordSlip is suitable for PacedTick.OnSlip.
func (m *Metrics) RecordSlip(missed uint64) {
	m.slipsTotal.Add(float64(missed))
}
