package loop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"regloop/internal/law"
)

// stubLaw records every evaluation and can be made to blow up.
type stubLaw struct {
	out      float64
	explode  bool
	resets   int
	evaluate int
	lastSP   float64
	lastPV   float64
	lastFF   float64
}

func (l *stubLaw) Evaluate(sp, pv, ff float64) float64 {
	if l.explode {
		panic("law blew up")
	}
	l.evaluate++
	l.lastSP, l.lastPV, l.lastFF = sp, pv, ff
	return l.out
}

func (l *stubLaw) Reset() { l.resets++ }

func (l *stubLaw) OutputBounds() (lo, hi float64) { return -5, 5 }

// logSink captures slog records for assertions.
type logSink struct {
	records []slog.Record
}

func (s *logSink) Enabled(context.Context, slog.Level) bool { return true }
func (s *logSink) Handle(_ context.Context, r slog.Record) error {
	s.records = append(s.records, r)
	return nil
}
func (s *logSink) WithAttrs([]slog.Attr) slog.Handler { return s }
func (s *logSink) WithGroup(string) slog.Handler      { return s }

func (s *logSink) count(level slog.Level) int {
	n := 0
	for _, r := range s.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

var _ = Describe("Construction", func() {
	It("requires a control law", func() {
		_, err := New(Config{Period: 0.01})
		Expect(err).To(MatchError(ErrNoLaw))
	})

	It("requires a positive period", func() {
		_, err := New(Config{Law: &stubLaw{}, Period: -1})
		Expect(err).To(MatchError(ErrBadPeriod))
		_, err = New(Config{Law: &stubLaw{}})
		Expect(err).To(MatchError(ErrBadPeriod))
	})

	It("takes the period from a sampled law", func() {
		cfg := FromLaw("pid", law.NewPID(1, 0, 0, 0.02))
		c, err := New(cfg)
		Expect(err).ToNot(HaveOccurred())
		Expect(c.Period()).To(Equal(0.02))
	})

	It("rejects a period that disagrees with the law's", func() {
		_, err := New(Config{Law: law.NewPID(1, 0, 0, 0.02), Period: 0.01})
		Expect(err).To(MatchError(ErrPeriodMismatch))
	})

	It("accepts a period that matches the law's", func() {
		c, err := New(Config{Law: law.NewPID(1, 0, 0, 0.02), Period: 0.02})
		Expect(err).ToNot(HaveOccurred())
		Expect(c.Period()).To(Equal(0.02))
	})

	It("rejects a negative tolerance", func() {
		_, err := New(Config{Law: &stubLaw{}, Period: 0.01, Tolerance: -1e-9})
		Expect(err).To(MatchError(ErrBadTolerance))
	})

	It("rejects an initial setpoint that disagrees with its binding", func() {
		_, err := New(Config{
			Law:      &stubLaw{},
			Period:   0.01,
			Setpoint: Float(2.0),
			Bindings: Bindings{
				ReadSetpoint: func(t float64) (float64, error) { return 3.0, nil },
			},
		})
		Expect(err).To(MatchError(ErrInitMismatch))
	})

	It("accepts an initial process value its binding confirms", func() {
		c, err := New(Config{
			Law:     &stubLaw{},
			Period:  0.01,
			Process: Float(1.5),
			Bindings: Bindings{
				ReadProcess: func() (float64, error) { return 1.5, nil },
			},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(c.Process()).To(Equal(1.5))
	})

	It("fails construction when a probe read fails", func() {
		_, err := New(Config{
			Law:      &stubLaw{},
			Period:   0.01,
			Setpoint: Float(2.0),
			Bindings: Bindings{
				ReadSetpoint: func(t float64) (float64, error) { return 0, errors.New("sensor offline") },
			},
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("sensor offline"))
	})

	It("derives the error from the initial values", func() {
		c, err := New(Config{
			Law: &stubLaw{}, Period: 0.01,
			Setpoint: Float(3.0), Process: Float(1.0),
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(c.Error()).To(Equal(2.0))
	})

	It("starts with an undefined output", func() {
		c, _ := New(Config{Law: &stubLaw{}, Period: 0.01})
		Expect(math.IsNaN(c.Output())).To(BeTrue())
	})
})

var _ = Describe("Tick", func() {
	var (
		l    *stubLaw
		sink *logSink
		c    *Controller
	)

	newController := func(cfg Config) *Controller {
		cfg.Logger = slog.New(sink)
		ctl, err := New(cfg)
		Expect(err).ToNot(HaveOccurred())
		return ctl
	}

	BeforeEach(func() {
		l = &stubLaw{out: 1.0}
		sink = &logSink{}
		c = newController(Config{Name: "tank", Law: l, Period: 0.01, Record: true})
	})

	It("runs the documented fixed-period scenario", func() {
		Expect(c.Tick(0.005)).To(BeFalse())
		Expect(c.Stats().Updates).To(BeZero())

		Expect(c.Tick(0.01)).To(BeTrue())
		Expect(c.Stats().Updates).To(Equal(uint64(1)))
		Expect(c.NextDue()).To(BeNumerically("~", 0.02, 1e-12))

		Expect(c.Tick(0.02)).To(BeTrue())
		Expect(c.Stats().Updates).To(Equal(uint64(2)))
		Expect(c.NextDue()).To(BeNumerically("~", 0.03, 1e-12))

		Expect(c.Tick(0.0)).To(BeFalse())
		Expect(c.Stats().Updates).To(Equal(uint64(2)))
		Expect(c.Now()).To(Equal(0.02))
		Expect(sink.count(slog.LevelWarn)).To(Equal(1))
	})

	It("fires floor((tf-t0)/Ts) cycles over a fine-grained drive", func() {
		for i := 1; i <= 500; i++ {
			c.Tick(float64(i) * 0.002)
		}
		Expect(c.Stats().Updates).To(BeNumerically("~", 100, 1))
		Expect(c.Stats().Missed).To(BeZero())
	})

	It("evaluates the law with setpoint, process and zero feedforward", func() {
		c.SetSetpoint(4.0)
		c.SetProcess(1.0)
		c.Tick(0.01)
		Expect(l.lastSP).To(Equal(4.0))
		Expect(l.lastPV).To(Equal(1.0))
		Expect(l.lastFF).To(BeZero())
		Expect(c.Output()).To(Equal(1.0))
		Expect(c.Error()).To(Equal(3.0))
	})

	It("pulls inputs through the bindings when present", func() {
		sp, pv := 2.0, 0.5
		applied := []float64{}
		c.SetBindings(Bindings{
			ReadSetpoint: func(t float64) (float64, error) { return sp, nil },
			ReadProcess:  func() (float64, error) { return pv, nil },
			WriteOutput:  func(v float64) error { applied = append(applied, v); return nil },
		})
		c.Tick(0.01)
		Expect(c.Setpoint()).To(Equal(2.0))
		Expect(c.Process()).To(Equal(0.5))
		Expect(c.Error()).To(Equal(1.5))
		Expect(applied).To(Equal([]float64{1.0}))
	})

	It("counts a failing read as a missed deadline and stays usable", func() {
		c.SetBindings(Bindings{
			ReadProcess: func() (float64, error) { return 0, errors.New("i2c timeout") },
		})
		Expect(c.Tick(0.01)).To(BeFalse())
		Expect(c.Stats().Missed).To(Equal(uint64(1)))
		Expect(c.Stats().Updates).To(BeZero())
		Expect(sink.count(slog.LevelError)).To(Equal(1))

		c.SetBindings(Bindings{})
		Expect(c.Tick(0.02)).To(BeTrue())
		Expect(c.Stats().Updates).To(Equal(uint64(1)))
	})

	It("keeps inputs read before the failing step", func() {
		c.SetBindings(Bindings{
			ReadSetpoint: func(t float64) (float64, error) { return 9.0, nil },
			ReadProcess:  func() (float64, error) { return 0, errors.New("dead sensor") },
		})
		c.Tick(0.01)
		// Best-effort partial commit: the setpoint read landed and the
		// derived error tracks it even though the cycle failed.
		Expect(c.Setpoint()).To(Equal(9.0))
		Expect(c.Error()).To(Equal(c.Setpoint() - c.Process()))
		Expect(c.Error()).To(Equal(9.0))
		Expect(c.NextDue()).To(BeNumerically("~", 0.01, 1e-12))
	})

	It("counts a failing write as a missed deadline", func() {
		c.SetBindings(Bindings{
			WriteOutput: func(v float64) error { return fmt.Errorf("actuator fault") },
		})
		Expect(c.Tick(0.01)).To(BeFalse())
		Expect(c.Stats().Missed).To(Equal(uint64(1)))
		// Output was computed before the write failed and is retained.
		Expect(c.Output()).To(Equal(1.0))
	})

	It("contains a panicking law", func() {
		l.explode = true
		Expect(c.Tick(0.01)).To(BeFalse())
		Expect(c.Stats().Missed).To(Equal(uint64(1)))

		l.explode = false
		Expect(c.Tick(0.02)).To(BeTrue())
	})

	It("does not record failed cycles", func() {
		c.SetBindings(Bindings{
			ReadProcess: func() (float64, error) { return 0, errors.New("nope") },
		})
		c.Tick(0.01)
		Expect(c.Series().Len()).To(BeZero())
	})

	It("records one sample per successful cycle with the committed count", func() {
		c.Tick(0.01)
		c.Tick(0.02)
		Expect(c.Series().Len()).To(Equal(2))
		Expect(c.Series().At(1).Updates).To(Equal(uint64(2)))
		Expect(c.Series().At(0).Time).To(Equal(0.01))
	})

	It("does not record when recording is disabled", func() {
		c.SetRecording(false)
		c.Tick(0.01)
		Expect(c.Series().Len()).To(BeZero())
		Expect(c.Recording()).To(BeFalse())
	})

	It("never cycles while deactivated, at any time", func() {
		c.Deactivate()
		for _, t := range []float64{0.01, 0.5, 3.0, 100.0} {
			Expect(c.Tick(t)).To(BeFalse())
		}
		Expect(c.Stats()).To(Equal(Stats{}))
		Expect(c.TimeUntilDue()).To(BeNumerically("<", 0))

		c.Activate()
		Expect(c.Tick(100.01)).To(BeTrue())
		Expect(c.Stats().Updates).To(Equal(uint64(1)))
	})

	It("honors a widened tolerance window", func() {
		c.SetTolerance(1e-3)
		Expect(c.Tick(0.01 - 1e-3*0.01)).To(BeTrue())
	})
})

var _ = Describe("Reset", func() {
	It("restores the just-completed-at-t state", func() {
		l := &stubLaw{out: 2.0}
		c, err := New(Config{
			Law: l, Period: 0.01,
			Setpoint: Float(1.5),
			Logger:   slog.New(&logSink{}),
		})
		Expect(err).ToNot(HaveOccurred())

		c.Tick(0.01)
		c.Tick(0.02)
		c.Reset(5.0)

		Expect(c.Stats()).To(Equal(Stats{}))
		Expect(c.Process()).To(BeZero())
		Expect(c.Output()).To(BeZero())
		Expect(c.Error()).To(Equal(1.5))
		Expect(c.LastUpdate()).To(Equal(5.0))
		Expect(c.NextDue()).To(Equal(5.01))
		Expect(l.resets).To(Equal(1))

		Expect(c.Tick(5.005)).To(BeFalse())
		Expect(c.Tick(5.01)).To(BeTrue())
	})
})

var _ = Describe("Export", func() {
	It("warns and writes nothing for an empty recording", func() {
		sink := &logSink{}
		c, _ := New(Config{Law: &stubLaw{}, Period: 0.01, Record: true, Logger: slog.New(sink)})
		var buf bytes.Buffer
		Expect(c.ExportCSV(&buf)).To(Succeed())
		Expect(buf.Len()).To(BeZero())
		Expect(sink.count(slog.LevelWarn)).To(Equal(1))
	})

	It("writes header plus one row per cycle", func() {
		c, _ := New(Config{Law: &stubLaw{out: 1}, Period: 0.01, Record: true, Logger: slog.New(&logSink{})})
		c.Tick(0.01)
		var buf bytes.Buffer
		Expect(c.ExportCSV(&buf)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("time,setpoint,process_variable,manipulated_variable,error,update_count\n"))
		Expect(bytes.Count(buf.Bytes(), []byte("\n"))).To(Equal(2))
	})
})

var _ = Describe("Bounds", func() {
	It("reads the law's bounds through without clamping", func() {
		l := &stubLaw{out: 100}
		c, _ := New(Config{Law: l, Period: 0.01, Logger: slog.New(&logSink{})})
		lo, hi := c.OutputBounds()
		Expect(lo).To(Equal(-5.0))
		Expect(hi).To(Equal(5.0))

		c.Tick(0.01)
		// The loop reports bounds but never enforces them.
		Expect(c.Output()).To(Equal(100.0))
	})
})
