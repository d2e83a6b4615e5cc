package sched

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sampler", func() {
	var s *Sampler

	BeforeEach(func() {
		var err error
		s, err = New(0.01, 0.0)
		Expect(err).ToNot(HaveOccurred())
	})

	It("rejects a non-positive period", func() {
		_, err := New(0, 0)
		Expect(err).To(MatchError(ErrBadPeriod))
		_, err = New(-0.5, 0)
		Expect(err).To(MatchError(ErrBadPeriod))
	})

	It("starts with no cycle on record", func() {
		Expect(s.LastUpdate()).To(Equal(math.Inf(-1)))
		Expect(s.NextDue()).To(Equal(0.01))
		Expect(s.Now()).To(Equal(0.0))
	})

	It("is not due before a full period has elapsed", func() {
		due, err := s.Advance(0.005)
		Expect(err).ToNot(HaveOccurred())
		Expect(due).To(BeFalse())
		Expect(s.Now()).To(Equal(0.005))
	})

	It("is due exactly at the period boundary", func() {
		due, err := s.Advance(0.01)
		Expect(err).ToNot(HaveOccurred())
		Expect(due).To(BeTrue())
	})

	It("fires inside the tolerance window but not before it", func() {
		s.SetTolerance(1e-6)

		due, _ := s.Advance(0.01 - 1e-6*0.01)
		Expect(due).To(BeTrue())

		s2, _ := New(0.01, 0.0)
		s2.SetTolerance(1e-6)
		due, _ = s2.Advance(0.01 - 1e-6*0.01 - 1e-10)
		Expect(due).To(BeFalse())
	})

	It("schedules the next cycle one period after a commit", func() {
		due, _ := s.Advance(0.013)
		Expect(due).To(BeTrue())
		s.Commit(0.013)
		Expect(s.LastUpdate()).To(Equal(0.013))
		Expect(s.NextDue()).To(BeNumerically("~", 0.023, 1e-12))

		due, _ = s.Advance(0.02)
		Expect(due).To(BeFalse())
		due, _ = s.Advance(0.023)
		Expect(due).To(BeTrue())
	})

	It("stays due across advances until committed", func() {
		due, _ := s.Advance(0.05)
		Expect(due).To(BeTrue())
		due, _ = s.Advance(0.06)
		Expect(due).To(BeTrue())
	})

	It("refuses to move time backward", func() {
		_, err := s.Advance(0.02)
		Expect(err).ToNot(HaveOccurred())

		due, err := s.Advance(0.015)
		Expect(err).To(MatchError(ErrTimeRegression))
		Expect(due).To(BeFalse())
		Expect(s.Now()).To(Equal(0.02))
		Expect(s.NextDue()).To(Equal(0.01))
	})

	It("treats a repeated time as a plain advance, not a regression", func() {
		_, err := s.Advance(0.005)
		Expect(err).ToNot(HaveOccurred())
		_, err = s.Advance(0.005)
		Expect(err).ToNot(HaveOccurred())
	})

	It("resets to a just-completed state", func() {
		s.Commit(0.03)
		s.Reset(1.0)
		Expect(s.Now()).To(Equal(1.0))
		Expect(s.LastUpdate()).To(Equal(1.0))
		Expect(s.NextDue()).To(Equal(1.01))
	})

	It("reports time until the next due cycle, negative when overdue", func() {
		_, _ = s.Advance(0.004)
		Expect(s.TimeUntilDue()).To(BeNumerically("~", 0.006, 1e-12))

		_, _ = s.Advance(0.02)
		Expect(s.TimeUntilDue()).To(BeNumerically("~", -0.01, 1e-12))
	})

	It("triggers floor((tf-t0)/Ts) cycles over a fixed-step drive", func() {
		fired := 0
		for i := 1; i <= 1000; i++ {
			t := float64(i) * 0.001
			due, err := s.Advance(t)
			Expect(err).ToNot(HaveOccurred())
			if due {
				s.Commit(t)
				fired++
			}
		}
		Expect(fired).To(BeNumerically("~", 100, 1))
	})
})
