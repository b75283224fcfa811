package dateutil_test

import (
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDateutil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dateutil Suite")
}

func day(s string) time.Time {
	t, err := dateutil.Parse(s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Dateutil", func() {
	Describe("Normalize", func() {
		It("keeps the calendar date of the given location", func() {
			jakarta := time.FixedZone("WIB", 7*60*60)
			t := time.Date(2026, 3, 1, 6, 30, 0, 0, jakarta)

			Expect(dateutil.Normalize(t)).To(Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		})
	})

	Describe("Today", func() {
		It("uses the configured location's date", func() {
			jakarta := time.FixedZone("WIB", 7*60*60)
			now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

			Expect(dateutil.Today(now, jakarta)).To(Equal(day("2026-03-02")))
			Expect(dateutil.Today(now, nil)).To(Equal(day("2026-03-01")))
		})
	})

	Describe("Parse", func() {
		It("rejects anything but YYYY-MM-DD", func() {
			_, err := dateutil.Parse("01/03/2026")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("YYYY-MM-DD"))
		})
	})

	Describe("DaysInclusive", func() {
		It("counts both endpoints", func() {
			Expect(dateutil.DaysInclusive(day("2026-01-10"), day("2026-01-14"))).To(Equal(5))
			Expect(dateutil.DaysInclusive(day("2026-01-10"), day("2026-01-10"))).To(Equal(1))
		})

		It("returns zero for a reversed range", func() {
			Expect(dateutil.DaysInclusive(day("2026-01-14"), day("2026-01-10"))).To(Equal(0))
		})

		It("spans a month boundary", func() {
			Expect(dateutil.DaysInclusive(day("2026-02-27"), day("2026-03-02"))).To(Equal(4))
		})
	})

	Describe("ranges", func() {
		It("treats inclusive ranges touching on one day as overlapping", func() {
			Expect(dateutil.OverlapsInclusive(day("2026-01-01"), day("2026-01-05"), day("2026-01-05"), day("2026-01-09"))).To(BeTrue())
			Expect(dateutil.OverlapsInclusive(day("2026-01-01"), day("2026-01-04"), day("2026-01-05"), day("2026-01-09"))).To(BeFalse())
		})

		It("excludes the end day of a half-open posting", func() {
			end := day("2026-01-10")
			Expect(dateutil.ActiveHalfOpen(day("2026-01-01"), &end, day("2026-01-09"))).To(BeTrue())
			Expect(dateutil.ActiveHalfOpen(day("2026-01-01"), &end, day("2026-01-10"))).To(BeFalse())
			Expect(dateutil.ActiveHalfOpen(day("2026-01-01"), nil, day("2030-01-01"))).To(BeTrue())
			Expect(dateutil.ActiveHalfOpen(day("2026-01-01"), nil, day("2025-12-31"))).To(BeFalse())
		})
	})

	Describe("EachDay", func() {
		It("visits every day of the range in order", func() {
			var seen []string
			err := dateutil.EachDay(day("2026-02-27"), day("2026-03-02"), func(d time.Time) error {
				seen = append(seen, dateutil.Format(d))
				return nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}))
		})

		It("does nothing for a reversed range", func() {
			calls := 0
			err := dateutil.EachDay(day("2026-03-02"), day("2026-03-01"), func(time.Time) error {
				calls++
				return nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(0))
		})

		It("stops at the first error", func() {
			stop := errors.New("stop")
			calls := 0
			err := dateutil.EachDay(day("2026-01-01"), day("2026-01-10"), func(time.Time) error {
				calls++
				if calls == 3 {
					return stop
				}
				return nil
			})

			Expect(err).To(MatchError(stop))
			Expect(calls).To(Equal(3))
		})
	})
})
