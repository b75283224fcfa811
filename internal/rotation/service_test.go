package rotation_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/guard-deployment/db"
	"github.com/frahmantamala/guard-deployment/internal"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	rotationPostgres "github.com/frahmantamala/guard-deployment/internal/rotation/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestRotationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rotation Service Suite")
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ref(s string) *string {
	return &s
}

func expectCode(err error, code internal.ErrorCode) {
	ExpectWithOffset(1, err).To(HaveOccurred())
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected an AppError, got %v", err)
	ExpectWithOffset(1, appErr.Code).To(Equal(code))
}

var _ = Describe("InitialStatus", func() {
	It("starts in progress when today is inside the range", func() {
		Expect(rotation.InitialStatus(date("2026-01-01"), date("2026-01-05"), date("2026-01-05"))).To(Equal(rotationDatamodel.StatusInProgress))
		Expect(rotation.InitialStatus(date("2026-01-06"), date("2026-01-09"), date("2026-01-05"))).To(Equal(rotationDatamodel.StatusPlanned))
	})
})

var _ = Describe("Rotation Service", func() {
	var (
		gdb     *gorm.DB
		service *rotation.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		gdb, err = db.OpenSQLiteMemory()
		Expect(err).NotTo(HaveOccurred())

		for _, g := range []*guardDatamodel.Guard{
			{ID: "g1", FullName: "Agus", Category: guardDatamodel.CategoryGuard, Role: guardDatamodel.RoleFixed, Status: guardDatamodel.StatusActive},
			{ID: "r1", FullName: "Dewi", Category: guardDatamodel.CategoryGuard, Role: guardDatamodel.RoleRotating, Status: guardDatamodel.StatusActive},
			{ID: "r2", FullName: "Eko", Category: guardDatamodel.CategoryGuard, Role: guardDatamodel.RoleRotating, Status: guardDatamodel.StatusSuspended},
		} {
			Expect(gdb.Create(g).Error).To(Succeed())
		}
		for _, s := range []*siteDatamodel.Site{
			{ID: "s1", ClientName: "Bank", Name: "Head Office", RequiredDay: 1, RequiredNight: 1, Active: true},
			{ID: "s2", ClientName: "Mall", Name: "North Gate", RequiredDay: 1, Active: false},
		} {
			Expect(gdb.Create(s).Error).To(Succeed())
		}
		for _, l := range []*leaveDatamodel.Request{
			{ID: "approved", GuardID: "g1", Type: leaveDatamodel.TypeAnnual, StartDate: date("2026-01-10"), EndDate: date("2026-01-14"), DayCount: 5, Status: leaveDatamodel.StatusApproved},
			{ID: "pending", GuardID: "g1", Type: leaveDatamodel.TypeSick, StartDate: date("2026-02-10"), EndDate: date("2026-02-11"), DayCount: 2, Status: leaveDatamodel.StatusPending},
		} {
			Expect(gdb.Create(l).Error).To(Succeed())
		}

		service = rotation.NewService(rotationPostgres.NewRotationRepository(gdb), nil, slog.New(slog.NewTextHandler(io.Discard, nil))).
			WithClock(func() time.Time { return date("2026-01-05") })
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	assign := func(guardID, siteID, start, end string, leaveID *string) (*rotation.Assignment, error) {
		return service.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID:        guardID,
			SiteID:         siteID,
			Shift:          "DAY",
			StartDate:      date(start),
			EndDate:        date(end),
			LeaveRequestID: leaveID,
		})
	}

	Describe("AssignCoverage", func() {
		It("covers an approved leave and records the replaced guard", func() {
			a, err := assign("r1", "s1", "2026-01-10", "2026-01-14", ref("approved"))

			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(rotationDatamodel.StatusPlanned))
			Expect(*a.ReplacedGuardID).To(Equal("g1"))
			Expect(*a.LeaveRequestID).To(Equal("approved"))
		})

		It("starts in progress when the range contains today", func() {
			a, err := assign("r1", "s1", "2026-01-04", "2026-01-06", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(rotationDatamodel.StatusInProgress))
		})

		It("refuses fixed, suspended and unknown guards", func() {
			_, err := assign("g1", "s1", "2026-01-10", "2026-01-14", nil)
			expectCode(err, internal.ErrCodeGuardNotRotating)

			_, err = assign("r2", "s1", "2026-01-10", "2026-01-14", nil)
			expectCode(err, internal.ErrCodeGuardNotActive)

			_, err = assign("ghost", "s1", "2026-01-10", "2026-01-14", nil)
			expectCode(err, internal.ErrCodeGuardNotFound)
		})

		It("refuses inactive sites", func() {
			_, err := assign("r1", "s2", "2026-01-10", "2026-01-14", nil)
			expectCode(err, internal.ErrCodeSiteInactive)
		})

		It("refuses a leave that is not approved", func() {
			_, err := assign("r1", "s1", "2026-02-10", "2026-02-11", ref("pending"))
			expectCode(err, internal.ErrCodeLeaveNotApproved)

			_, err = assign("r1", "s1", "2026-02-10", "2026-02-11", ref("missing"))
			expectCode(err, internal.ErrCodeLeaveNotFound)
		})

		It("refuses a replaced guard that is not the one on leave", func() {
			Expect(gdb.Create(&guardDatamodel.Guard{ID: "g2", FullName: "Budi", Category: guardDatamodel.CategoryGuard, Role: guardDatamodel.RoleFixed, Status: guardDatamodel.StatusActive}).Error).To(Succeed())

			_, err := service.AssignCoverage(ctx, rotation.AssignCoverageDTO{
				GuardID: "r1", SiteID: "s1", Shift: "DAY",
				StartDate: date("2026-01-10"), EndDate: date("2026-01-14"),
				LeaveRequestID: ref("approved"), ReplacedGuardID: ref("g2"),
			})
			Expect(internal.IsValidation(err)).To(BeTrue())
			expectCode(err, internal.ErrCodeReplacedGuardMismatch)

			var count int64
			Expect(gdb.Model(&rotationDatamodel.Assignment{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())

			a, err := service.AssignCoverage(ctx, rotation.AssignCoverageDTO{
				GuardID: "r1", SiteID: "s1", Shift: "DAY",
				StartDate: date("2026-01-10"), EndDate: date("2026-01-14"),
				LeaveRequestID: ref("approved"), ReplacedGuardID: ref("g1"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*a.ReplacedGuardID).To(Equal("g1"))
		})

		It("refuses a rotating guard who is on approved leave in the range", func() {
			Expect(gdb.Create(&leaveDatamodel.Request{
				ID: "r1-away", GuardID: "r1", Type: leaveDatamodel.TypeAnnual,
				StartDate: date("2026-01-12"), EndDate: date("2026-01-13"), DayCount: 2,
				Status: leaveDatamodel.StatusApproved,
			}).Error).To(Succeed())
			Expect(gdb.Create(&leaveDatamodel.Request{
				ID: "r1-asked", GuardID: "r1", Type: leaveDatamodel.TypeAnnual,
				StartDate: date("2026-01-20"), EndDate: date("2026-01-21"), DayCount: 2,
				Status: leaveDatamodel.StatusPending,
			}).Error).To(Succeed())

			_, err := assign("r1", "s1", "2026-01-10", "2026-01-14", ref("approved"))
			Expect(internal.IsValidation(err)).To(BeTrue())
			expectCode(err, internal.ErrCodeGuardOnLeave)

			_, err = assign("r1", "s1", "2026-01-14", "2026-01-16", nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = assign("r1", "s1", "2026-01-20", "2026-01-21", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses overlapping assignments for one guard but not after cancelling", func() {
			first, err := assign("r1", "s1", "2026-01-10", "2026-01-14", nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = assign("r1", "s1", "2026-01-14", "2026-01-16", nil)
			expectCode(err, internal.ErrCodeAssignmentOverlap)

			_, err = service.Cancel(ctx, first.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = assign("r1", "s1", "2026-01-14", "2026-01-16", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("validates the range", func() {
			_, err := assign("r1", "s1", "2026-01-14", "2026-01-10", nil)
			Expect(internal.IsValidation(err)).To(BeTrue())
		})
	})

	Describe("Cancel", func() {
		It("is idempotent", func() {
			a, err := assign("r1", "s1", "2026-01-10", "2026-01-14", nil)
			Expect(err).NotTo(HaveOccurred())

			first, err := service.Cancel(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Cancel(ctx, a.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Status).To(Equal(rotationDatamodel.StatusCancelled))
			Expect(second.Status).To(Equal(rotationDatamodel.StatusCancelled))
		})

		It("leaves a completed assignment alone", func() {
			a, err := assign("r1", "s1", "2026-01-01", "2026-01-03", nil)
			Expect(err).NotTo(HaveOccurred())
			n, err := service.CompleteExpired(ctx, date("2026-01-05"))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			_, err = service.Cancel(ctx, a.ID)
			Expect(internal.IsState(err)).To(BeTrue())
			expectCode(err, internal.ErrCodeAssignmentClosed)
		})

		It("reports an unknown assignment", func() {
			_, err := service.Cancel(ctx, "missing")
			expectCode(err, internal.ErrCodeAssignmentNotFound)
		})
	})

	Describe("maintenance", func() {
		It("completes ended assignments and starts the current ones", func() {
			_, err := assign("r1", "s1", "2026-01-10", "2026-01-14", nil)
			Expect(err).NotTo(HaveOccurred())

			started, err := service.ActivateStarted(ctx, date("2026-01-10"))
			Expect(err).NotTo(HaveOccurred())
			Expect(started).To(Equal(1))

			completed, err := service.CompleteExpired(ctx, date("2026-01-14"))
			Expect(err).NotTo(HaveOccurred())
			Expect(completed).To(BeZero())

			completed, err = service.CompleteExpired(ctx, date("2026-01-15"))
			Expect(err).NotTo(HaveOccurred())
			Expect(completed).To(Equal(1))

			list, err := service.ListByGuard(ctx, "r1", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Status).To(Equal(rotationDatamodel.StatusCompleted))
		})
	})
})
