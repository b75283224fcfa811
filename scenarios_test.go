package main_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/guard-deployment/db"
	"github.com/frahmantamala/guard-deployment/internal"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
	"github.com/frahmantamala/guard-deployment/internal/coverage"
	coveragePostgres "github.com/frahmantamala/guard-deployment/internal/coverage/postgres"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	deploymentPostgres "github.com/frahmantamala/guard-deployment/internal/deployment/postgres"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	guardPostgres "github.com/frahmantamala/guard-deployment/internal/guard/postgres"
	"github.com/frahmantamala/guard-deployment/internal/leave"
	leavePostgres "github.com/frahmantamala/guard-deployment/internal/leave/postgres"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	rotationPostgres "github.com/frahmantamala/guard-deployment/internal/rotation/postgres"
	"github.com/frahmantamala/guard-deployment/internal/site"
	sitePostgres "github.com/frahmantamala/guard-deployment/internal/site/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type engine struct {
	db          *gorm.DB
	bus         *events.EventBus
	guards      *guard.Service
	sites       *site.Service
	deployments *deployment.Service
	leaves      *leave.Service
	rotations   *rotation.Service
	coverage    *coverage.Service
}

func newEngine(today time.Time) *engine {
	gdb, err := db.OpenSQLiteMemory()
	Expect(err).NotTo(HaveOccurred())

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewEventBus(lg)
	clock := func() time.Time { return today }

	deployments := deployment.NewService(deploymentPostgres.NewDeploymentRepository(gdb), bus, lg)
	return &engine{
		db:  gdb,
		bus: bus,
		guards: guard.NewService(guardPostgres.NewGuardRepository(gdb), bus, lg).
			WithClock(clock).
			WithTerminator(deployments),
		sites:       site.NewService(sitePostgres.NewSiteRepository(gdb), lg),
		deployments: deployments,
		leaves:      leave.NewService(leavePostgres.NewLeaveRepository(gdb), bus, lg).WithClock(clock),
		rotations:   rotation.NewService(rotationPostgres.NewRotationRepository(gdb), bus, lg).WithClock(clock),
		coverage:    coverage.NewService(coveragePostgres.NewCoverageRepository(gdb), lg),
	}
}

func (e *engine) close() {
	sqlDB, err := e.db.DB()
	Expect(err).NotTo(HaveOccurred())
	Expect(sqlDB.Close()).To(Succeed())
}

func gapFor(gaps []coverage.Gap, siteID string, shift deploymentDatamodel.Shift) *coverage.Gap {
	for i := range gaps {
		if gaps[i].SiteID == siteID && gaps[i].Shift == shift {
			return &gaps[i]
		}
	}
	return nil
}

var _ = Describe("Guard deployment scenarios", func() {
	var (
		e      *engine
		ctx    context.Context
		g1, g2 *guard.Guard
		r1     *guard.Guard
		s1, s2 *site.Site
	)

	BeforeEach(func() {
		e = newEngine(date("2026-01-01"))
		ctx = internal.ContextWithOperator(context.Background(), "ops@hq")

		var err error
		g1, err = e.guards.Register(ctx, guard.RegisterGuardDTO{FullName: "Agus Santoso", Category: "GUARD", Role: "FIXED"})
		Expect(err).NotTo(HaveOccurred())
		g2, err = e.guards.Register(ctx, guard.RegisterGuardDTO{FullName: "Budi Hartono", Category: "GUARD", Role: "FIXED"})
		Expect(err).NotTo(HaveOccurred())
		r1, err = e.guards.Register(ctx, guard.RegisterGuardDTO{FullName: "Dewi Anggraini", Category: "GUARD", Role: "ROTATING"})
		Expect(err).NotTo(HaveOccurred())

		s1, err = e.sites.Create(ctx, site.CreateSiteDTO{ClientName: "Bank Mandiri", Name: "Head Office", RequiredDay: 2, RequiredNight: 0})
		Expect(err).NotTo(HaveOccurred())
		s2, err = e.sites.Create(ctx, site.CreateSiteDTO{ClientName: "Mall Kota", Name: "North Gate", RequiredDay: 1, RequiredNight: 1})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		e.close()
	})

	deploy := func(g *guard.Guard, s *site.Site, start string) (*deployment.Deployment, error) {
		return e.deployments.Deploy(ctx, deployment.DeployDTO{
			GuardID:   g.ID,
			SiteID:    s.ID,
			Shift:     "DAY",
			StartDate: date(start),
			Reason:    "HIRE",
		})
	}

	It("deploys and then transfers a guard", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		current, err := e.deployments.CurrentDeployment(ctx, g1.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.SiteID).To(Equal(s1.ID))
		history, err := e.deployments.HistoryByGuard(ctx, g1.ID, 20, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))

		_, err = e.deployments.Deploy(ctx, deployment.DeployDTO{
			GuardID: g1.ID, SiteID: s2.ID, Shift: "DAY", StartDate: date("2026-02-01"), Reason: "TRANSFER",
		})
		Expect(err).NotTo(HaveOccurred())

		history, err = e.deployments.HistoryByGuard(ctx, g1.ID, 20, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(2))
		Expect(history[0].SiteID).To(Equal(s2.ID))
		Expect(history[0].EndDate).To(BeNil())
		Expect(history[1].SiteID).To(Equal(s1.ID))
		Expect(*history[1].EndDate).To(BeTemporally("==", date("2026-02-01")))

		trail, err := e.deployments.AuditTrail(ctx, g1.ID, 20, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(trail).To(HaveLen(2))
		Expect(trail[0].Action).To(Equal(deploymentDatamodel.AuditTransfer))
		Expect(trail[0].Actor).To(Equal("ops@hq"))
	})

	It("finds the gap left by an approved leave and closes it with a rotating guard", func() {
		_, err := deploy(g2, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		req, err := e.leaves.CreateRequest(ctx, leave.CreateRequestDTO{
			GuardID: g2.ID, Type: "ANNUAL", StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = e.leaves.Approve(ctx, req.ID, leave.DecisionDTO{})
		Expect(err).NotTo(HaveOccurred())

		gaps, err := e.coverage.SitesRequiringCoverage(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		gap := gapFor(gaps, s1.ID, deploymentDatamodel.ShiftDay)
		Expect(gap).NotTo(BeNil())
		Expect(gap.Required).To(Equal(2))
		Expect(gap.Covering).To(Equal(0))
		Expect(gap.Deficit).To(Equal(2))

		free, err := e.coverage.FreeRotatingGuards(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(free).To(HaveLen(1))
		Expect(free[0].ID).To(Equal(r1.ID))

		leaveID := req.ID
		a, err := e.rotations.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID: r1.ID, SiteID: s1.ID, Shift: "DAY",
			StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
			LeaveRequestID: &leaveID,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(*a.ReplacedGuardID).To(Equal(g2.ID))

		gaps, err = e.coverage.SitesRequiringCoverage(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(gapFor(gaps, s1.ID, deploymentDatamodel.ShiftDay).Deficit).To(Equal(1))

		free, err = e.coverage.FreeRotatingGuards(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(free).To(BeEmpty())

		current, err := e.deployments.CurrentDeployment(ctx, g2.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.SiteID).To(Equal(s1.ID))
	})

	It("clears the deficit once the site is fully covered", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())
		_, err = deploy(g2, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		req, err := e.leaves.CreateRequest(ctx, leave.CreateRequestDTO{
			GuardID: g2.ID, Type: "SICK", StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = e.leaves.Approve(ctx, req.ID, leave.DecisionDTO{Approver: "chief"})
		Expect(err).NotTo(HaveOccurred())

		gaps, err := e.coverage.SitesRequiringCoverage(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(gapFor(gaps, s1.ID, deploymentDatamodel.ShiftDay).Deficit).To(Equal(1))

		leaveID := req.ID
		_, err = e.rotations.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID: r1.ID, SiteID: s1.ID, Shift: "DAY",
			StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
			LeaveRequestID: &leaveID,
		})
		Expect(err).NotTo(HaveOccurred())

		gaps, err = e.coverage.SitesRequiringCoverage(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(gapFor(gaps, s1.ID, deploymentDatamodel.ShiftDay)).To(BeNil())

		By("resolving a range against one snapshot")
		ranged, err := e.coverage.SitesRequiringCoverageRange(ctx, date("2026-03-05"), date("2026-03-06"))
		Expect(err).NotTo(HaveOccurred())
		Expect(gapFor(ranged, s1.ID, deploymentDatamodel.ShiftDay)).To(BeNil())
		for _, g := range ranged {
			Expect(g.SiteID).To(Equal(s2.ID))
		}

		By("cancelling the leave cancels its coverage")
		_, err = e.leaves.Cancel(ctx, req.ID)
		Expect(err).NotTo(HaveOccurred())
		list, err := e.rotations.ListByGuard(ctx, r1.ID, 20, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(list[0].Status).To(Equal(rotationDatamodel.StatusCancelled))
	})

	It("refuses a standing posting for a rotating guard", func() {
		_, err := deploy(r1, s1, "2026-01-01")
		Expect(internal.IsValidation(err)).To(BeTrue())
	})

	It("refuses overlapping coverage for one rotating guard", func() {
		_, err := e.rotations.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID: r1.ID, SiteID: s1.ID, Shift: "DAY", StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.rotations.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID: r1.ID, SiteID: s2.ID, Shift: "NIGHT", StartDate: date("2026-03-04"), EndDate: date("2026-03-08"),
		})
		Expect(internal.IsValidation(err)).To(BeTrue())
	})

	It("agrees with the free list about rotating guards on leave", func() {
		req, err := e.leaves.CreateRequest(ctx, leave.CreateRequestDTO{
			GuardID: r1.ID, Type: "ANNUAL", StartDate: date("2026-03-02"), EndDate: date("2026-03-03"),
		})
		Expect(err).NotTo(HaveOccurred())
		_, err = e.leaves.Approve(ctx, req.ID, leave.DecisionDTO{Approver: "chief"})
		Expect(err).NotTo(HaveOccurred())

		free, err := e.coverage.FreeRotatingGuards(ctx, date("2026-03-02"))
		Expect(err).NotTo(HaveOccurred())
		Expect(free).To(BeEmpty())

		_, err = e.rotations.AssignCoverage(ctx, rotation.AssignCoverageDTO{
			GuardID: r1.ID, SiteID: s1.ID, Shift: "DAY", StartDate: date("2026-03-01"), EndDate: date("2026-03-05"),
		})
		Expect(internal.IsValidation(err)).To(BeTrue())
	})

	It("closes the posting of a terminated guard", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		effective := date("2026-01-20")
		_, err = e.guards.ChangeStatus(ctx, g1.ID, guard.ChangeStatusDTO{Status: "TERMINATED", EffectiveDate: &effective})
		Expect(err).NotTo(HaveOccurred())

		current, err := e.deployments.CurrentDeployment(ctx, g1.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(BeNil())

		trail, err := e.deployments.AuditTrail(ctx, g1.ID, 20, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(trail[0].Action).To(Equal(deploymentDatamodel.AuditEnd))
		Expect(trail[0].EffectiveDate).To(BeTemporally("==", effective))
	})

	It("terminates a guard even when a termination subscriber fails", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())
		e.bus.Subscribe(events.EventTypeGuardTerminated, func(context.Context, events.Event) error {
			return errors.New("payroll export failed")
		})

		effective := date("2026-01-20")
		updated, err := e.guards.ChangeStatus(ctx, g1.ID, guard.ChangeStatusDTO{Status: "TERMINATED", EffectiveDate: &effective})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Status).To(Equal(guardDatamodel.StatusTerminated))

		current, err := e.deployments.CurrentDeployment(ctx, g1.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current).To(BeNil())

		gaps, err := e.coverage.SitesRequiringCoverage(ctx, date("2026-01-21"))
		Expect(err).NotTo(HaveOccurred())
		Expect(gapFor(gaps, s1.ID, deploymentDatamodel.ShiftDay).Deficit).To(Equal(2))
	})

	It("leaves status and posting untouched when termination cannot commit", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.db.Exec("DROP TABLE deployment_audit").Error).To(Succeed())

		effective := date("2026-01-20")
		_, err = e.guards.ChangeStatus(ctx, g1.ID, guard.ChangeStatusDTO{Status: "TERMINATED", EffectiveDate: &effective})
		Expect(err).To(HaveOccurred())

		stored, err := e.guards.Get(ctx, g1.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(guardDatamodel.StatusActive))

		current, err := e.deployments.CurrentDeployment(ctx, g1.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current).NotTo(BeNil())
		Expect(current.EndDate).To(BeNil())
	})

	It("keeps a single open posting per guard in the store itself", func() {
		_, err := deploy(g1, s1, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		err = e.db.Create(&deploymentDatamodel.Deployment{
			GuardID: g1.ID, SiteID: s2.ID, Shift: deploymentDatamodel.ShiftDay,
			StartDate: date("2026-01-05"), Reason: deploymentDatamodel.ReasonOther,
		}).Error
		Expect(err).To(HaveOccurred())
	})

	It("caps a site at its headcount", func() {
		_, err := deploy(g1, s2, "2026-01-01")
		Expect(err).NotTo(HaveOccurred())

		_, err = deploy(g2, s2, "2026-01-01")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeSiteAtCapacity))
	})
})
