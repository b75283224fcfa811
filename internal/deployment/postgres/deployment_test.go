package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/guard-deployment/db"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	deploymentPostgres "github.com/frahmantamala/guard-deployment/internal/deployment/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestDeploymentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Deployment Postgres Suite")
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var _ = Describe("Deployment Repository", func() {
	var (
		gdb  *gorm.DB
		repo deployment.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		gdb, err = db.OpenSQLiteMemory()
		Expect(err).NotTo(HaveOccurred())

		for _, id := range []string{"g1", "g2", "g3"} {
			Expect(gdb.Create(&guardDatamodel.Guard{ID: id, FullName: id, Category: guardDatamodel.CategoryGuard, Role: guardDatamodel.RoleFixed, Status: guardDatamodel.StatusActive}).Error).To(Succeed())
		}
		Expect(gdb.Create(&siteDatamodel.Site{ID: "s1", ClientName: "Bank", Name: "Head Office", RequiredDay: 2, RequiredNight: 1, Active: true}).Error).To(Succeed())

		repo = deploymentPostgres.NewDeploymentRepository(gdb)
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	create := func(guardID string, shift deploymentDatamodel.Shift, start string) *deploymentDatamodel.Deployment {
		d := &deploymentDatamodel.Deployment{GuardID: guardID, SiteID: "s1", Shift: shift, StartDate: date(start), Reason: deploymentDatamodel.ReasonHire}
		Expect(repo.Create(ctx, d)).To(Succeed())
		return d
	}

	It("returns nil for missing rows", func() {
		g, err := repo.GetGuard(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(BeNil())

		open, err := repo.GetOpenByGuard(ctx, "g1")
		Expect(err).NotTo(HaveOccurred())
		Expect(open).To(BeNil())
	})

	It("counts open postings per shift", func() {
		create("g1", deploymentDatamodel.ShiftDay, "2026-01-01")
		create("g2", deploymentDatamodel.ShiftDay, "2026-01-01")
		closed := create("g3", deploymentDatamodel.ShiftNight, "2026-01-01")
		Expect(repo.Close(ctx, closed.ID, date("2026-01-10"))).To(Succeed())

		counts, err := repo.CountOpenBySite(ctx, "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(counts[deploymentDatamodel.ShiftDay]).To(Equal(2))
		Expect(counts[deploymentDatamodel.ShiftNight]).To(BeZero())
		Expect(counts.Total()).To(Equal(2))
	})

	It("closes a row only once", func() {
		d := create("g1", deploymentDatamodel.ShiftDay, "2026-01-01")

		Expect(repo.Close(ctx, d.ID, date("2026-01-10"))).To(Succeed())
		Expect(repo.Close(ctx, d.ID, date("2026-01-12"))).NotTo(Succeed())

		last, err := repo.GetLatestClosedByGuard(ctx, "g1")
		Expect(err).NotTo(HaveOccurred())
		Expect(*last.EndDate).To(BeTemporally("==", date("2026-01-10")))
	})

	It("rejects a second open row for a guard", func() {
		create("g1", deploymentDatamodel.ShiftDay, "2026-01-01")

		err := repo.Create(ctx, &deploymentDatamodel.Deployment{GuardID: "g1", SiteID: "s1", Shift: deploymentDatamodel.ShiftNight, StartDate: date("2026-01-02"), Reason: deploymentDatamodel.ReasonOther})
		Expect(err).To(HaveOccurred())
	})

	It("rolls back every write of a failed transaction", func() {
		d := create("g1", deploymentDatamodel.ShiftDay, "2026-01-01")

		err := repo.Transaction(ctx, func(tx deployment.RepositoryAPI) error {
			if err := tx.Close(ctx, d.ID, date("2026-02-01")); err != nil {
				return err
			}
			return tx.Create(ctx, &deploymentDatamodel.Deployment{GuardID: "g1", SiteID: "missing-site", Shift: deploymentDatamodel.ShiftDay, StartDate: date("2026-02-01"), Reason: deploymentDatamodel.ReasonTransfer})
		})
		Expect(err).To(HaveOccurred())

		open, err := repo.GetOpenByGuard(ctx, "g1")
		Expect(err).NotTo(HaveOccurred())
		Expect(open.ID).To(Equal(d.ID))
	})

	It("lists history newest first with paging", func() {
		first := create("g1", deploymentDatamodel.ShiftDay, "2026-01-01")
		Expect(repo.Close(ctx, first.ID, date("2026-02-01"))).To(Succeed())
		second := create("g1", deploymentDatamodel.ShiftDay, "2026-02-01")

		rows, err := repo.ListByGuard(ctx, "g1", 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].ID).To(Equal(second.ID))

		rows, err = repo.ListByGuard(ctx, "g1", 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows[0].ID).To(Equal(first.ID))
	})
})
