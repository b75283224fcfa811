package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	"github.com/frahmantamala/guard-deployment/internal/site"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample sites, guards and day-shift postings for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		if err := seed(context.Background(), deps); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

var seedSites = []site.CreateSiteDTO{
	{ClientName: "Bank Mandiri", Name: "Head Office", RequiredDay: 2, RequiredNight: 1},
	{ClientName: "Bank Mandiri", Name: "Data Center", RequiredDay: 1, RequiredNight: 1},
	{ClientName: "Mall Kota", Name: "North Gate", RequiredDay: 3, RequiredNight: 2},
}

var seedGuards = []guard.RegisterGuardDTO{
	{FullName: "Agus Santoso", Category: "GUARD", Role: "FIXED"},
	{FullName: "Budi Hartono", Category: "GUARD", Role: "FIXED"},
	{FullName: "Citra Lestari", Category: "GUARD", Role: "FIXED"},
	{FullName: "Dewi Anggraini", Category: "GUARD", Role: "ROTATING"},
	{FullName: "Eko Prasetyo", Category: "GUARD", Role: "ROTATING"},
}

func seed(ctx context.Context, deps *Dependencies) error {
	existing, err := deps.Sites.List(ctx, false, 1, 0)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("sites already present; skipping seed")
		return nil
	}

	sites := make([]*site.Site, 0, len(seedSites))
	for _, dto := range seedSites {
		s, err := deps.Sites.Create(ctx, dto)
		if err != nil {
			return fmt.Errorf("create site %s: %w", dto.Name, err)
		}
		sites = append(sites, s)
		fmt.Printf("seeded site %s / %s (%s)\n", s.ClientName, s.Name, s.ID)
	}

	guards := make([]*guard.Guard, 0, len(seedGuards))
	for _, dto := range seedGuards {
		g, err := deps.Guards.Register(ctx, dto)
		if err != nil {
			return fmt.Errorf("register guard %s: %w", dto.FullName, err)
		}
		guards = append(guards, g)
		fmt.Printf("seeded %s guard %s (%s)\n", g.Role, g.FullName, g.ID)
	}

	today := deps.Clock()()
	for i, g := range guards {
		if g.IsRotating() {
			continue
		}
		target := sites[i%len(sites)]
		d, err := deps.Deployments.Deploy(ctx, deployment.DeployDTO{
			GuardID:   g.ID,
			SiteID:    target.ID,
			Shift:     string(deploymentDatamodel.ShiftDay),
			StartDate: today,
			Reason:    string(deploymentDatamodel.ReasonHire),
			Notes:     "seed",
		})
		if err != nil {
			return fmt.Errorf("deploy %s: %w", g.FullName, err)
		}
		fmt.Printf("posted %s at %s from %s\n", g.FullName, target.Name, dateutil.Format(d.StartDate))
	}
	return nil
}
