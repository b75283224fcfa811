// Package coverage derives staffing gaps from the deployment, leave and
// rotation ledgers. Nothing here writes to the store.
package coverage

import (
	"sort"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
)

type Gap struct {
	SiteID     string                    `json:"site_id"`
	SiteName   string                    `json:"site_name"`
	ClientName string                    `json:"client_name"`
	Date       time.Time                 `json:"date"`
	Shift      deploymentDatamodel.Shift `json:"shift"`
	Required   int                       `json:"required"`
	Covering   int                       `json:"covering"`
	Deficit    int                       `json:"deficit"`
}

// Snapshot is every row relevant to coverage over [From,To], read in one
// transaction so a concurrent write is seen entirely or not at all.
type Snapshot struct {
	From        time.Time
	To          time.Time
	Sites       []*siteDatamodel.Site
	Deployments []*deploymentDatamodel.Deployment
	Leaves      []*leaveDatamodel.Request
	Assignments []*rotationDatamodel.Assignment
}

type headcount struct {
	day, night, mixed int
}

func (h *headcount) add(shift deploymentDatamodel.Shift) {
	switch shift {
	case deploymentDatamodel.ShiftDay:
		h.day++
	case deploymentDatamodel.ShiftNight:
		h.night++
	default:
		h.mixed++
	}
}

// Resolve computes the gaps of one day. Regulars on approved leave do not
// cover; MIXED postings and assignments fill the day shortfall before the night one.
func Resolve(snap *Snapshot, day time.Time) []Gap {
	day = dateutil.Normalize(day)

	onLeave := make(map[string]bool)
	for _, l := range snap.Leaves {
		if l.Status == leaveDatamodel.StatusApproved && dateutil.ContainsInclusive(l.StartDate, l.EndDate, day) {
			onLeave[l.GuardID] = true
		}
	}

	covering := make(map[string]*headcount)
	count := func(siteID string) *headcount {
		h, ok := covering[siteID]
		if !ok {
			h = &headcount{}
			covering[siteID] = h
		}
		return h
	}
	for _, d := range snap.Deployments {
		if onLeave[d.GuardID] || !dateutil.ActiveHalfOpen(d.StartDate, d.EndDate, day) {
			continue
		}
		count(d.SiteID).add(d.Shift)
	}
	for _, a := range snap.Assignments {
		if !a.Covering() || !dateutil.ContainsInclusive(a.StartDate, a.EndDate, day) {
			continue
		}
		count(a.SiteID).add(a.Shift)
	}

	gaps := make([]Gap, 0)
	for _, site := range snap.Sites {
		if !site.Active || site.RequiredDay+site.RequiredNight == 0 {
			continue
		}

		h := count(site.ID)
		dayCover, nightCover, flexible := h.day, h.night, h.mixed
		fill := min(flexible, max(0, site.RequiredDay-dayCover))
		dayCover += fill
		flexible -= fill
		nightCover += min(flexible, max(0, site.RequiredNight-nightCover))

		if dayCover < site.RequiredDay {
			gaps = append(gaps, newGap(site, day, deploymentDatamodel.ShiftDay, site.RequiredDay, dayCover))
		}
		if nightCover < site.RequiredNight {
			gaps = append(gaps, newGap(site, day, deploymentDatamodel.ShiftNight, site.RequiredNight, nightCover))
		}
	}

	SortGaps(gaps)
	return gaps
}

func newGap(site *siteDatamodel.Site, day time.Time, shift deploymentDatamodel.Shift, required, covering int) Gap {
	return Gap{
		SiteID:     site.ID,
		SiteName:   site.Name,
		ClientName: site.ClientName,
		Date:       day,
		Shift:      shift,
		Required:   required,
		Covering:   covering,
		Deficit:    max(0, required-covering),
	}
}

// SortGaps orders by date, then deficit descending, site name, site id and
// finally DAY before NIGHT. Paginated callers rely on this order.
func SortGaps(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Deficit != b.Deficit {
			return a.Deficit > b.Deficit
		}
		if a.SiteName != b.SiteName {
			return a.SiteName < b.SiteName
		}
		if a.SiteID != b.SiteID {
			return a.SiteID < b.SiteID
		}
		return a.Shift == deploymentDatamodel.ShiftDay && b.Shift != deploymentDatamodel.ShiftDay
	})
}
