package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
)

// Dashboard computes the read-side aggregates from the in-memory state.
// The date-window alert queries return nothing; dashboard alert rules are
// tested against canned rows instead.
func (s *Store) Dashboard() repository.DashboardRepository { return &dashboardRepo{s} }

type dashboardRepo struct{ s *Store }

var _ repository.DashboardRepository = (*dashboardRepo)(nil)

func (r *dashboardRepo) snapshot() *state {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.st().clone()
}

func groupCounts(keys []string) []repository.GroupCount {
	counts := map[string]int{}
	for _, k := range keys {
		counts[k]++
	}
	out := make([]repository.GroupCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, repository.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *dashboardRepo) LeadCountsByStatus(context.Context) ([]repository.GroupCount, error) {
	var keys []string
	for _, l := range r.snapshot().leads {
		keys = append(keys, string(l.Status))
	}
	return groupCounts(keys), nil
}

func (r *dashboardRepo) LeadCountsByChannel(context.Context) ([]repository.GroupCount, error) {
	var keys []string
	for _, l := range r.snapshot().leads {
		keys = append(keys, string(l.Channel))
	}
	return groupCounts(keys), nil
}

func (r *dashboardRepo) LeadCreationDates(_ context.Context, since time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, l := range r.snapshot().leads {
		if !l.CreatedAt.Before(since) {
			out = append(out, l.CreatedAt)
		}
	}
	return out, nil
}

func (r *dashboardRepo) CountLeads(context.Context) (int, int, error) {
	st := r.snapshot()
	withProject := map[string]bool{}
	for _, p := range st.projects {
		if p.LeadID != nil {
			withProject[*p.LeadID] = true
		}
	}
	converted := 0
	for _, l := range st.leads {
		if withProject[l.ID] {
			converted++
		}
	}
	return len(st.leads), converted, nil
}

func (r *dashboardRepo) ProjectTotals(context.Context) (*repository.ProjectTotals, error) {
	totals := &repository.ProjectTotals{Total: decimal.Zero, Pending: decimal.Zero}
	for _, p := range r.snapshot().projects {
		totals.Total = totals.Total.Add(p.TotalValue)
		totals.Pending = totals.Pending.Add(p.PendingValue)
		totals.Count++
		if p.ProductionStatus == types.StatusDelivered && p.PendingValue.IsPositive() {
			totals.DeliveredWithPending++
		}
	}
	return totals, nil
}

func (r *dashboardRepo) ProjectCountsByStatus(context.Context) ([]repository.GroupCount, error) {
	var keys []string
	for _, p := range r.snapshot().projects {
		keys = append(keys, string(p.ProductionStatus))
	}
	return groupCounts(keys), nil
}

func (r *dashboardRepo) ReceivedPaymentsSince(_ context.Context, since time.Time) ([]repository.ReceivedPayment, error) {
	var out []repository.ReceivedPayment
	for _, p := range r.snapshot().payments {
		if p.ReceivedAt != nil && !p.ReceivedAt.Before(since) {
			out = append(out, repository.ReceivedPayment{Amount: p.Amount, ReceivedAt: *p.ReceivedAt})
		}
	}
	return out, nil
}

func (r *dashboardRepo) PaymentsDueBefore(context.Context, time.Time) ([]repository.ProjectAlertRow, error) {
	return nil, nil
}

func (r *dashboardRepo) ProjectsStuckIn(context.Context, []types.ProductionStatus, time.Time) ([]repository.ProjectAlertRow, error) {
	return nil, nil
}

func (r *dashboardRepo) QuotedLeadsIdleSince(context.Context, time.Time) ([]repository.LeadAlertRow, error) {
	return nil, nil
}

func (r *dashboardRepo) LowStockItems(context.Context) ([]repository.StockAlertRow, error) {
	var out []repository.StockAlertRow
	for _, it := range r.snapshot().stockItems {
		if it.AlertActive && it.CurrentQuantity < it.MinimumQuantity {
			out = append(out, repository.StockAlertRow{
				ID:              it.ID,
				Name:            it.Name,
				MinimumQuantity: it.MinimumQuantity,
				CurrentQuantity: it.CurrentQuantity,
			})
		}
	}
	return out, nil
}

func (r *dashboardRepo) PlannedOutflowsDueBefore(context.Context, time.Time) ([]repository.CashAlertRow, error) {
	return nil, nil
}

func (r *dashboardRepo) LeadExport(_ context.Context, filter repository.LeadFilter) ([]repository.LeadExportRow, error) {
	leads := r.snapshot().leads
	sort.SliceStable(leads, func(i, j int) bool { return leads[i].UpdatedAt.After(leads[j].UpdatedAt) })

	var out []repository.LeadExportRow
	for _, l := range leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Channel != "" && l.Channel != filter.Channel {
			continue
		}
		if filter.Search != "" && !containsFold(l.Name, filter.Search) && !containsFold(l.Phone, filter.Search) {
			continue
		}
		out = append(out, repository.LeadExportRow{
			Name:               l.Name,
			Email:              l.Email,
			Phone:              l.Phone,
			Channel:            l.Channel,
			Status:             l.Status,
			LossReason:         l.LossReason,
			ProjectDescription: l.ProjectDescription,
			CreatedAt:          l.CreatedAt,
			UpdatedAt:          l.UpdatedAt,
		})
	}
	return out, nil
}

func (r *dashboardRepo) ProjectExport(_ context.Context, status types.ProductionStatus) ([]repository.ProjectExportRow, error) {
	st := r.snapshot()
	projects := st.projects
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })

	var out []repository.ProjectExportRow
	for _, p := range projects {
		if status != "" && p.ProductionStatus != status {
			continue
		}
		row := repository.ProjectExportRow{
			Name:              p.Name,
			ProductionStatus:  p.ProductionStatus,
			TotalValue:        p.TotalValue,
			PaidValue:         p.PaidValue,
			PendingValue:      p.PendingValue,
			FinalPaymentDueAt: p.FinalPaymentDueAt,
			PlannedDeliveryAt: p.PlannedDeliveryAt,
			ActualDeliveryAt:  p.ActualDeliveryAt,
			CreatedAt:         p.CreatedAt,
		}
		for _, l := range st.leads {
			if p.LeadID != nil && l.ID == *p.LeadID {
				name, phone := l.Name, l.Phone
				row.LeadName, row.LeadPhone = &name, &phone
			}
		}
		out = append(out, row)
	}
	return out, nil
}
