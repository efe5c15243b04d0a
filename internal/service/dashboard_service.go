package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ============================================
// Dashboard Service
// ============================================

const (
	dashboardCacheKey     = "dashboard:summary"
	dashboardCachePattern = "dashboard:*"
	dashboardMonths       = 6

	paymentDueWindow  = 7 * 24 * time.Hour
	stalledAfter      = 7 * 24 * time.Hour
	leadIdleAfter     = 5 * 24 * time.Hour
	billDueWindowDays = 3
)

// Alert kinds shown on the dashboard.
const (
	AlertPaymentOverdue = "pagamento_vencido"
	AlertPaymentSoon    = "pagamento_proximo"
	AlertProjectStalled = "projeto_parado"
	AlertLeadIdle       = "lead_sem_contato"
	AlertLowStock       = "estoque"
	AlertBillOverdue    = "conta_vencida"
	AlertBillDueSoon    = "conta_a_vencer"
)

type MonthCount struct {
	Month string `json:"mes"`
	Total int    `json:"total"`
}

type MonthValue struct {
	Month string          `json:"mes"`
	Value decimal.Decimal `json:"valor"`
}

type DashboardAlert struct {
	Type    string `json:"tipo"`
	Message string `json:"mensagem"`
	Link    string `json:"link,omitempty"`
	ID      string `json:"id,omitempty"`
}

type CRMSummary struct {
	ByStatus       map[types.LeadStatus]int `json:"porStatus"`
	ByChannel      map[string]int           `json:"porOrigem"`
	ByMonth        []MonthCount             `json:"porMes"`
	TotalLeads     int                      `json:"totalLeads"`
	Converted      int                      `json:"convertidos"`
	ConversionRate float64                  `json:"taxaConversao"`
}

type FinanceSummary struct {
	TotalBilled          decimal.Decimal `json:"totalFaturado"`
	TotalPending         decimal.Decimal `json:"totalPendente"`
	DeliveredWithPending int             `json:"entreguesComPendencia"`
	TotalProjects        int             `json:"totalProjetos"`
	RevenueByMonth       []MonthValue    `json:"faturamentoPorMes"`
}

type ProductionSummary struct {
	ByStage map[string]int `json:"porEtapa"`
}

type Dashboard struct {
	CRM        CRMSummary        `json:"crm"`
	Finance    FinanceSummary    `json:"financeiro"`
	Production ProductionSummary `json:"producao"`
	Alerts     []DashboardAlert  `json:"avisos"`
}

type DashboardService interface {
	Get(ctx context.Context) (*Dashboard, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	repo  repository.DashboardRepository
	cache Cache
	ttl   time.Duration
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewDashboardService(repo repository.DashboardRepository, cache Cache, ttl time.Duration, log *zap.Logger) DashboardService {
	return &dashboardService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		loc:   time.Local,
		now:   time.Now,
		log:   log.With(zap.String("component", "dashboard")),
	}
}

// Get serves the cached summary when present and rebuilds it otherwise.
// Cache failures only cost a rebuild.
func (s *dashboardService) Get(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		var cached Dashboard
		if err := s.cache.GetCache(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	dash, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetCache(ctx, dashboardCacheKey, dash, s.ttl); err != nil {
			s.log.Debug("failed to cache dashboard", zap.Error(err))
		}
	}
	return dash, nil
}

func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, dashboardCachePattern); err != nil {
		s.log.Debug("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *dashboardService) build(ctx context.Context) (*Dashboard, error) {
	now := s.now().In(s.loc)
	since := time.Date(now.Year(), now.Month()-(dashboardMonths-1), 1, 0, 0, 0, 0, s.loc)

	var (
		byStatus, byChannel, byStage []repository.GroupCount
		created                      []time.Time
		totalLeads, converted        int
		totals                       *repository.ProjectTotals
		received                     []repository.ReceivedPayment
		duePayments, stalled         []repository.ProjectAlertRow
		idleLeads                    []repository.LeadAlertRow
		lowStock                     []repository.StockAlertRow
		bills                        []repository.CashAlertRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { byStatus, err = s.repo.LeadCountsByStatus(gctx); return })
	g.Go(func() (err error) { byChannel, err = s.repo.LeadCountsByChannel(gctx); return })
	g.Go(func() (err error) { created, err = s.repo.LeadCreationDates(gctx, since); return })
	g.Go(func() (err error) { totalLeads, converted, err = s.repo.CountLeads(gctx); return })
	g.Go(func() (err error) { totals, err = s.repo.ProjectTotals(gctx); return })
	g.Go(func() (err error) { byStage, err = s.repo.ProjectCountsByStatus(gctx); return })
	g.Go(func() (err error) { received, err = s.repo.ReceivedPaymentsSince(gctx, since); return })
	g.Go(func() (err error) {
		duePayments, err = s.repo.PaymentsDueBefore(gctx, now.Add(paymentDueWindow))
		return
	})
	g.Go(func() (err error) {
		stalled, err = s.repo.ProjectsStuckIn(gctx, []types.ProductionStatus{types.StatusAwaitingFiles}, now.Add(-stalledAfter))
		return
	})
	g.Go(func() (err error) {
		idleLeads, err = s.repo.QuotedLeadsIdleSince(gctx, now.Add(-leadIdleAfter))
		return
	})
	g.Go(func() (err error) { lowStock, err = s.repo.LowStockItems(gctx); return })
	g.Go(func() (err error) {
		bills, err = s.repo.PlannedOutflowsDueBefore(gctx, startOfDay(now).AddDate(0, 0, billDueWindowDays+1))
		return
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	dash := &Dashboard{
		CRM: CRMSummary{
			ByStatus:   make(map[types.LeadStatus]int, len(types.ValidLeadStatuses)),
			ByChannel:  make(map[string]int),
			ByMonth:    make([]MonthCount, dashboardMonths),
			TotalLeads: totalLeads,
			Converted:  converted,
		},
		Finance: FinanceSummary{
			RevenueByMonth: make([]MonthValue, dashboardMonths),
		},
		Production: ProductionSummary{ByStage: make(map[string]int)},
		Alerts:     []DashboardAlert{},
	}

	for _, st := range types.ValidLeadStatuses {
		dash.CRM.ByStatus[st] = 0
	}
	for _, c := range byStatus {
		dash.CRM.ByStatus[types.LeadStatus(c.Key)] = c.Count
	}
	for _, c := range byChannel {
		dash.CRM.ByChannel[c.Key] = c.Count
	}
	for _, c := range byStage {
		dash.Production.ByStage[c.Key] = c.Count
	}

	for i := 0; i < dashboardMonths; i++ {
		label := monthLabel(since.AddDate(0, i, 0))
		dash.CRM.ByMonth[i] = MonthCount{Month: label}
		dash.Finance.RevenueByMonth[i] = MonthValue{Month: label, Value: decimal.Zero}
	}
	for _, t := range created {
		dash.CRM.ByMonth[monthIndex(since, t.In(s.loc))].Total++
	}
	for _, p := range received {
		i := monthIndex(since, p.ReceivedAt.In(s.loc))
		dash.Finance.RevenueByMonth[i].Value = dash.Finance.RevenueByMonth[i].Value.Add(p.Amount)
	}
	if totalLeads > 0 {
		dash.CRM.ConversionRate = math.Round(float64(converted)/float64(totalLeads)*100*100) / 100
	}

	if totals != nil {
		dash.Finance.TotalBilled = totals.Total.Sub(totals.Pending)
		dash.Finance.TotalPending = totals.Pending
		dash.Finance.TotalProjects = totals.Count
		dash.Finance.DeliveredWithPending = totals.DeliveredWithPending
	}

	dash.Alerts = buildAlerts(now, duePayments, stalled, idleLeads, lowStock, bills)
	return dash, nil
}

func buildAlerts(
	now time.Time,
	duePayments, stalled []repository.ProjectAlertRow,
	idleLeads []repository.LeadAlertRow,
	lowStock []repository.StockAlertRow,
	bills []repository.CashAlertRow,
) []DashboardAlert {
	alerts := []DashboardAlert{}
	for _, p := range duePayments {
		if p.FinalPaymentDueAt == nil || !p.PendingValue.IsPositive() {
			continue
		}
		alert := DashboardAlert{Type: AlertPaymentSoon, Message: "Pagamento previsto em breve: " + p.Name, Link: "/projetos/" + p.ID, ID: p.ID}
		if p.FinalPaymentDueAt.Before(now) {
			alert.Type = AlertPaymentOverdue
			alert.Message = "Pagamento vencido: " + p.Name
		}
		alerts = append(alerts, alert)
	}
	for _, p := range stalled {
		alerts = append(alerts, DashboardAlert{
			Type:    AlertProjectStalled,
			Message: fmt.Sprintf("%s aguardando arquivos há %d dias", p.Name, daysBetween(p.CreatedAt, now)),
			Link:    "/projetos/" + p.ID,
			ID:      p.ID,
		})
	}
	for _, l := range idleLeads {
		alerts = append(alerts, DashboardAlert{
			Type:    AlertLeadIdle,
			Message: fmt.Sprintf("%s sem contato há %d dias", l.Name, daysBetween(l.LastActivity, now)),
			Link:    "/leads/" + l.ID,
			ID:      l.ID,
		})
	}
	for _, it := range lowStock {
		alerts = append(alerts, DashboardAlert{
			Type:    AlertLowStock,
			Message: fmt.Sprintf("Estoque: %s abaixo do mínimo (%d/%d)", it.Name, it.CurrentQuantity, it.MinimumQuantity),
			Link:    "/compras",
		})
	}
	today := startOfDay(now)
	for _, b := range bills {
		alert := DashboardAlert{Type: AlertBillDueSoon, Message: "Conta a vencer: " + b.Description, Link: "/fluxo-caixa", ID: b.ID}
		if b.DueAt.Before(today) {
			alert.Type = AlertBillOverdue
			alert.Message = "Conta vencida: " + b.Description
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// monthIndex places t in one of the dashboard buckets starting at since,
// clamping anything outside the window to the first or last bucket.
func monthIndex(since, t time.Time) int {
	i := (t.Year()-since.Year())*12 + int(t.Month()) - int(since.Month())
	if i < 0 {
		return 0
	}
	if i > dashboardMonths-1 {
		return dashboardMonths - 1
	}
	return i
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
