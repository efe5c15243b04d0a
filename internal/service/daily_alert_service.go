package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/email"
	"github.com/camarpe/camarpe-backend/internal/notification"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ============================================
// Daily Alert Service
// ============================================

// DailyAlertResult is the body returned by the cron endpoint.
type DailyAlertResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Sent    string `json:"sent,omitempty"`
}

type DailyAlertService interface {
	Run(ctx context.Context) (*DailyAlertResult, error)
}

type dailyAlertService struct {
	repo     repository.DashboardRepository
	notifier notification.Notifier
	mailer   Mailer
	cfg      *config.Config
	loc      *time.Location
	now      func() time.Time
	printer  *message.Printer
	log      *zap.Logger
}

func NewDailyAlertService(
	repo repository.DashboardRepository,
	notifier notification.Notifier,
	mailer Mailer,
	cfg *config.Config,
	log *zap.Logger,
) DailyAlertService {
	return &dailyAlertService{
		repo:     repo,
		notifier: notifier,
		mailer:   mailer,
		cfg:      cfg,
		loc:      time.Local,
		now:      time.Now,
		printer:  message.NewPrinter(language.BrazilianPortuguese),
		log:      log.With(zap.String("component", "cron")),
	}
}

func (s *dailyAlertService) brl(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return s.printer.Sprintf("R$ %.2f", f)
}

// Run collects overdue project payments and planned outflows that are
// overdue or due within three days, then pushes one summary to management
// and mails it when SMTP is configured.
func (s *dailyAlertService) Run(ctx context.Context) (*DailyAlertResult, error) {
	today := startOfDay(s.now().In(s.loc))
	horizon := today.AddDate(0, 0, billDueWindowDays)

	projects, err := s.repo.PaymentsDueBefore(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue payments: %w", err)
	}
	bills, err := s.repo.PlannedOutflowsDueBefore(ctx, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to load payables: %w", err)
	}

	var overduePayments, overdueBills, upcomingBills []email.AlertLine
	for _, p := range projects {
		if p.FinalPaymentDueAt == nil || !p.FinalPaymentDueAt.Before(today) || !p.PendingValue.IsPositive() {
			continue
		}
		overduePayments = append(overduePayments, email.AlertLine{Label: p.Name, Value: s.brl(p.PendingValue)})
	}
	for _, b := range bills {
		line := email.AlertLine{Label: b.Description, Value: s.brl(b.Amount)}
		switch {
		case b.DueAt.Before(today):
			overdueBills = append(overdueBills, line)
		case !b.DueAt.After(horizon):
			upcomingBills = append(upcomingBills, line)
		}
	}

	var parts []string
	if n := len(overduePayments); n > 0 {
		parts = append(parts, fmt.Sprintf("%d pagamento(s) vencido(s) de projeto", n))
	}
	if n := len(overdueBills); n > 0 {
		parts = append(parts, fmt.Sprintf("%d conta(s) vencida(s)", n))
	}
	if n := len(upcomingBills); n > 0 {
		parts = append(parts, fmt.Sprintf("%d conta(s) a vencer em até 3 dias", n))
	}
	if len(parts) == 0 {
		s.log.Info("no alerts today")
		return &DailyAlertResult{OK: true, Message: "Nenhum aviso"}, nil
	}

	summary := strings.Join(parts, "; ")
	if s.notifier != nil {
		if err := s.notifier.NotifyRoles(ctx, types.ManagementRoles, notification.DailyDigest(summary)); err != nil {
			s.log.Warn("failed to push daily alerts", zap.Error(err))
		}
	}

	if s.mailer != nil && s.mailer.Configured() && len(s.cfg.AlertEmails) > 0 {
		data := email.DailyAlertsData{
			Date:            today.Format("02/01/2006"),
			Summary:         summary,
			OverduePayments: overduePayments,
			OverdueBills:    overdueBills,
			UpcomingBills:   upcomingBills,
			DashboardURL:    strings.TrimRight(s.cfg.FrontendURL, "/") + "/dashboard",
		}
		if err := s.mailer.SendDailyAlerts(s.cfg.AlertEmails, data); err != nil {
			s.log.Warn("failed to email daily alerts", zap.Error(err))
		}
	}

	s.log.Info("daily alerts sent", zap.String("summary", summary))
	return &DailyAlertResult{OK: true, Sent: summary}, nil
}
