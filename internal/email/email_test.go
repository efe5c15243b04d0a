package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderDailyAlerts(t *testing.T) {
	s := NewService(&Config{}, zap.NewNop())

	body, err := s.render("daily_alerts", DailyAlertsData{
		Date:            "19/10/2026",
		Summary:         "1 pagamento(s) vencido(s) de projeto",
		OverduePayments: []AlertLine{{Label: "Cozinha <João>", Value: "R$ 6.000,00"}},
		DashboardURL:    "http://localhost:3000/dashboard",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Avisos do dia 19/10/2026")
	assert.Contains(t, body, "Cozinha &lt;João&gt;: R$ 6.000,00")
	assert.Contains(t, body, "Pagamentos de projeto vencidos")
	assert.NotContains(t, body, "Contas vencidas")
}

func TestRenderPasswordReset(t *testing.T) {
	s := NewService(&Config{}, zap.NewNop())

	body, err := s.render("password_reset", PasswordResetData{
		Name:      "Ana",
		ResetURL:  "http://localhost:3000/redefinir-senha?token=abc",
		ExpiresIn: "1 hora",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Olá, Ana.")
	assert.Contains(t, body, `href="http://localhost:3000/redefinir-senha?token=abc"`)
	assert.Contains(t, body, "O link vale por 1 hora.")
}

func TestRenderUnknownTemplate(t *testing.T) {
	s := NewService(&Config{}, zap.NewNop())
	_, err := s.render("missing", nil)
	assert.Error(t, err)
}

func TestSendWithoutHostIsNoop(t *testing.T) {
	s := NewService(&Config{}, zap.NewNop())
	assert.False(t, s.Configured())
	assert.NoError(t, s.SendDailyAlerts([]string{"gestao@camarpe.com.br"}, DailyAlertsData{Date: "19/10/2026"}))
}
