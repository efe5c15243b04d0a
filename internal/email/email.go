// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
	log       *zap.Logger
}

func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
		log:       log.With(zap.String("component", "email")),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// Configured reports whether an SMTP host is set.
func (s *Service) Configured() bool {
	return s != nil && s.config != nil && s.config.Host != ""
}

// AlertLine is one row of the daily digest.
type AlertLine struct {
	Label string
	Value string
}

// DailyAlertsData holds data for the daily digest email
type DailyAlertsData struct {
	Date            string
	Summary         string
	OverduePayments []AlertLine
	OverdueBills    []AlertLine
	UpcomingBills   []AlertLine
	DashboardURL    string
}

// PasswordResetData holds data for the reset link email
type PasswordResetData struct {
	Name      string
	ResetURL  string
	ExpiresIn string
}

func (s *Service) loadTemplates() {
	s.templates["password_reset"] = template.Must(template.New("password_reset").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.5; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { background: #faf7f2; padding: 24px; border-radius: 8px; }
        .btn { display: inline-block; background: #7c4a1e; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="content">
        <p>Olá, {{.Name}}.</p>
        <p>Recebemos um pedido para redefinir a sua senha. O link vale por {{.ExpiresIn}}.</p>
        <a href="{{.ResetURL}}" class="btn">Redefinir senha</a>
        <p>Se você não fez o pedido, ignore este e-mail.</p>
    </div>
    <div class="footer">
        Camarpe Móveis Planejados
    </div>
</div>
</body>
</html>
`))

	s.templates["daily_alerts"] = template.Must(template.New("daily_alerts").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.5; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c4a1e; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #faf7f2; padding: 24px; border-radius: 0 0 8px 8px; }
        h3 { margin-bottom: 4px; }
        .btn { display: inline-block; background: #7c4a1e; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Avisos do dia {{.Date}}</h2>
    </div>
    <div class="content">
        <p>{{.Summary}}</p>
        {{if .OverduePayments}}<h3>Pagamentos de projeto vencidos</h3>
        <ul>{{range .OverduePayments}}<li>{{.Label}}: {{.Value}}</li>{{end}}</ul>{{end}}
        {{if .OverdueBills}}<h3>Contas vencidas</h3>
        <ul>{{range .OverdueBills}}<li>{{.Label}}: {{.Value}}</li>{{end}}</ul>{{end}}
        {{if .UpcomingBills}}<h3>Contas a vencer em até 3 dias</h3>
        <ul>{{range .UpcomingBills}}<li>{{.Label}}: {{.Value}}</li>{{end}}</ul>{{end}}
        <a href="{{.DashboardURL}}" class="btn">Abrir painel</a>
    </div>
    <div class="footer">
        Camarpe Móveis Planejados
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email. Without an SMTP host it is a no-op.
func (s *Service) Send(email *Email) error {
	if !s.Configured() {
		s.log.Debug("email not configured, skipping send", zap.String("subject", email.Subject))
		return nil
	}

	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	recipients := append(append([]string{}, email.To...), email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if !s.config.UseTLS {
		return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("TLS dial error: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("SMTP client error: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("auth error: %w", err)
	}
	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("mail error: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt error: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data error: %w", err)
	}
	if _, err = w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}
	return client.Quit()
}

func (s *Service) render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	body, err := s.render(templateName, data)
	if err != nil {
		return err
	}
	return s.Send(&Email{To: to, Subject: subject, HTMLBody: body})
}

// SendDailyAlerts mails the morning digest.
func (s *Service) SendDailyAlerts(to []string, data DailyAlertsData) error {
	if len(to) == 0 {
		return nil
	}
	return s.SendWithTemplate(to, "[Camarpe] Avisos do dia "+data.Date, "daily_alerts", data)
}

// SendPasswordReset mails the reset link to one user.
func (s *Service) SendPasswordReset(to string, data PasswordResetData) error {
	return s.SendWithTemplate([]string{to}, "[Camarpe] Redefinição de senha", "password_reset", data)
}
