package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/camarpe/camarpe-backend/internal/api/handlers"
	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	router *gin.Engine
	store  *repotest.Store
	tokens map[types.Role]string
}

func newFixture(t *testing.T, cronSecret string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		JWTSecret:   "router-test-secret-0123456789abcdef",
		JWTExpiry:   1,
		CronSecret:  cronSecret,
	}
	store := repotest.New()
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  &repository.Repositories{Store: store, Dashboard: store.Dashboard()},
		Log:    zap.NewNop(),
	})

	f := &fixture{
		router: NewRouter(RouterDeps{
			Handlers: handlers.NewHandlers(services, cfg, zap.NewNop()),
			Auth:     services.Auth,
		}),
		store:  store,
		tokens: map[types.Role]string{},
	}

	ctx := context.Background()
	for _, role := range types.ValidRoles {
		email := strings.ToLower(string(role)) + "@camarpe.com.br"
		_, err := services.User.Create(ctx, service.CreateUserInput{Name: string(role), Email: email, Password: "segredo", Role: role})
		require.NoError(t, err)
		_, token, err := services.Auth.Login(ctx, email, "segredo")
		require.NoError(t, err)
		f.tokens[role] = token
	}
	return f
}

func (f *fixture) do(t *testing.T, method, path string, role types.Role, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[role])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestLoginSetsSessionCookie(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@camarpe.com.br", "senha": "segredo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	f.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ADMIN", decode[map[string]any](t, me)["role"])

	w = f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@camarpe.com.br", "senha": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "E-mail ou senha inválidos", errorOf(t, w))
}

func TestRouteGates(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/leads", types.RoleProducao, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/fluxo-caixa", types.RoleComercial, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/credenciais", types.RoleGestao, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/projetos", types.RoleProducao, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLeadLifecycle(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/leads", types.RoleComercial, map[string]any{
		"nome": "Ana Souza", "telefone": "38999990000", "origem": "INSTAGRAM",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lead := decode[repository.Lead](t, w)

	w = f.do(t, http.MethodPatch, "/api/leads/"+lead.ID, types.RoleComercial, map[string]any{"status": "PERDIDO"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Motivo da perda é obrigatório quando status é Perdido", errorOf(t, w))

	w = f.do(t, http.MethodPatch, "/api/leads/"+lead.ID, types.RoleComercial, map[string]any{"status": "ORCAMENTO_ENVIADO"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/leads/"+lead.ID+"/atividades", types.RoleComercial, nil)
	require.Equal(t, http.StatusOK, w.Code)
	activities := decode[[]repository.LeadActivity](t, w)
	require.Len(t, activities, 1)
	assert.Equal(t, types.ActivityQuoteSent, activities[0].Type)

	w = f.do(t, http.MethodGet, "/api/export/leads", types.RoleGestao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	lines := strings.Split(strings.TrimRight(w.Body.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Ana Souza,,38999990000,Instagram,"))

	w = f.do(t, http.MethodGet, "/api/leads/nao-existe", types.RoleComercial, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConvertLeadAndPayments(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/leads", types.RoleComercial, map[string]any{
		"nome": "Bruno", "telefone": "3832210000", "origem": "ARQUITETO",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lead := decode[repository.Lead](t, w)

	w = f.do(t, http.MethodPost, "/api/leads/"+lead.ID+"/converter", types.RoleComercial, map[string]any{
		"nomeProjeto": "Cozinha planejada", "valorTotal": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[repository.Project](t, w)
	assert.Len(t, f.store.AllChecklists(), 1)

	w = f.do(t, http.MethodPost, "/api/projetos/"+project.ID+"/pagamentos", types.RoleComercial, map[string]any{
		"valor": 1500, "tipo": "ENTRADA", "data": "2025-06-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Valor do pagamento excede o valor pendente", errorOf(t, w))

	w = f.do(t, http.MethodPost, "/api/projetos/"+project.ID+"/pagamentos", types.RoleComercial, map[string]any{
		"valor": 400, "tipo": "ENTRADA", "data": "2025-06-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/projetos/"+project.ID, types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[repository.Project](t, w)
	assert.Equal(t, "600", detail.PendingValue.String())

	w = f.do(t, http.MethodPost, "/api/projetos/"+project.ID+"/pagamentos", types.RoleProducao, map[string]any{
		"valor": 10, "tipo": "ENTRADA",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductionPatchRules(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/projetos", types.RoleComercial, map[string]any{
		"nome": "Closet", "custoMateriais": 1000, "custoMaoObra": 500, "margemPct": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[repository.Project](t, w)
	assert.Equal(t, "1800", project.TotalValue.String())

	w = f.do(t, http.MethodPatch, "/api/projetos/"+project.ID, types.RoleProducao, map[string]any{"statusProducao": "PARA_CORTE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.StatusReadyForCut, decode[repository.Project](t, w).ProductionStatus)

	w = f.do(t, http.MethodPatch, "/api/projetos/"+project.ID, types.RoleProducao, map[string]any{"nome": "Outro nome"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/projetos/"+project.ID+"/status-log", types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]repository.StatusLog](t, w)
	require.Len(t, logs, 1)
	assert.Equal(t, types.StatusAwaitingFiles, logs[0].FromStatus)

	w = f.do(t, http.MethodGet, "/api/projetos/kanban", types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	columns := decode[[]map[string]any](t, w)
	assert.Len(t, columns, len(types.ProductionOrder))
}

func TestImportEndpoints(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/import/template?tipo=vendas", types.RoleAdmin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/api/import/template?tipo=clientes", "/api/import/template", "/api/import/template?tipo="} {
		w = f.do(t, http.MethodGet, path, types.RoleAdmin, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "modelo-clientes.csv")
		assert.True(t, strings.HasPrefix(w.Body.String(), "Nome do Cliente,"), path)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("clientes", "clientes.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Nome do Cliente,Telefone / WhatsApp\nCarla,3899\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import/planilhas", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+f.tokens[types.RoleAdmin])
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["leadsCriados"])
	assert.Len(t, f.store.AllLeads(), 1)
}

func TestCronSecret(t *testing.T) {
	f := newFixture(t, "cron-secret")

	w := f.do(t, http.MethodGet, "/api/cron/avisos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Não autorizado", errorOf(t, w))

	req := httptest.NewRequest(http.MethodGet, "/api/cron/avisos", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true, "message": "Nenhum aviso"}, decode[map[string]any](t, rec))

	open := newFixture(t, "")
	w = open.do(t, http.MethodGet, "/api/cron/avisos", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCredentialsWithoutKeyFail(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/credenciais", types.RoleAdmin, map[string]any{
		"categoria": "Banco", "servico": "Sicoob", "senha": "x",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Chave de criptografia não configurada", errorOf(t, w))
}

func TestDashboardAndStock(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/estoque", types.RoleComercial, map[string]any{
		"nome": "Dobradiça", "quantidadeMinima": 10, "quantidadeAtual": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/estoque", types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	overview := decode[service.StockOverview](t, w)
	assert.Len(t, overview.Alerts, 1)

	w = f.do(t, http.MethodGet, "/api/dashboard", types.RoleGestao, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dash := decode[map[string]any](t, w)
	alerts, ok := dash["avisos"].([]any)
	require.True(t, ok)
	assert.Len(t, alerts, 1)

	w = f.do(t, http.MethodGet, "/api/dashboard", types.RoleProducao, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProjectMaterialsAndExport(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/projetos", types.RoleComercial, map[string]any{"nome": "Closet", "valorTotal": 1800})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[repository.Project](t, w)

	w = f.do(t, http.MethodPatch, "/api/projetos/"+project.ID, types.RoleComercial, map[string]any{
		"materiais": []map[string]any{{"descricao": "MDF 18mm", "quantidade": 6}, {"descricao": "Puxador"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPatch, "/api/projetos/"+project.ID, types.RoleProducao, map[string]any{
		"materiais": []map[string]any{},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/projetos/"+project.ID, types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Materials []repository.Material `json:"materiais"`
	}](t, w)
	require.Len(t, detail.Materials, 2)
	assert.Equal(t, "MDF 18mm", detail.Materials[0].Description)

	w = f.do(t, http.MethodGet, "/api/export/projetos?statusProducao=AGUARDANDO_ARQUIVOS", types.RoleComercial, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "projetos-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\r\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Closet,,,Aguardando arquivos,1800.00,0.00,1800.00,"), lines[1])

	w = f.do(t, http.MethodGet, "/api/export/projetos?statusProducao=ENTREGUE", types.RoleComercial, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, strings.Split(strings.TrimSpace(w.Body.String()), "\r\n"), 1)

	w = f.do(t, http.MethodGet, "/api/export/projetos?statusProducao=X", types.RoleComercial, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/export/projetos", types.RoleProducao, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCompanyInfoEndpoints(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/dados-institucionais", types.RoleProducao, nil)
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[map[string]any](t, w)
	assert.Contains(t, empty, "id")
	assert.Nil(t, empty["id"])
	assert.Nil(t, empty["cnpj"])

	w = f.do(t, http.MethodPatch, "/api/dados-institucionais", types.RoleComercial, map[string]any{"cnpj": "1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPatch, "/api/dados-institucionais", types.RoleGestao, map[string]any{
		"cnpj": "12.345.678/0001-90", "site": "https://camarpe.com.br",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/dados-institucionais", types.RoleComercial, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[service.CompanyInfoView](t, w)
	require.NotNil(t, got.ID)
	assert.Equal(t, "12.345.678/0001-90", *got.CNPJ)
	assert.Equal(t, "https://camarpe.com.br", *got.Website)

	w = f.do(t, http.MethodGet, "/api/dados-institucionais", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetEndpoints(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/auth/esqueci-senha", "", map[string]string{"email": "nao-e-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "E-mail inválido", errorOf(t, w))

	for _, addr := range []string{"comercial@camarpe.com.br", "ninguem@camarpe.com.br"} {
		w = f.do(t, http.MethodPost, "/api/auth/esqueci-senha", "", map[string]string{"email": addr})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, service.ResetRequestedMessage, decode[map[string]any](t, w)["message"])
	}
	assert.Len(t, f.store.AllPasswordResets(), 1)

	w = f.do(t, http.MethodPost, "/api/auth/redefinir-senha", "", map[string]string{"token": "abc", "senha": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Senha deve ter no mínimo 6 caracteres", errorOf(t, w))

	w = f.do(t, http.MethodPost, "/api/auth/redefinir-senha", "", map[string]string{"token": "abc", "senha": "nova-senha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Link inválido ou expirado. Solicite um novo.", errorOf(t, w))
}
