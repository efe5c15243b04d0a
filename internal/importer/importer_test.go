package importer_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/importer"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const actor = "00000000-0000-0000-0000-000000000001"

const (
	clientsHeader    = "Nome do Cliente,Telefone / WhatsApp,E-mail,Endereço (p/ Entrega e Medição),Observações\n"
	quotesHeader     = "Nome do Cliente,Descrição do Projeto,Status do Orçamento,Valor Proposto,Link - Orçamento,Link - Projeto 3D,Observações,Data do ultimo contato\n"
	productionHeader = "ID,Cliente,Descrição do Projeto,Status Atual,Início (Produção),Prazo (Entrega),Valor do Projeto\n"
	financialHeader  = "ID PRODUÇÃO,Cliente,Descrição do Pgto,Data Vencimento,Valor,Status Pagto,Data Recebimento,Link - Comp/NF\n"
)

func files(m map[importer.Kind]string) map[importer.Kind]io.Reader {
	out := make(map[importer.Kind]io.Reader, len(m))
	for k, v := range m {
		out[k] = strings.NewReader(v)
	}
	return out
}

func runImport(t *testing.T, store *repotest.Store, m map[importer.Kind]string) *importer.Stats {
	t.Helper()
	stats, err := importer.New(store, zap.NewNop()).Run(context.Background(), actor, files(m))
	require.NoError(t, err)
	return stats
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestImportEndToEnd(t *testing.T) {
	store := repotest.New()

	stats := runImport(t, store, map[importer.Kind]string{
		importer.KindClients:    clientsHeader + "João,38999999999,,,\n",
		importer.KindQuotes:     quotesHeader + "João,Cozinha,Fechado,8000,,,,\n",
		importer.KindProduction: productionHeader + "1,João,Cozinha,Montagem,,,\n",
		importer.KindFinancial:  financialHeader + "1,João,Entrada,,2000,Pago,2025-01-10,\n",
	})

	assert.Empty(t, stats.Errors)
	assert.Equal(t, 1, stats.LeadsCreated)
	assert.Equal(t, 1, stats.LeadsUpdated)
	assert.Equal(t, 1, stats.ProjectsCreated)
	assert.Equal(t, 1, stats.ProjectsUpdated)
	assert.Equal(t, 1, stats.PaymentsCreated)

	leads := store.AllLeads()
	require.Len(t, leads, 1)
	assert.Equal(t, "38999999999", leads[0].Phone)
	assert.Equal(t, types.LeadContractSigned, leads[0].Status)

	projects := store.AllProjects()
	require.Len(t, projects, 1)
	p := projects[0]
	assert.Equal(t, "Cozinha", p.Name)
	assert.Equal(t, types.StatusAssembly, p.ProductionStatus)
	require.NotNil(t, p.ExternalSheetID)
	assert.Equal(t, "1", *p.ExternalSheetID)
	assert.True(t, p.TotalValue.Equal(dec("8000")))
	assert.True(t, p.PaidValue.Equal(dec("2000")))
	assert.True(t, p.PendingValue.Equal(dec("6000")))

	payments := store.AllPayments()
	require.Len(t, payments, 1)
	assert.Equal(t, types.PaymentEntry, payments[0].Type)
	assert.True(t, payments[0].Amount.Equal(dec("2000")))
	require.NotNil(t, payments[0].ReceivedAt)
	assert.Equal(t, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC), *payments[0].ReceivedAt)

	assert.Len(t, store.AllChecklists(), 1)

	logs := store.AllStatusLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, types.StatusAwaitingFiles, logs[0].FromStatus)
	assert.Equal(t, types.StatusAssembly, logs[0].ToStatus)
}

func TestImportMatchesNamesAcrossSheets(t *testing.T) {
	store := repotest.New()

	stats := runImport(t, store, map[importer.Kind]string{
		importer.KindClients: clientsHeader + "Maria Silva,3899,,,instagram\n",
		importer.KindQuotes:  quotesHeader + "maria silva ,Sala,Orçamento enviado,,,,,\n",
	})

	assert.Equal(t, 1, stats.LeadsCreated)
	assert.Equal(t, 1, stats.LeadsUpdated)
	leads := store.AllLeads()
	require.Len(t, leads, 1)
	assert.Equal(t, types.ChannelInstagram, leads[0].Channel)
	assert.Equal(t, types.LeadQuoteSent, leads[0].Status)
}

func TestImportQuotesIsIdempotent(t *testing.T) {
	store := repotest.New()
	sheet := map[importer.Kind]string{
		importer.KindQuotes: quotesHeader + "Ana Costa,Closet,Fechado,\"5.000,00\",,,,\n",
	}

	first := runImport(t, store, sheet)
	assert.Equal(t, 1, first.LeadsCreated)
	assert.Equal(t, 1, first.ProjectsCreated)

	second := runImport(t, store, sheet)
	assert.Equal(t, 0, second.LeadsCreated)
	assert.Equal(t, 1, second.LeadsUpdated)
	assert.Equal(t, 0, second.ProjectsCreated)

	projects := store.AllProjects()
	require.Len(t, projects, 1)
	assert.True(t, projects[0].TotalValue.Equal(dec("5000")))
	assert.True(t, projects[0].PendingValue.Equal(dec("5000")))
	assert.True(t, projects[0].PaidValue.IsZero())
	assert.Len(t, store.AllLeads(), 1)
}

func TestImportFinancialEdgeCases(t *testing.T) {
	store := repotest.New()
	runImport(t, store, map[importer.Kind]string{
		importer.KindQuotes: quotesHeader + "Pedro,Armário quarto,Fechado,1000,,,,\n",
	})

	stats := runImport(t, store, map[importer.Kind]string{
		importer.KindFinancial: financialHeader +
			// resolved by client + first word of the description, dates unparseable
			",Pedro,Armário sinal,ontem,\"1.234,56\",,sem data,\n" +
			// zero amount is skipped silently
			",Pedro,Armário,,0,,,\n" +
			// unknown client
			",Fulano,Cozinha,,100,,,\n",
	})

	assert.Equal(t, 1, stats.PaymentsCreated)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, `Financeiro: projeto não encontrado para "Fulano" / Cozinha`, stats.Errors[0])

	payments := store.AllPayments()
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(dec("1234.56")))
	assert.Nil(t, payments[0].ReceivedAt)
	assert.Nil(t, payments[0].DueAt)
	assert.Equal(t, types.PaymentFinal, payments[0].Type)

	// a receivable leaves balances alone
	p := store.AllProjects()[0]
	assert.True(t, p.PendingValue.Equal(dec("1000")))
}

func TestImportFinancialSkipsBalanceWhenOverpaid(t *testing.T) {
	store := repotest.New()
	runImport(t, store, map[importer.Kind]string{
		importer.KindProduction: productionHeader + "7,Carla,Painel,Entregue,,10/01/2025,500\n",
	})

	stats := runImport(t, store, map[importer.Kind]string{
		importer.KindProduction: productionHeader + "7,Carla,Painel,Entregue,,10/01/2025,500\n",
		importer.KindFinancial:  financialHeader + "7,Carla,Final,,900,,15/01/2025,\n",
	})

	assert.Equal(t, 1, stats.PaymentsCreated)
	assert.Empty(t, stats.Errors)

	p := store.AllProjects()[0]
	assert.True(t, p.PaidValue.IsZero())
	assert.True(t, p.PendingValue.Equal(dec("500")))
	require.NotNil(t, p.ActualDeliveryAt)
	assert.Nil(t, p.PlannedDeliveryAt)
	assert.Len(t, store.AllPayments(), 1)
}

// countingStore records lead reads made outside transactions.
type countingStore struct {
	*repotest.Store
	byID, byKey int
}

func (s *countingStore) Leads() repository.LeadRepository {
	return &countingLeads{LeadRepository: s.Store.Leads(), s: s}
}

type countingLeads struct {
	repository.LeadRepository
	s *countingStore
}

func (l *countingLeads) FindByID(ctx context.Context, id string) (*repository.Lead, error) {
	l.s.byID++
	return l.LeadRepository.FindByID(ctx, id)
}

func (l *countingLeads) FindByNameKey(ctx context.Context, key string) (*repository.Lead, error) {
	l.s.byKey++
	return l.LeadRepository.FindByNameKey(ctx, key)
}

func TestImportProductionReusesLeadsSeenInRun(t *testing.T) {
	store := &countingStore{Store: repotest.New()}

	stats, err := importer.New(store, zap.NewNop()).Run(context.Background(), actor, files(map[importer.Kind]string{
		importer.KindProduction: productionHeader +
			"1,Dora,Cozinha,Montagem,,,4000\n" +
			"2,DÓRA ,Closet,Para corte,,,3000\n" +
			"3,dora,Painel,Entregue,,,1000\n",
	}))
	require.NoError(t, err)

	assert.Empty(t, stats.Errors)
	assert.Equal(t, 1, stats.LeadsCreated)
	assert.Equal(t, 3, stats.ProjectsCreated)
	assert.Equal(t, 1, store.byKey)
	assert.Zero(t, store.byID)

	leads := store.AllLeads()
	require.Len(t, leads, 1)
	for _, p := range store.AllProjects() {
		assert.Equal(t, leads[0].ID, *p.LeadID)
	}
}

func TestImportRowFailureDoesNotAbortRun(t *testing.T) {
	store := repotest.New()
	store.Fail = func(op string) error {
		if op == "projects.CreateChecklist" {
			return errors.New("checklist indisponível")
		}
		return nil
	}

	stats := runImport(t, store, map[importer.Kind]string{
		importer.KindClients: clientsHeader + ",3899,,,\nBeto,3800,,,\n",
		importer.KindQuotes:  quotesHeader + "Beto,Cozinha,Fechado,3000,,,,\n",
	})

	assert.Equal(t, 1, stats.LeadsCreated)
	assert.Equal(t, 0, stats.ProjectsCreated)
	require.Len(t, stats.Errors, 2)
	assert.Contains(t, stats.Errors[0], "linha 2")
	assert.Contains(t, stats.Errors[1], "checklist indisponível")

	// the project insert was rolled back together with its checklist
	assert.Empty(t, store.AllProjects())
	assert.Len(t, store.AllLeads(), 1)
}

func TestImportWithoutFiles(t *testing.T) {
	stats := runImport(t, repotest.New(), nil)
	assert.Equal(t, importer.Stats{Errors: []string{}}, *stats)
}

var _ repository.Store = (*repotest.Store)(nil)
