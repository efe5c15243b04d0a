package importer

import (
	"testing"

	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestChannelRules(t *testing.T) {
	cases := map[string]types.LeadChannel{
		"Veio pelo Instagram":        types.ChannelInstagram,
		"amigo do Pedro":             types.ChannelFriend,
		"familiar":                   types.ChannelFamily,
		"Parceiro da loja":           types.ChannelPartner,
		"indicação de arquiteto":     types.ChannelArchitect,
		"anúncio facebook":           types.ChannelFacebook,
		"pelo site":                  types.ChannelSite,
		"":                           types.ChannelReferral,
		"instagram de um amigo":      types.ChannelInstagram,
		"cliente antigo, sem origem": types.ChannelReferral,
	}
	for text, want := range cases {
		assert.Equal(t, want, ChannelRules.Resolve(text), text)
	}
}

func TestQuoteStatusRules(t *testing.T) {
	cases := map[string]types.LeadStatus{
		"Fechado":              types.LeadContractSigned,
		"FECHADO - contrato":   types.LeadContractSigned,
		"Perdido (preço)":      types.LeadLost,
		"Follow-up semana 2":   types.LeadQuoteSent,
		"Orçamento enviado":    types.LeadQuoteSent,
		"em negociação":        types.LeadNew,
		"":                     types.LeadNew,
		"perdido após fechado": types.LeadLost,
	}
	for text, want := range cases {
		assert.Equal(t, want, QuoteStatusRules.Resolve(text), text)
	}
}

func TestProductionStatusRules(t *testing.T) {
	cases := map[string]types.ProductionStatus{
		"Entregue":                types.StatusDelivered,
		"Pronto para entrega":     types.StatusInstallation,
		"Em instalação":           types.StatusInstallation,
		"Pausado pelo cliente":    types.StatusPaused,
		"Aguardando Início":       types.StatusAwaitingFiles,
		"aguardando inicio":       types.StatusAwaitingFiles,
		"Fitagem":                 types.StatusEdgeBanding,
		"Colocando fita de borda": types.StatusEdgeBanding,
		"Montagem":                types.StatusAssembly,
		"Em corte":                types.StatusReadyForCut,
		"???":                     types.StatusAwaitingFiles,
	}
	for text, want := range cases {
		assert.Equal(t, want, ProductionStatusRules.Resolve(text), text)
	}
}

func TestPaymentTypeFor(t *testing.T) {
	assert.Equal(t, types.PaymentEntry, PaymentTypeFor("Entrada 50%"))
	assert.Equal(t, types.PaymentFinal, PaymentTypeFor("Parcela final"))
	assert.Equal(t, types.PaymentFinal, PaymentTypeFor(""))
}
