package importer

import (
	"strings"

	"github.com/camarpe/camarpe-backend/internal/types"
)

// Rule maps free text to a value when Match accepts the normalized text.
type Rule[T any] struct {
	Match  func(text string) bool
	Result T
}

// RuleSet is evaluated top-down; the first matching rule wins and Default
// applies when none does.
type RuleSet[T any] struct {
	Rules   []Rule[T]
	Default T
}

func (rs RuleSet[T]) Resolve(text string) T {
	key := NameKey(text)
	for _, r := range rs.Rules {
		if r.Match(key) {
			return r.Result
		}
	}
	return rs.Default
}

func has(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

func hasAll(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if !strings.Contains(s, w) {
				return false
			}
		}
		return true
	}
}

// ChannelRules infers the acquisition channel from the client notes.
var ChannelRules = RuleSet[types.LeadChannel]{
	Rules: []Rule[types.LeadChannel]{
		{has("instagram"), types.ChannelInstagram},
		{has("amigo"), types.ChannelFriend},
		{has("familiar"), types.ChannelFamily},
		{has("parceiro"), types.ChannelPartner},
		{has("arquiteto"), types.ChannelArchitect},
		{has("facebook"), types.ChannelFacebook},
		{has("site"), types.ChannelSite},
	},
	Default: types.ChannelReferral,
}

// QuoteStatusRules maps the quote spreadsheet status column to a funnel status.
var QuoteStatusRules = RuleSet[types.LeadStatus]{
	Rules: []Rule[types.LeadStatus]{
		{has("perdido"), types.LeadLost},
		{has("fechado"), types.LeadContractSigned},
		{has("follow-up"), types.LeadQuoteSent},
		{has("orcamento enviado"), types.LeadQuoteSent},
	},
	Default: types.LeadNew,
}

// ProductionStatusRules maps the production spreadsheet status column.
var ProductionStatusRules = RuleSet[types.ProductionStatus]{
	Rules: []Rule[types.ProductionStatus]{
		{has("entregue"), types.StatusDelivered},
		{hasAll("pronto", "entrega"), types.StatusInstallation},
		{has("instala"), types.StatusInstallation},
		{has("pausad"), types.StatusPaused},
		{has("aguardando inicio"), types.StatusAwaitingFiles},
		{has("fitagem", "fita", "borda"), types.StatusEdgeBanding},
		{has("montagem"), types.StatusAssembly},
		{has("corte"), types.StatusReadyForCut},
	},
	Default: types.StatusAwaitingFiles,
}

// PaymentTypeFor classifies a financial row by its description.
func PaymentTypeFor(description string) types.PaymentType {
	if strings.Contains(NameKey(description), "entrada") {
		return types.PaymentEntry
	}
	return types.PaymentFinal
}
