package types

// Role is the access profile of a user.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleGestao    Role = "GESTAO"
	RoleComercial Role = "COMERCIAL"
	RoleProducao  Role = "PRODUCAO"
)

var ValidRoles = []Role{RoleAdmin, RoleGestao, RoleComercial, RoleProducao}

func (r Role) IsValid() bool { return contains(ValidRoles, r) }

// Role groups used by the route gates
var (
	AllRoles        = []Role{RoleComercial, RoleProducao, RoleGestao, RoleAdmin}
	SalesRoles      = []Role{RoleComercial, RoleGestao, RoleAdmin}
	ManagementRoles = []Role{RoleGestao, RoleAdmin}
	AdminOnly       = []Role{RoleAdmin}
)

// HasRole reports whether role is one of allowed.
func HasRole(role Role, allowed ...Role) bool {
	return contains(allowed, role)
}

// Lead funnel status
type LeadStatus string

const (
	LeadNew            LeadStatus = "LEAD"
	LeadQuoteSent      LeadStatus = "ORCAMENTO_ENVIADO"
	LeadContractSigned LeadStatus = "CONTRATO_ASSINADO"
	LeadLost           LeadStatus = "PERDIDO"
)

var ValidLeadStatuses = []LeadStatus{LeadNew, LeadQuoteSent, LeadContractSigned, LeadLost}

func (s LeadStatus) IsValid() bool { return contains(ValidLeadStatuses, s) }

var leadStatusLabels = map[LeadStatus]string{
	LeadNew:            "Lead",
	LeadQuoteSent:      "Orçamento enviado",
	LeadContractSigned: "Contrato assinado",
	LeadLost:           "Perdido",
}

// Label is the human readable name used in exports.
func (s LeadStatus) Label() string {
	if l, ok := leadStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Lead acquisition channel
type LeadChannel string

const (
	ChannelReferral  LeadChannel = "INDICACAO"
	ChannelInstagram LeadChannel = "INSTAGRAM"
	ChannelArchitect LeadChannel = "ARQUITETO"
	ChannelFacebook  LeadChannel = "FACEBOOK"
	ChannelSite      LeadChannel = "SITE"
	ChannelFriend    LeadChannel = "AMIGO"
	ChannelFamily    LeadChannel = "FAMILIAR"
	ChannelPartner   LeadChannel = "PARCEIRO"
)

var ValidLeadChannels = []LeadChannel{
	ChannelReferral, ChannelInstagram, ChannelArchitect, ChannelFacebook,
	ChannelSite, ChannelFriend, ChannelFamily, ChannelPartner,
}

func (c LeadChannel) IsValid() bool { return contains(ValidLeadChannels, c) }

var leadChannelLabels = map[LeadChannel]string{
	ChannelReferral:  "Indicação",
	ChannelInstagram: "Instagram",
	ChannelArchitect: "Arquiteto",
	ChannelFacebook:  "Facebook",
	ChannelSite:      "Site",
	ChannelFriend:    "Amigo",
	ChannelFamily:    "Familiar",
	ChannelPartner:   "Parceiro",
}

func (c LeadChannel) Label() string {
	if l, ok := leadChannelLabels[c]; ok {
		return l
	}
	return string(c)
}

// Lead timeline entry type
type ActivityType string

const (
	ActivityCall      ActivityType = "LIGACAO"
	ActivityEmail     ActivityType = "EMAIL_ENVIADO"
	ActivityQuoteSent ActivityType = "ORCAMENTO_ENVIADO"
	ActivityWhatsApp  ActivityType = "CONTATO_WHATSAPP"
	ActivityNote      ActivityType = "OBSERVACAO"
)

var ValidActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityQuoteSent, ActivityWhatsApp, ActivityNote}

func (a ActivityType) IsValid() bool { return contains(ValidActivityTypes, a) }

// ProductionStatus is the manufacturing stage of a project.
type ProductionStatus string

const (
	StatusAwaitingFiles ProductionStatus = "AGUARDANDO_ARQUIVOS"
	StatusReadyForCut   ProductionStatus = "PARA_CORTE"
	StatusAssembly      ProductionStatus = "MONTAGEM"
	StatusEdgeBanding   ProductionStatus = "FITAGEM"
	StatusPaused        ProductionStatus = "PAUSADO"
	StatusInstallation  ProductionStatus = "INSTALACAO"
	StatusDelivered     ProductionStatus = "ENTREGUE"
)

// ProductionOrder is the board column order. PAUSADO sits between FITAGEM
// and INSTALACAO only for display.
var ProductionOrder = []ProductionStatus{
	StatusAwaitingFiles, StatusReadyForCut, StatusAssembly, StatusEdgeBanding,
	StatusPaused, StatusInstallation, StatusDelivered,
}

func (s ProductionStatus) IsValid() bool { return contains(ProductionOrder, s) }

var productionStatusLabels = map[ProductionStatus]string{
	StatusAwaitingFiles: "Aguardando arquivos",
	StatusReadyForCut:   "Para corte",
	StatusAssembly:      "Montagem",
	StatusEdgeBanding:   "Fitagem",
	StatusPaused:        "Pausado",
	StatusInstallation:  "Instalação",
	StatusDelivered:     "Entregue",
}

func (s ProductionStatus) Label() string {
	if l, ok := productionStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Project payment type
type PaymentType string

const (
	PaymentEntry PaymentType = "ENTRADA"
	PaymentFinal PaymentType = "FINAL"
)

func (p PaymentType) IsValid() bool { return p == PaymentEntry || p == PaymentFinal }

// Cash ledger
type LedgerType string

const (
	LedgerInflow  LedgerType = "ENTRADA"
	LedgerOutflow LedgerType = "SAIDA"
)

func (t LedgerType) IsValid() bool { return t == LedgerInflow || t == LedgerOutflow }

type LedgerStatus string

const (
	LedgerPlanned LedgerStatus = "PREVISTO"
	LedgerPaid    LedgerStatus = "PAGO"
)

func (s LedgerStatus) IsValid() bool { return s == LedgerPlanned || s == LedgerPaid }

type ExpenseCategory string

const (
	CategorySalary              ExpenseCategory = "SALARIO"
	CategoryFixedBills          ExpenseCategory = "CONTAS_FIXAS"
	CategorySuppliers           ExpenseCategory = "FORNECEDORES"
	CategoryEquipmentInvestment ExpenseCategory = "INVESTIMENTO_EQUIPAMENTO"
	CategoryFinancialInvestment ExpenseCategory = "INVESTIMENTO_APLICACAO"
	CategoryTaxes               ExpenseCategory = "IMPOSTOS"
	CategoryOther               ExpenseCategory = "OUTROS"
)

var ValidExpenseCategories = []ExpenseCategory{
	CategorySalary, CategoryFixedBills, CategorySuppliers, CategoryEquipmentInvestment,
	CategoryFinancialInvestment, CategoryTaxes, CategoryOther,
}

func (c ExpenseCategory) IsValid() bool { return contains(ValidExpenseCategories, c) }

// Suggestion card status
type SuggestionStatus string

const (
	SuggestionNew         SuggestionStatus = "NOVA"
	SuggestionDiscussing  SuggestionStatus = "EM_DISCUSSAO"
	SuggestionApproved    SuggestionStatus = "APROVADA"
	SuggestionImplemented SuggestionStatus = "IMPLEMENTADA"
	SuggestionArchived    SuggestionStatus = "ARQUIVADA"
)

var ValidSuggestionStatuses = []SuggestionStatus{
	SuggestionNew, SuggestionDiscussing, SuggestionApproved, SuggestionImplemented, SuggestionArchived,
}

func (s SuggestionStatus) IsValid() bool { return contains(ValidSuggestionStatuses, s) }

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
