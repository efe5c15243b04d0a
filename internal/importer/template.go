package importer

import "errors"

// Kind names one of the four spreadsheets, matching the upload field names.
type Kind string

const (
	KindClients    Kind = "clientes"
	KindQuotes     Kind = "orcamentos"
	KindProduction Kind = "producao"
	KindFinancial  Kind = "financeiro"
)

// Kinds is the processing order.
var Kinds = []Kind{KindClients, KindQuotes, KindProduction, KindFinancial}

var ErrUnknownKind = errors.New("Tipo inválido. Use: clientes, orcamentos, producao, financeiro")

var headers = map[Kind]string{
	KindClients:    "Nome do Cliente,Telefone / WhatsApp,E-mail,Endereço (p/ Entrega e Medição),Observações",
	KindQuotes:     "Nome do Cliente,Descrição do Projeto,Status do Orçamento,Valor Proposto,Link - Orçamento,Link - Projeto 3D,Observações,Data do ultimo contato",
	KindProduction: "ID,Cliente,Descrição do Projeto,Status Atual,Início (Produção),Prazo (Entrega),Valor do Projeto",
	KindFinancial:  "ID PRODUÇÃO,Cliente,Descrição do Pgto,Data Vencimento,Valor,Status Pagto,Data Recebimento,Link - Comp/NF",
}

// Template returns the CSV header line expected for kind.
func Template(kind Kind) (string, error) {
	h, ok := headers[kind]
	if !ok {
		return "", ErrUnknownKind
	}
	return h + "\n", nil
}
