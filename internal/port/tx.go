package port

import "context"

// Repos is the set of repositories bound to a single transaction.
type Repos struct {
	Sequences      SequenceRepository
	Counterparties CounterpartyDirectory
	Clients        ClientRepository
	TaxRates       TaxRateRepository
	Quotes         QuoteRepository
	Invoices       InvoiceRepository
	Purchases      PurchaseInvoiceRepository
	Templates      RecurringTemplateRepository
	Runs           RecurringRunRepository
}

// TxRunner runs fn inside one store transaction. The transaction commits only
// when fn returns nil; any error rolls back every write made through r.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
