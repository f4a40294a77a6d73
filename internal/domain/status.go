package domain

import (
	"slices"

	"facturo/internal/money"
)

// Action is an operation that moves a document through its lifecycle.
type Action string

const (
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionEmit    Action = "emit"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionExpire  Action = "expire"
	ActionConvert Action = "convert"
	ActionPay     Action = "pay"
	ActionBook    Action = "book"
	ActionSend    Action = "send"
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionRun     Action = "run"
)

// transitions maps each action to the statuses it may start from.
type transitions[S ~string] map[Action][]S

func (t transitions[S]) check(entity string, from S, action Action) error {
	if slices.Contains(t[action], from) {
		return nil
	}
	return &TransitionError{Entity: entity, From: string(from), Action: action}
}

var quoteTransitions = transitions[QuoteStatus]{
	ActionEdit:    {QuoteStatusDraft},
	ActionDelete:  {QuoteStatusDraft},
	ActionEmit:    {QuoteStatusDraft},
	ActionAccept:  {QuoteStatusSent},
	ActionReject:  {QuoteStatusSent},
	ActionExpire:  {QuoteStatusSent, QuoteStatusAccepted},
	ActionConvert: {QuoteStatusAccepted},
	ActionSend:    {QuoteStatusSent, QuoteStatusAccepted},
}

// VOID has no inbound edge.
var invoiceTransitions = transitions[InvoiceStatus]{
	ActionEdit:   {InvoiceStatusDraft},
	ActionDelete: {InvoiceStatusDraft},
	ActionEmit:   {InvoiceStatusDraft},
	ActionPay:    {InvoiceStatusIssued, InvoiceStatusPartiallyPaid},
	ActionSend:   {InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid},
}

var purchaseTransitions = transitions[PurchaseInvoiceStatus]{
	ActionEdit:   {PurchaseStatusDraft},
	ActionDelete: {PurchaseStatusDraft},
	ActionBook:   {PurchaseStatusDraft},
	ActionPay:    {PurchaseStatusBooked},
}

var templateTransitions = transitions[TemplateStatus]{
	ActionPause:  {TemplateStatusActive},
	ActionResume: {TemplateStatusPaused},
	ActionRun:    {TemplateStatusActive},
}

// CheckQuoteTransition returns a *TransitionError unless action is allowed from status.
func CheckQuoteTransition(from QuoteStatus, action Action) error {
	return quoteTransitions.check(EntityQuote, from, action)
}

// CheckInvoiceTransition returns a *TransitionError unless action is allowed from status.
func CheckInvoiceTransition(from InvoiceStatus, action Action) error {
	return invoiceTransitions.check(EntityInvoice, from, action)
}

// CheckPurchaseTransition returns a *TransitionError unless action is allowed from status.
func CheckPurchaseTransition(from PurchaseInvoiceStatus, action Action) error {
	return purchaseTransitions.check(EntityPurchaseInvoice, from, action)
}

// CheckTemplateTransition returns a *TransitionError unless action is allowed from status.
func CheckTemplateTransition(from TemplateStatus, action Action) error {
	return templateTransitions.check(EntityRecurringTemplate, from, action)
}

// StatusAfterPayment derives the invoice status once paid reaches the given amount.
func StatusAfterPayment(paid, total money.Cents) InvoiceStatus {
	if paid >= total {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPartiallyPaid
}
