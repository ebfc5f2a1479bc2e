package events

// Topic constants for billing events.
const (
	TopicQuoteComputed   = "quote.computed"
	TopicInvoiceRendered = "invoice.rendered"
	TopicInvoiceFailed   = "invoice.failed"
)
