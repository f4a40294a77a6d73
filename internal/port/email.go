package port

import "context"

// DocumentEmail is an outbound message carrying a rendered document.
type DocumentEmail struct {
	To         string
	Subject    string
	HTMLBody   string
	Attachment []byte
	Filename   string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendDocumentEmail(ctx context.Context, msg DocumentEmail) error
}
