package ses

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/port"
)

func TestBuildRawMessage_WithAttachment(t *testing.T) {
	pdf := bytes.Repeat([]byte("%PDF-1.4 "), 40)
	raw, err := buildRawMessage("Acme <billing@acme.test>", port.DocumentEmail{
		To:         "client@example.com",
		Subject:    "Invoice F26/1 from Acme",
		HTMLBody:   "<p>Hello</p>",
		Attachment: pdf,
		Filename:   "F26-1.pdf",
	})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "client@example.com", msg.Header.Get("To"))

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Invoice F26/1 from Acme", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	body, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, body.Header.Get("Content-Type"), "text/html")

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "F26-1.pdf", att.FileName())
	// multipart.Reader does not decode base64; the raw part must still be line-wrapped.
	encoded, err := io.ReadAll(att)
	require.NoError(t, err)
	for _, line := range bytes.Split(bytes.TrimSpace(encoded), []byte("\r\n")) {
		assert.LessOrEqual(t, len(line), 76)
	}

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuildRawMessage_WithoutAttachment(t *testing.T) {
	raw, err := buildRawMessage("Acme <billing@acme.test>", port.DocumentEmail{
		To:       "client@example.com",
		Subject:  "Quote",
		HTMLBody: "<p>Hello</p>",
	})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	_, err = mr.NextPart()
	require.NoError(t, err)
	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}
