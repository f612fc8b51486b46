package email

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSendBuildsMessage(t *testing.T) {
	p := NewSMTP(Config{Host: "mail.local", Port: 2525, From: "billing@netbill.local"})

	var gotAddr string
	var gotMsg string
	p.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = string(msg)
		assert.Nil(t, a)
		assert.Equal(t, []string{"ivan@example.com"}, to)
		return nil
	}

	require.NoError(t, p.Send(context.Background(), []string{"ivan@example.com"}, "Invoice", "<p>hi</p>"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.True(t, strings.HasPrefix(gotMsg, "From: billing@netbill.local\r\n"))
	assert.Contains(t, gotMsg, "Subject: Invoice\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "<p>hi</p>"))
}

func TestSMTPSendRejectsEmptyRecipients(t *testing.T) {
	p := NewSMTP(Config{Host: "mail.local", Port: 25})
	assert.ErrorIs(t, p.Send(context.Background(), nil, "s", "b"), ErrNoRecipients)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Send(ctx, []string{"a@b.c"}, "s", "b"), context.Canceled)
}
