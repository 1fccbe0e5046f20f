package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPMailerDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewSMTPMailer("smtp.resend.com", 465, "resend", "", "garden@nctr.live"))
	m := NewSMTPMailer("smtp.resend.com", 465, "resend", "re_key", "garden@nctr.live")
	require.NotNil(t, m)
	assert.True(t, m.dialer.SSL)
}

func TestTemplatesEscape(t *testing.T) {
	subject, body := TierUpgradeEmail("<b>Ann</b>", "gold", "1.5")
	assert.Contains(t, subject, "gold")
	assert.Contains(t, body, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.False(t, strings.Contains(body, "<b>Ann"))

	_, body = FreeTrialWelcomeEmail("", "250")
	assert.Contains(t, body, "Hi there")
	assert.Contains(t, body, "250 NCTR")
}

func TestOutbox(t *testing.T) {
	var o Outbox
	var m Mailer = &o
	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "<p>x</p>"))
	assert.Equal(t, 1, o.Len())
	assert.Equal(t, "a@example.com", o.Sent[0].To)
}
