package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridMailerPostsToMailSend(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := &SendGridMailer{APIKey: "SG.test", FromName: "SchoolHub", From: "noreply@test", Host: srv.URL}
	err := m.Send(context.Background(), WelcomeAdmin("SchoolHub", "Lycée A", "Awa Diallo", "awa@test", "x"))
	require.NoError(t, err)
	assert.Equal(t, "/v3/mail/send", gotPath)
	assert.Equal(t, "Bearer SG.test", gotAuth)
}

func TestSendGridMailerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := &SendGridMailer{APIKey: "bad", Host: srv.URL}
	err := m.Send(context.Background(), Message{ToEmail: "a@b.c", Subject: "x", PlainText: "y"})
	assert.Error(t, err)
}

func TestSendGridMailerRequiresRecipient(t *testing.T) {
	m := &SendGridMailer{APIKey: "k", Host: "http://127.0.0.1:1"}
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))
}

func TestReportCardReadyIncludesSummary(t *testing.T) {
	avg, rank := 14.5, 3
	msg := ReportCardReady("SchoolHub", "M. Koné", "kone@test", "Ali Koné", "Trimestre 1", &avg, &rank)
	assert.Contains(t, msg.PlainText, "14.50/20")
	assert.Contains(t, msg.PlainText, "Rang : 3")
	assert.Equal(t, "kone@test", msg.ToEmail)
}
