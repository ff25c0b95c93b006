package emailsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
	logsvc "github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/services/logger"
)

func newTestDeps(t *testing.T) (*core.Config, core.Logger) {
	t.Helper()
	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	logger.Enable(false)
	core.ParseEmailTemplates(conf, logger)
	return conf, logger
}

func enrollmentMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Ann", Address: "ann@example.com"}},
		Subject:      "Welcome to Go 101",
		TemplateName: "cohort_enrollment",
		TemplateData: map[string]string{
			"Name":        "Ann",
			"CohortName":  "Go 101",
			"CourseTitle": "Go",
			"CourseID":    "course-1",
		},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	conf, logger := newTestDeps(t)
	svc := NewConsoleServiceMock(conf, logger)

	svc.SendMessages(
		enrollmentMessage(),
		&core.EmailMessage{Subject: "nobody", BodyStr: "hello"}, // no recipients
		&core.EmailMessage{To: []mail.Address{{Address: "bob@example.com"}}, Subject: "empty"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "Welcome to Go 101", msg.Subject)
	assert.Contains(t, msg.TextContent, "Hello Ann,")
	assert.Contains(t, msg.TextContent, `"Go 101"`)
	assert.Contains(t, msg.TextContent, conf.FrontendBaseURL+"/courses/course-1")
	assert.NotEmpty(t, msg.HTMLContent)

	svc.Reset()
	assert.Empty(t, svc.SentMessages())
}

func TestSendgridService_prepare(t *testing.T) {
	conf, logger := newTestDeps(t)
	svc := NewSendgridService(conf, logger).(*sendgridService)

	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Ann", Address: "ann@example.com"}},
		Bcc:         []mail.Address{{Address: "audit@example.com"}},
		Subject:     "Hi",
		TextContent: "plain",
	}
	m := svc.prepare(msg)

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "["+conf.AppName+"] Hi", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "ann@example.com", p.To[0].Address)
	require.Len(t, p.BCC, 1)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
}

func TestSendgridService_send(t *testing.T) {
	conf, logger := newTestDeps(t)
	conf.SendgridAPIKey = "sg-key"

	var body map[string]interface{}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	svc := NewSendgridService(conf, logger).(*sendgridService)
	svc.host = srv.URL

	msg := enrollmentMessage()
	require.NoError(t, msg.Render())
	svc.send(*msg)

	assert.Equal(t, "Bearer sg-key", auth)
	content, _ := body["content"].([]interface{})
	require.Len(t, content, 2)
	first, _ := content[0].(map[string]interface{})
	assert.True(t, strings.Contains(first["value"].(string), "Hello Ann,"))
}
