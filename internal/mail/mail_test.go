package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecms/internal/domain/config"
	domainerr "sitecms/internal/domain/errors"
)

var company = config.CompanyConfig{
	Name:    "Lancet India",
	Address: []string{"DM-12, Basanti Nagar", "Rourkela, Odisha, 769012"},
	Phone:   "+91 (080) 4545 1902",
}

type graphFake struct {
	tokenCalls atomic.Int32
	sendCalls  atomic.Int32
	tokenCode  int
	sendCode   int
	lastAuth   atomic.Value
	lastPath   atomic.Value
	lastBody   atomic.Value
}

func (f *graphFake) servers(t *testing.T) (tokenURL, graphURL string) {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "https://graph.microsoft.com/.default", r.PostForm.Get("scope"))
		if f.tokenCode != 0 {
			w.WriteHeader(f.tokenCode)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.sendCalls.Add(1)
		f.lastAuth.Store(r.Header.Get("Authorization"))
		f.lastPath.Store(r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.lastBody.Store(body)
		if f.sendCode != 0 {
			w.WriteHeader(f.sendCode)
			_, _ = w.Write([]byte(`{"error":{"code":"ErrorAccessDenied"}}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(tokenSrv.Close)
	t.Cleanup(graphSrv.Close)
	return tokenSrv.URL, graphSrv.URL
}

func graphConfig(tokenURL, graphURL string) config.MailConfig {
	return config.MailConfig{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		Sender:       "noreply@lancetindia.com",
		TokenURL:     tokenURL,
		GraphURL:     graphURL,
	}
}

func TestGraphSend(t *testing.T) {
	f := &graphFake{}
	tokenURL, graphURL := f.servers(t)
	g, err := NewGraph(graphConfig(tokenURL, graphURL), nil)
	require.NoError(t, err)

	msg := Message{
		To:      []string{"infoindia@lancetindia.com"},
		ReplyTo: "asha@example.com",
		Subject: "New Job Application: Analyst - Asha",
		HTML:    "<p>hi</p>",
		Attachments: []Attachment{{
			Name:        "cv.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.4"),
		}},
	}
	require.NoError(t, g.Send(context.Background(), msg))
	require.NoError(t, g.Send(context.Background(), msg))

	assert.EqualValues(t, 1, f.tokenCalls.Load(), "token is reused until expiry")
	assert.EqualValues(t, 2, f.sendCalls.Load())
	assert.Equal(t, "Bearer tok-1", f.lastAuth.Load())
	assert.Equal(t, "/users/noreply@lancetindia.com/sendMail", f.lastPath.Load())

	body := f.lastBody.Load().(map[string]any)
	m := body["message"].(map[string]any)
	assert.Equal(t, "New Job Application: Analyst - Asha", m["subject"])
	assert.Equal(t, map[string]any{"contentType": "HTML", "content": "<p>hi</p>"}, m["body"])
	assert.Equal(t, []any{map[string]any{"emailAddress": map[string]any{"address": "infoindia@lancetindia.com"}}}, m["toRecipients"])
	assert.Equal(t, []any{map[string]any{"emailAddress": map[string]any{"address": "asha@example.com"}}}, m["replyTo"])

	atts := m["attachments"].([]any)
	require.Len(t, atts, 1)
	att := atts[0].(map[string]any)
	assert.Equal(t, "#microsoft.graph.fileAttachment", att["@odata.type"])
	assert.Equal(t, "cv.pdf", att["name"])
	assert.Equal(t, "application/pdf", att["contentType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")), att["contentBytes"])
}

func TestGraphTokenFailure(t *testing.T) {
	f := &graphFake{tokenCode: http.StatusUnauthorized}
	tokenURL, graphURL := f.servers(t)
	g, err := NewGraph(graphConfig(tokenURL, graphURL), nil)
	require.NoError(t, err)

	err = g.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerr.ErrUpstream)
	var upErr *domainerr.UpstreamServiceError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "identity", upErr.Service)
	assert.EqualValues(t, 0, f.sendCalls.Load())
}

func TestGraphSendRejected(t *testing.T) {
	f := &graphFake{sendCode: http.StatusForbidden}
	tokenURL, graphURL := f.servers(t)
	g, err := NewGraph(graphConfig(tokenURL, graphURL), nil)
	require.NoError(t, err)

	err = g.Send(context.Background(), Message{To: []string{"a@example.com"}})
	var upErr *domainerr.UpstreamServiceError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "graph", upErr.Service)
	assert.Equal(t, http.StatusForbidden, upErr.Status)
	assert.Contains(t, upErr.Error(), "ErrorAccessDenied")
}

func TestResendSend(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/emails", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"em_1"}`))
	}))
	t.Cleanup(srv.Close)

	r, err := NewResend(config.MailConfig{ResendAPIKey: "re_test", ResendURL: srv.URL, From: "noreply@lancetindia.com"}, nil)
	require.NoError(t, err)

	err = r.Send(context.Background(), Message{
		To:          []string{"infoindia@lancetindia.com"},
		ReplyTo:     "asha@example.com",
		Subject:     "New Job Application: Analyst - Asha",
		HTML:        "<p>hi</p>",
		Attachments: []Attachment{{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, "noreply@lancetindia.com", got["from"])
	assert.Equal(t, []any{"infoindia@lancetindia.com"}, got["to"])
	assert.Equal(t, "asha@example.com", got["reply_to"])
	assert.Equal(t, "<p>hi</p>", got["html"])

	atts := got["attachments"].([]any)
	require.Len(t, atts, 1)
	att := atts[0].(map[string]any)
	assert.Equal(t, "cv.pdf", att["filename"])
	assert.Equal(t, []any{"37", "80", "68", "70"}, att["content"])
}

func TestResendSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"domain not verified"}`))
	}))
	t.Cleanup(srv.Close)

	r, err := NewResend(config.MailConfig{ResendAPIKey: "re_test", ResendURL: srv.URL + "/", From: "noreply@lancetindia.com"}, nil)
	require.NoError(t, err)

	err = r.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, domainerr.ErrUpstream)
	var upErr *domainerr.UpstreamServiceError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "resend", upErr.Service)
	assert.Contains(t, upErr.Error(), "domain not verified")
}

func TestFromConfig(t *testing.T) {
	_, err := FromConfig(config.MailConfig{}, nil)
	assert.ErrorIs(t, err, domainerr.ErrNotConfigured)

	m, err := FromConfig(graphConfig("", ""), nil)
	require.NoError(t, err)
	assert.IsType(t, &Graph{}, m)

	m, err = FromConfig(config.MailConfig{ResendAPIKey: "re_test", From: "noreply@lancetindia.com"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Resend{}, m)

	_, err = FromConfig(config.MailConfig{Transport: config.TransportGraph}, nil)
	assert.ErrorIs(t, err, domainerr.ErrNotConfigured)

	_, err = FromConfig(config.MailConfig{Transport: "carrier-pigeon"}, nil)
	assert.ErrorIs(t, err, domainerr.ErrInvalid)
}

func TestContactTemplates(t *testing.T) {
	c := ContactMail{
		Name:    "Asha <b>",
		Email:   "asha@example.com",
		Company: "Acme",
		Message: "Line one\n<script>alert(1)</script>",
	}

	notify, err := ContactNotification(c, company, "infoindia@lancetindia.com")
	require.NoError(t, err)
	assert.Equal(t, "New Contact Form Submission from Asha <b>", notify.Subject)
	assert.Equal(t, []string{"infoindia@lancetindia.com"}, notify.To)
	assert.Equal(t, "asha@example.com", notify.ReplyTo)
	assert.Contains(t, notify.HTML, "Asha &lt;b&gt;")
	assert.Contains(t, notify.HTML, "Line one<br>&lt;script&gt;")
	assert.NotContains(t, notify.HTML, "<script>")
	assert.Contains(t, notify.HTML, "Acme")
	assert.Contains(t, notify.HTML, "DM-12, Basanti Nagar")
	assert.Contains(t, html.UnescapeString(notify.HTML), "Phone: +91 (080) 4545 1902")

	reply, err := ContactReply(c, company)
	require.NoError(t, err)
	assert.Equal(t, "Thank you for contacting Lancet India", reply.Subject)
	assert.Equal(t, []string{"asha@example.com"}, reply.To)
	assert.Contains(t, reply.HTML, "within 24 hours")
}

func TestApplicationTemplates(t *testing.T) {
	a := ApplicationMail{Name: "Ravi", Email: "ravi@example.com", Position: "Data Engineer", ResumeName: "cv.pdf"}
	resume := &Attachment{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}

	notify, err := ApplicationNotification(a, company, resume, "careers@lancetindia.com")
	require.NoError(t, err)
	assert.Equal(t, "New Job Application: Data Engineer - Ravi", notify.Subject)
	assert.Equal(t, "ravi@example.com", notify.ReplyTo)
	require.Len(t, notify.Attachments, 1)
	assert.Equal(t, "cv.pdf", notify.Attachments[0].Name)
	assert.Contains(t, notify.HTML, "cv.pdf (attached)")
	assert.NotContains(t, notify.HTML, "Cover Letter")

	reply, err := ApplicationReply(a, company)
	require.NoError(t, err)
	assert.Equal(t, "Application Received - Lancet India", reply.Subject)
	assert.Contains(t, reply.HTML, "5-7 business days")
	assert.Empty(t, reply.Attachments)
}
