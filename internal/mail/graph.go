package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"io"
	"net/http"
	"net/url"
	"sitecms/internal/domain/config"
	domainerr "sitecms/internal/domain/errors"
	"sitecms/internal/platform/logger"
	"strings"
	"time"
)

const (
	defaultGraphURL = "https://graph.microsoft.com/v1.0"
	graphScope      = "https://graph.microsoft.com/.default"
)

// Graph sends as a fixed mailbox through the Graph sendMail endpoint. Tokens
// come from the client credentials grant and are reused until they expire.
type Graph struct {
	sender   string
	graphURL string
	tokens   oauth2.TokenSource
	http     *http.Client
	log      *logger.Logger
}

func NewGraph(cfg config.MailConfig, log *logger.Logger) (*Graph, error) {
	if !cfg.GraphReady() {
		return nil, fmt.Errorf("graph mail: %w", domainerr.ErrNotConfigured)
	}
	if log == nil {
		log = logger.NewNop()
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", url.PathEscape(cfg.TenantID))
	}
	graphURL := strings.TrimRight(cfg.GraphURL, "/")
	if graphURL == "" {
		graphURL = defaultGraphURL
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// the token source outlives any one request, so it gets its own context
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Graph{
		sender:   cfg.Sender,
		graphURL: graphURL,
		tokens:   cc.TokenSource(tokenCtx),
		http:     httpClient,
		log:      log,
	}, nil
}

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

func addresses(addrs ...string) []graphAddress {
	out := make([]graphAddress, 0, len(addrs))
	for _, a := range addrs {
		if a == "" {
			continue
		}
		var ga graphAddress
		ga.EmailAddress.Address = a
		out = append(out, ga)
	}
	return out
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType,omitempty"`
	ContentBytes []byte `json:"contentBytes"`
}

type graphMessage struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	ToRecipients []graphAddress    `json:"toRecipients"`
	ReplyTo      []graphAddress    `json:"replyTo,omitempty"`
	Attachments  []graphAttachment `json:"attachments,omitempty"`
}

type sendMailRequest struct {
	Message         graphMessage `json:"message"`
	SaveToSentItems bool         `json:"saveToSentItems"`
}

func (g *Graph) Send(ctx context.Context, msg Message) error {
	tok, err := g.tokens.Token()
	if err != nil {
		return &domainerr.UpstreamServiceError{Service: "identity", Err: err}
	}

	var m graphMessage
	m.Subject = msg.Subject
	m.Body.ContentType = "HTML"
	m.Body.Content = msg.HTML
	m.ToRecipients = addresses(msg.To...)
	m.ReplyTo = addresses(msg.ReplyTo)
	for _, a := range msg.Attachments {
		m.Attachments = append(m.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Name,
			ContentType:  a.ContentType,
			ContentBytes: a.Data,
		})
	}

	payload, err := json.Marshal(sendMailRequest{Message: m, SaveToSentItems: true})
	if err != nil {
		return err
	}
	endpoint := g.graphURL + "/users/" + url.PathEscape(g.sender) + "/sendMail"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	tok.SetAuthHeader(req)

	resp, err := g.http.Do(req)
	if err != nil {
		return &domainerr.UpstreamServiceError{Service: "graph", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domainerr.UpstreamServiceError{
			Service: "graph",
			Status:  resp.StatusCode,
			Err:     errors.New(strings.TrimSpace(string(detail))),
		}
	}
	g.log.Debug("mail sent", "transport", "graph", "subject", msg.Subject, "to", msg.To)
	return nil
}
