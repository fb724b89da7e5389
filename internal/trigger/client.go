// internal/trigger/client.go
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	appErrors "github.com/leadforge/leadforge-backend/internal/errors"
	"github.com/leadforge/leadforge-backend/internal/model"
)

// Mode selects the trigger payload shape.
type Mode string

const (
	ModeCampaignTrigger Mode = "campaign_trigger"
	ModeChatMessage     Mode = "chat_message"
)

// Kind classifies a trigger outcome. None of these are thrown as errors;
// callers branch on the kind.
type Kind string

const (
	KindOK               Kind = "ok"
	KindProviderRejected Kind = "provider_rejected"
	KindNetworkError     Kind = "network_error"
	KindTimeout          Kind = "timeout"
	KindNotConfigured    Kind = "not_configured"
)

// ContextTurn is one prior conversation turn sent along with a chat message.
type ContextTurn struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// Request is the normalized payload handed to the external workflow endpoint.
type Request struct {
	CampaignID int                  `json:"campaign_id"`
	Mode       Mode                 `json:"mode"`
	Campaign   *model.CampaignDraft `json:"campaign,omitempty"`

	// Chat mode only.
	SessionID string        `json:"session_id,omitempty"`
	Message   string        `json:"message,omitempty"`
	Context   []ContextTurn `json:"context,omitempty"`
	Timezone  string        `json:"timezone,omitempty"`
}

// Outcome is the typed result of one trigger attempt.
type Outcome struct {
	Kind        Kind
	RawResponse string
	Extracted   string // assistant reply for chat mode, empty otherwise
	HTTPStatus  int
	Body        string
	Message     string // human-readable detail for network/timeout/config kinds
}

func (o Outcome) OK() bool { return o.Kind == KindOK }

// replyFields are checked in order; the first present string wins.
var replyFields = []string{"aiResponse", "response", "reply", "message", "output", "text"}

// EventSink receives an audit entry for every outcome, success or not.
type EventSink interface {
	LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error
}

// Client performs the single outbound call to the workflow endpoint. One
// attempt, hard timeout, no automatic retry; the caller decides what to do
// with a failed outcome. The rate limiter and circuit breaker are explicit
// injected instances, not package globals.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*httpResult]
	events   EventSink
}

type httpResult struct {
	status int
	body   []byte
}

// NewClient builds a trigger client. endpoint may be empty; calls then return
// a KindNotConfigured outcome without touching the network. events may be nil
// in tests.
func NewClient(endpoint string, timeout time.Duration, limiter *rate.Limiter, maxFailures uint32, events EventSink) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxFailures == 0 {
		maxFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:        "workflow-trigger",
		MaxRequests: 1, // one probe in half-open
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ circuit breaker %s: %s -> %s\n", name, from.String(), to.String())
		},
	})
	return &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
		limiter:  limiter,
		breaker:  cb,
		events:   events,
	}
}

// Trigger performs one call and classifies the result. The only hard error is
// a malformed request (missing campaign id); every other failure comes back
// as a classified Outcome and is recorded in the workflow event log.
func (c *Client) Trigger(ctx context.Context, req Request) (Outcome, error) {
	if req.CampaignID == 0 {
		return Outcome{}, appErrors.NewMissingCampaignID(string(req.Mode))
	}
	if req.Mode == "" {
		req.Mode = ModeCampaignTrigger
	}

	out := c.call(ctx, req)
	c.record(req, out)
	return out, nil
}

func (c *Client) call(ctx context.Context, req Request) Outcome {
	if c.endpoint == "" {
		return Outcome{Kind: KindNotConfigured, Message: "workflow trigger URL is not configured"}
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return Outcome{Kind: KindNetworkError, Message: "trigger rate limit exceeded"}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return Outcome{Kind: KindNetworkError, Message: "marshal payload: " + err.Error()}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.breaker.Execute(func() (*httpResult, error) {
		httpReq, reqErr := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, doErr := c.http.Do(httpReq)
		if doErr != nil {
			return nil, doErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		return &httpResult{status: resp.StatusCode, body: body}, nil
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Outcome{Kind: KindTimeout, Message: fmt.Sprintf("trigger call exceeded %s", c.timeout)}
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Outcome{Kind: KindNetworkError, Message: "circuit breaker open: " + err.Error()}
		}
		return Outcome{Kind: KindNetworkError, Message: err.Error()}
	}

	if res.status < 200 || res.status >= 300 {
		return Outcome{Kind: KindProviderRejected, HTTPStatus: res.status, Body: string(res.body)}
	}

	out := Outcome{Kind: KindOK, HTTPStatus: res.status, RawResponse: string(res.body)}
	out.Extracted = extractReply(res.body, req.Mode)
	return out
}

// extractReply pulls the assistant reply from a response body. Structured
// parse first; in chat mode a non-JSON body is the reply verbatim.
func extractReply(body []byte, mode Mode) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		if mode == ModeChatMessage {
			return string(body)
		}
		return ""
	}
	for _, field := range replyFields {
		if v, ok := parsed[field]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (c *Client) record(req Request, out Outcome) {
	if c.events == nil {
		return
	}

	eventType := model.EventTriggerOK
	msg := ""
	switch out.Kind {
	case KindProviderRejected:
		eventType = model.EventTriggerRejected
		msg = fmt.Sprintf("provider returned HTTP %d", out.HTTPStatus)
	case KindNetworkError, KindNotConfigured:
		eventType = model.EventTriggerNetwork
		msg = out.Message
	case KindTimeout:
		eventType = model.EventTriggerTimeout
		msg = out.Message
	}

	data, _ := json.Marshal(map[string]interface{}{
		"mode":        string(req.Mode),
		"http_status": out.HTTPStatus,
	})

	if err := c.events.LogWorkflowEvent(req.CampaignID, eventType, 0, msg, string(data)); err != nil {
		log.Println("⚠️ failed to log workflow event:", err)
	}
}
