package flush

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/Hanyshennawy/moe-scorm-lms/core/cmi"
)

// StatusError is returned for non 2xx answers.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

// HTTPTransport talks JSON to the API with a bearer token.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a transport for the API at baseURL (e.g. https://lms.example/v1).
// A nil client means http.DefaultClient; timeouts come from the call contexts.
func NewHTTPTransport(baseURL, token string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type (
	initializeRequest struct {
		CourseID string `json:"courseId"`
	}

	valueRequest struct {
		CourseID string `json:"courseId"`
		Element  string `json:"element"`
		Value    string `json:"value"`
	}

	valueResponse struct {
		Value string `json:"value"`
	}

	commitRequest struct {
		CourseID  string    `json:"courseId"`
		SessionID string    `json:"sessionId,omitempty"`
		Data      cmi.Delta `json:"data"`
	}

	interactionRequest struct {
		CourseID    string          `json:"courseId"`
		Interaction cmi.Interaction `json:"interaction"`
	}
)

func (t *HTTPTransport) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &msg) != nil || msg.Error == "" {
			msg.Error = strings.TrimSpace(string(raw))
		}
		return &StatusError{Code: resp.StatusCode, Message: msg.Error}
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decoding response")
}

func (t *HTTPTransport) Initialize(ctx context.Context, courseID string) (cmi.Launch, error) {
	var launch cmi.Launch
	err := t.do(ctx, http.MethodPost, "/scorm/initialize", initializeRequest{CourseID: courseID}, &launch)
	return launch, err
}

func (t *HTTPTransport) GetValue(ctx context.Context, courseID, element string) (string, error) {
	q := make(url.Values)
	q.Set("courseId", courseID)
	q.Set("element", element)
	var resp valueResponse
	err := t.do(ctx, http.MethodGet, "/scorm/value?"+q.Encode(), nil, &resp)
	return resp.Value, err
}

func (t *HTTPTransport) SetValue(ctx context.Context, courseID, element, value string) error {
	return t.do(ctx, http.MethodPost, "/scorm/value", valueRequest{CourseID: courseID, Element: element, Value: value}, nil)
}

func (t *HTTPTransport) Commit(ctx context.Context, courseID string, delta cmi.Delta) error {
	return t.do(ctx, http.MethodPost, "/scorm/commit", commitRequest{CourseID: courseID, Data: delta}, nil)
}

func (t *HTTPTransport) Finish(ctx context.Context, courseID, sessionID string, delta cmi.Delta) error {
	return t.do(ctx, http.MethodPost, "/scorm/finish", commitRequest{CourseID: courseID, SessionID: sessionID, Data: delta}, nil)
}

func (t *HTTPTransport) RecordInteraction(ctx context.Context, courseID string, in cmi.Interaction) error {
	return t.do(ctx, http.MethodPost, "/scorm/interactions", interactionRequest{CourseID: courseID, Interaction: in}, nil)
}
