package decision

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/taskgraph"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the HMAC-SHA256 of the request body when a secret
// is configured.
const SignatureHeader = "X-Decision-Signature"

// HTTPClient calls an external decision service. Each Decider method is a
// POST of the JSON request to <baseURL>/<method>.
type HTTPClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewHTTPClient(baseURL, secret string, timeout time.Duration, logger *logrus.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *HTTPClient) Plan(ctx context.Context, req PlanRequest) ([]taskgraph.Subtask, error) {
	raw, err := c.post(ctx, "plan", req)
	if err != nil {
		return nil, err
	}
	return ParseSubtasks(raw)
}

func (c *HTTPClient) Act(ctx context.Context, req ActRequest) (ActResponse, error) {
	raw, err := c.post(ctx, "act", req)
	if err != nil {
		return ActResponse{}, err
	}
	var resp ActResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ActResponse{}, fmt.Errorf("decision: decode act: %w", err)
	}
	if err := validate.Struct(resp); err != nil {
		return ActResponse{}, fmt.Errorf("decision: validate act: %w", err)
	}
	return resp, nil
}

func (c *HTTPClient) Reflect(ctx context.Context, req ReflectRequest) (Reflection, error) {
	raw, err := c.post(ctx, "reflect", req)
	if err != nil {
		return Reflection{}, err
	}
	var ref Reflection
	if err := json.Unmarshal(raw, &ref); err != nil {
		return Reflection{}, fmt.Errorf("decision: decode reflect: %w", err)
	}
	if err := validate.Struct(ref); err != nil {
		return Reflection{}, fmt.Errorf("decision: validate reflect: %w", err)
	}
	return ref, nil
}

func (c *HTTPClient) Strategy(ctx context.Context, req StrategyRequest) (taskgraph.Edit, error) {
	raw, err := c.post(ctx, "strategy", req)
	if err != nil {
		return nil, err
	}
	return ParseEdit(raw)
}

func (c *HTTPClient) post(ctx context.Context, method string, body any) ([]byte, error) {
	log := c.logger.WithFields(logrus.Fields{
		"service": "DecisionClient",
		"method":  method,
	})

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("decision: encode %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decision: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set(SignatureHeader, Sign(payload, c.secret))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Decision call failed")
		return nil, fmt.Errorf("decision: %s: %v: %w", method, err, models.ErrDispatchFailure)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decision: read %s response: %w", method, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Warn("Decision service returned an error status")
		return nil, fmt.Errorf("decision: %s returned status %d: %w", method, resp.StatusCode, models.ErrDispatchFailure)
	}
	log.Debug("Decision call succeeded")
	return raw, nil
}

// Sign returns the hex HMAC-SHA256 of data.
func Sign(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
