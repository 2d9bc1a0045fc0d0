package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/set-night/vpnshop/internal/config"
	"github.com/set-night/vpnshop/internal/domain"
)

const maxProvisionResponseSize = 1 << 20

// RemnawaveClient creates subscriptions on a Remnawave panel.
type RemnawaveClient struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewRemnawaveClient(endpoint, apiKey string, timeout time.Duration) *RemnawaveClient {
	return &RemnawaveClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Panel versions disagree on the request schema, so both known shapes are tried in order.
type externalIDPayload struct {
	ExternalID   string `json:"external_id"`
	DurationDays int    `json:"duration_days"`
	Note         string `json:"note"`
}

type userExternalIDPayload struct {
	UserExternalID string `json:"userExternalId"`
	Days           int    `json:"days"`
	Comment        string `json:"comment"`
}

type provisionVariant struct {
	name  string
	build func(userID int64, days int) any
}

var provisionVariants = []provisionVariant{
	{
		name: "external_id",
		build: func(userID int64, days int) any {
			return externalIDPayload{
				ExternalID:   strconv.FormatInt(userID, 10),
				DurationDays: days,
				Note:         config.ProvisionNote,
			}
		},
	},
	{
		name: "userExternalId",
		build: func(userID int64, days int) any {
			return userExternalIDPayload{
				UserExternalID: strconv.FormatInt(userID, 10),
				Days:           days,
				Comment:        config.ProvisionNote,
			}
		},
	},
}

// ProvisionError is the terminal failure of one CreateSubscription call.
// It carries the diagnostic of the last attempted variant.
type ProvisionError struct {
	Variant    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ProvisionError) Error() string {
	var b strings.Builder
	b.WriteString("provisioning failed")
	if e.Variant != "" {
		fmt.Fprintf(&b, " (variant %s", e.Variant)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, ", status %d", e.StatusCode)
		}
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProvisionError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrProvisioningFailed}
	}
	return []error{domain.ErrProvisioningFailed, e.Err}
}

// Reason is the short text shown to the user.
func (e *ProvisionError) Reason() string {
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return "превышено время ожидания ответа панели"
	case errors.Is(e.Err, domain.ErrMalformedResponse):
		return fmt.Sprintf("некорректный ответ панели (HTTP %d)", e.StatusCode)
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "неизвестная ошибка"
	}
}

// CreateSubscription provisions a subscription for userID and returns the
// panel identifier, which may be empty.
func (c *RemnawaveClient) CreateSubscription(ctx context.Context, userID int64, days int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.NewString()
	var lastErr *ProvisionError

	for _, variant := range provisionVariants {
		if ctx.Err() != nil {
			break
		}

		id, perr := c.attempt(ctx, requestID, variant, userID, days)
		if perr == nil {
			slog.Info("remnawave subscription created",
				"user_id", userID,
				"days", days,
				"variant", variant.name,
				"remnawave_id", id,
				"request_id", requestID,
			)
			return id, nil
		}

		slog.Warn("remnawave request failed",
			"user_id", userID,
			"variant", variant.name,
			"status", perr.StatusCode,
			"error", perr,
			"request_id", requestID,
		)
		lastErr = perr

		if errors.Is(perr, domain.ErrMalformedResponse) {
			return "", perr
		}
	}

	if lastErr == nil {
		return "", &ProvisionError{Err: ctx.Err()}
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(lastErr.Err, ctxErr) {
		lastErr.Err = errors.Join(lastErr.Err, ctxErr)
	}
	return "", lastErr
}

func (c *RemnawaveClient) attempt(ctx context.Context, requestID string, variant provisionVariant, userID int64, days int) (string, *ProvisionError) {
	fail := func(status int, detail string, err error) *ProvisionError {
		return &ProvisionError{Variant: variant.name, StatusCode: status, Detail: detail, Err: err}
	}

	payload, err := json.Marshal(variant.build(userID, days))
	if err != nil {
		return "", fail(0, "", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fail(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fail(0, "", fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProvisionResponseSize))
	if err != nil {
		return "", fail(resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fail(resp.StatusCode, errorDetail(resp.Header.Get("Content-Type"), body), nil)
	}

	id, err := extractSubscriptionID(body)
	if err != nil {
		return "", fail(resp.StatusCode, truncateDetail(string(body)), err)
	}
	return id, nil
}

var subscriptionIDFields = []string{"id", "uuid", "subscriptionId"}

// extractSubscriptionID reads the identifier from the top level of the reply,
// then from a "response" or "data" envelope. The reply must be a JSON object;
// an object without an identifier is not an error.
func extractSubscriptionID(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: expected object, got %T", domain.ErrMalformedResponse, parsed)
	}
	if id := idFromObject(obj); id != "" {
		return id, nil
	}
	for _, envelope := range []string{"response", "data"} {
		if inner, ok := obj[envelope].(map[string]any); ok {
			if id := idFromObject(inner); id != "" {
				return id, nil
			}
		}
	}
	return "", nil
}

func idFromObject(obj map[string]any) string {
	for _, field := range subscriptionIDFields {
		switch v := obj[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// errorDetail turns a failing response body into a one-line diagnostic.
func errorDetail(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if strings.Contains(contentType, "text/html") || bytes.HasPrefix(trimmed, []byte("<")) {
		if text := htmlDetail(trimmed); text != "" {
			return truncateDetail(text)
		}
	}

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &apiErr); err == nil {
		if apiErr.Message != "" {
			return truncateDetail(apiErr.Message)
		}
		if apiErr.Error != "" {
			return truncateDetail(apiErr.Error)
		}
	}

	return truncateDetail(string(trimmed))
}

func htmlDetail(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

func truncateDetail(s string) string {
	if len(s) <= config.ProvisionErrorBodyLimit {
		return s
	}
	s = s[:config.ProvisionErrorBodyLimit]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
