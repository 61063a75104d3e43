// Package crm provides a client for the external CRM store's REST API.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ridgelinecap/dealmatch/internal/common"
	"github.com/ridgelinecap/dealmatch/internal/model"
	"github.com/ridgelinecap/dealmatch/internal/service"
)

// Email and deal properties read from the store.
const (
	propEmailSubject = "hs_email_subject"
	propEmailText    = "hs_email_text"
	propEmailSentAt  = "hs_timestamp"

	propDealName      = "dealname"
	propDealStage     = "dealstage"
	propDealAddress   = "property_address"
	propLoanNumber    = "loan_number"
	propServicerLoan  = "servicer_loan_number"
	propPrevServicer  = "previous_servicer_loan_number"
	searchResultLimit = 100
)

var dealProperties = []string{
	propDealName,
	propDealStage,
	propDealAddress,
	propLoanNumber,
	propServicerLoan,
	propPrevServicer,
}

// Config holds CRM API configuration.
type Config struct {
	BaseURL           string
	AccessToken       string
	Timeout           time.Duration
	AssociationTypeID int
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: crm base URL is required", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: crm access token is required", common.ErrMissingConfig)
	}
	return nil
}

// Client implements the service.DealRepository interface over the store's
// REST API. Rate-limit responses are retried per the configured policy;
// any other non-success response is surfaced as an *APIError.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	accessToken string
	assocTypeID int
	retryOpts   service.RetryOptions
}

// NewClient creates a new CRM client with the given configuration.
func NewClient(cfg Config, retryOpts service.RetryOptions) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	assocTypeID := cfg.AssociationTypeID
	if assocTypeID <= 0 {
		assocTypeID = 210
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		assocTypeID: assocTypeID,
		retryOpts:   retryOpts,
		logger:      slog.Default().With("component", "crm"),
	}, nil
}

type objectResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type listResponse struct {
	Results []objectResponse `json:"results"`
	Total   int              `json:"total"`
}

type associationListResponse struct {
	Results []struct {
		ToObjectID json.Number `json:"toObjectId"`
	} `json:"results"`
}

// GetEmail fetches an email record's subject, body, and timestamp.
func (c *Client) GetEmail(ctx context.Context, id string) (*model.EmailMessage, error) {
	path := fmt.Sprintf("/crm/v3/objects/emails/%s?properties=%s",
		url.PathEscape(id),
		strings.Join([]string{propEmailSubject, propEmailText, propEmailSentAt}, ","))

	var resp objectResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch email %s: %w", id, err)
	}

	email := &model.EmailMessage{
		ID:      resp.ID,
		Subject: resp.Properties[propEmailSubject],
		Body:    resp.Properties[propEmailText],
	}
	if ts := resp.Properties[propEmailSentAt]; ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			email.ReceivedAt = parsed
		}
	}
	return email, nil
}

// GetDeal fetches a single deal record by id.
func (c *Client) GetDeal(ctx context.Context, id string) (*model.Deal, error) {
	path := fmt.Sprintf("/crm/v3/objects/deals/%s?properties=%s",
		url.PathEscape(id), strings.Join(dealProperties, ","))

	var resp objectResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch deal %s: %w", id, err)
	}

	deal := dealFromObject(resp)
	return &deal, nil
}

// GetDealsByIDs fetches multiple deal records in one batched read.
func (c *Client) GetDealsByIDs(ctx context.Context, ids []string) ([]model.Deal, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	inputs := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, map[string]string{"id": id})
	}
	body := map[string]any{
		"properties": dealProperties,
		"inputs":     inputs,
	}

	var resp listResponse
	if err := c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/deals/batch/read", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to batch read deals: %w", err)
	}

	return dealsFromList(resp), nil
}

// SearchDealsByProperty searches deals whose property contains the value as
// a token. The caller is responsible for filtering by allowed stage.
func (c *Client) SearchDealsByProperty(ctx context.Context, property, value string) ([]model.Deal, error) {
	body := map[string]any{
		"filterGroups": []map[string]any{
			{
				"filters": []map[string]any{
					{
						"propertyName": property,
						"operator":     "CONTAINS_TOKEN",
						"value":        value,
					},
				},
			},
		},
		"properties": dealProperties,
		"limit":      searchResultLimit,
	}

	var resp listResponse
	if err := c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/deals/search", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to search deals by %s: %w", property, err)
	}

	c.logger.Debug("Deal search completed",
		"property", property,
		"value", value,
		"results", len(resp.Results))

	return dealsFromList(resp), nil
}

// GetAssociatedIDs lists the ids of objects associated with the given
// record, in association order.
func (c *Client) GetAssociatedIDs(ctx context.Context, fromType, fromID, toType string) ([]string, error) {
	path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s",
		url.PathEscape(fromType), url.PathEscape(fromID), url.PathEscape(toType))

	var resp associationListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s associations for %s %s: %w", toType, fromType, fromID, err)
	}

	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ToObjectID.String())
	}
	return ids, nil
}

// AssociateEmailToDeal writes the email-to-deal association using the fixed
// association type. The store's write is idempotent, so redelivered events
// issue the same write safely.
func (c *Client) AssociateEmailToDeal(ctx context.Context, emailID, dealID string) error {
	path := fmt.Sprintf("/crm/v4/objects/emails/%s/associations/deals/%s",
		url.PathEscape(emailID), url.PathEscape(dealID))

	body := []map[string]any{
		{
			"associationCategory": "HUBSPOT_DEFINED",
			"associationTypeId":   c.assocTypeID,
		},
	}

	if err := c.doJSON(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to associate email %s to deal %s: %w", emailID, dealID, err)
	}

	c.logger.Info("Associated email to deal", "email_id", emailID, "deal_id", dealID)
	return nil
}

// doJSON performs one API request with the configured retry policy. A 429
// response retries with the server's Retry-After hint when present; a 204
// or empty body normalizes to an empty result; any other non-2xx status
// returns an *APIError without retry.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	return common.WithRetry(ctx, func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			c.logger.Warn("Rate limit hit, will retry", "path", path, "retry_after", retryAfter)
			return &common.RetryableError{
				Err:        common.ErrRateLimit,
				Retryable:  true,
				RetryAfter: retryAfter,
			}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", common.ErrNotFound, extractErrorMessage(data))
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    extractErrorMessage(data),
			}
		}

		// 204 or an empty body normalizes to an empty result.
		if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
			return nil
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}, c.retryOpts)
}

// parseRetryAfter interprets a Retry-After header value in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func extractErrorMessage(data []byte) string {
	var apiMsg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &apiMsg); err == nil && apiMsg.Message != "" {
		return apiMsg.Message
	}
	return strings.TrimSpace(string(data))
}

func dealFromObject(obj objectResponse) model.Deal {
	deal := model.Deal{
		ID:         obj.ID,
		Name:       obj.Properties[propDealName],
		Stage:      obj.Properties[propDealStage],
		Address:    obj.Properties[propDealAddress],
		LoanNumber: obj.Properties[propLoanNumber],
	}
	for _, prop := range []string{propServicerLoan, propPrevServicer} {
		if v := obj.Properties[prop]; v != "" {
			deal.AltLoanNumbers = append(deal.AltLoanNumbers, v)
		}
	}
	return deal
}

func dealsFromList(resp listResponse) []model.Deal {
	deals := make([]model.Deal, 0, len(resp.Results))
	for _, obj := range resp.Results {
		deals = append(deals, dealFromObject(obj))
	}
	return deals
}

// Ensure Client implements the DealRepository interface.
var _ service.DealRepository = (*Client)(nil)
