// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP gateway to the aide assistant backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/aide-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds read and command requests. The exchange call
	// is exempt: a slow model reply must stall only the pending-send
	// affordance, never abort the turn.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRetries is the retry budget for idempotent reads.
	// Commands (create, delete, exchange) are never retried; replaying a
	// non-idempotent request could duplicate its effect.
	DefaultMaxRetries = 2

	// retryBaseDelay is the initial backoff delay.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps exponential backoff.
	retryMaxDelay = 5 * time.Second

	// MaxResponseSize limits response bodies to prevent memory exhaustion
	// from a misbehaving backend.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// Default client-side politeness limit toward the backend.
	defaultRequestsPerSec = 8
	defaultBurst          = 16
)

// sharedTransport is reused across clients for connection pooling.
var sharedTransport = &http.Transport{
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 5,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotConfigured indicates the client has no backend base URL.
var ErrNotConfigured = errors.New("backend base URL not configured")

// RequestError is a transport-level failure: the backend could not be
// reached or did not answer. Reads degrade gracefully on this error;
// commands surface it to the user.
type RequestError struct {
	Op        string // operation name, e.g. "list chats"
	RequestID string // correlation id sent as X-Request-ID
	Err       error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("backend request failed (%s): %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError is an application-level failure: the backend answered but the
// response indicates failure or violates the contract.
type APIError struct {
	Op      string // operation name
	Status  int    // HTTP status, 0 for contract violations in 2xx bodies
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error (%s, HTTP %d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (%s): %s", e.Op, e.Message)
}

// IsNetworkFailure reports whether err is a transport-level failure.
func IsNetworkFailure(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsApplicationFailure reports whether err is an application-level
// failure: a reachable backend that answered unsuccessfully or with a
// malformed payload.
func IsApplicationFailure(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the assistant backend. It shapes requests, validates
// responses against the contract, and classifies every failure as either
// a RequestError (transport) or an APIError (application). It holds no
// conversation state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a gateway client for the given base URL, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: sharedTransport},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultBurst),
		logger:     log.New(io.Discard, "", 0),
	}
}

// WithTimeout sets the per-request timeout for reads and commands.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithMaxRetries sets the retry budget for idempotent reads.
func (c *Client) WithMaxRetries(retries int) *Client {
	c.maxRetries = retries
	return c
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets the debug logger. The client never writes to stdout.
func (c *Client) WithLogger(logger *log.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithRateLimit adjusts the client-side request limiter.
func (c *Client) WithRateLimit(perSec float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	return c
}

// IsConfigured reports whether a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ListChats fetches the conversation listing. An absent or non-array
// "chats" field is a contract violation and reported as a failure.
func (c *Client) ListChats(ctx context.Context) ([]ChatSummary, error) {
	const op = "list chats"
	data, err := c.get(ctx, op, "/chats")
	if err != nil {
		return nil, err
	}
	return decodeChats(op, data)
}

// ChatHistory fetches the message history for one conversation. An absent
// or non-array "history" field means the conversation legitimately has no
// stored messages; that is an empty result, not an error.
func (c *Client) ChatHistory(ctx context.Context, chatID string) ([]HistoryMessage, error) {
	const op = "chat history"
	data, err := c.get(ctx, op, "/chat-history/"+url.PathEscape(chatID))
	if err != nil {
		return nil, err
	}
	return decodeHistory(op, data, time.Now())
}

// CreateChat registers a conversation id with the backend. The endpoint
// upserts, so the same call also renames an existing conversation.
func (c *Client) CreateChat(ctx context.Context, chatID, title string) error {
	const op = "create chat"
	body := map[string]string{"chat_id": chatID, "title": title}
	data, err := c.command(ctx, op, http.MethodPost, "/chat", body)
	if err != nil {
		return err
	}
	return decodeSuccess(op, data)
}

// DeleteChat removes a conversation from the backend.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	const op = "delete chat"
	data, err := c.command(ctx, op, http.MethodDelete, "/chat/"+url.PathEscape(chatID), nil)
	if err != nil {
		return err
	}
	return decodeSuccess(op, data)
}

// Ask submits a user query for the given conversation and returns the
// assistant's reply. The caller's context governs the request lifetime;
// no additional timeout is applied, so a slow model does not abort the
// exchange.
func (c *Client) Ask(ctx context.Context, chatID, query string) (string, error) {
	const op = "exchange"
	body := map[string]string{"query": query, "chat_id": chatID}
	data, err := c.do(ctx, op, http.MethodPost, "/ask", body)
	if err != nil {
		return "", err
	}

	var raw rawAskResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", &APIError{Op: op, Message: "malformed response body"}
	}
	// The backend reports model failures inside a 200 body.
	if raw.Error != "" {
		return "", &APIError{Op: op, Message: raw.Error}
	}
	var reply string
	if err := json.Unmarshal(raw.Response, &reply); err != nil {
		return "", &APIError{Op: op, Message: "response field missing or not a string"}
	}
	return reply, nil
}

// UserMemory fetches the backend's user-memory map.
func (c *Client) UserMemory(ctx context.Context) (model.Memory, error) {
	const op = "user memory"
	data, err := c.get(ctx, op, "/user-memory")
	if err != nil {
		return nil, err
	}

	var raw rawMemory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &APIError{Op: op, Message: "malformed response body"}
	}
	if raw.Memory == nil {
		return nil, &APIError{Op: op, Message: "memory field missing"}
	}
	mem := make(model.Memory, len(raw.Memory))
	for k, v := range raw.Memory {
		mem[k] = stringifyValue(v)
	}
	return mem, nil
}

// SetMemory stores one user-memory fact on the backend.
func (c *Client) SetMemory(ctx context.Context, key, value string) error {
	const op = "set memory"
	body := map[string]string{"key": key, "value": value}
	data, err := c.command(ctx, op, http.MethodPost, "/user-memory", body)
	if err != nil {
		return err
	}
	return decodeSuccess(op, data)
}

// DeleteMemory removes one user-memory fact from the backend.
func (c *Client) DeleteMemory(ctx context.Context, key string) error {
	const op = "delete memory"
	data, err := c.command(ctx, op, http.MethodDelete, "/user-memory/"+url.PathEscape(key), nil)
	if err != nil {
		return err
	}
	return decodeSuccess(op, data)
}

// Stats fetches backend usage counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	const op = "stats"
	data, err := c.get(ctx, op, "/stats")
	if err != nil {
		return nil, err
	}

	var raw struct {
		TotalChats    int                        `json:"total_chats"`
		TotalMessages int                        `json:"total_messages"`
		MemoryItems   int                        `json:"user_memory_items"`
		Memory        map[string]json.RawMessage `json:"user_memory"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &APIError{Op: op, Message: "malformed response body"}
	}
	stats := &Stats{
		TotalChats:    raw.TotalChats,
		TotalMessages: raw.TotalMessages,
		MemoryItems:   raw.MemoryItems,
		Memory:        make(model.Memory, len(raw.Memory)),
	}
	for k, v := range raw.Memory {
		stats.Memory[k] = stringifyValue(v)
	}
	return stats, nil
}

// ExportChat fetches the backend's export payload for one conversation.
func (c *Client) ExportChat(ctx context.Context, chatID string) (*ExportData, error) {
	const op = "export chat"
	data, err := c.get(ctx, op, "/chat/"+url.PathEscape(chatID)+"/export")
	if err != nil {
		return nil, err
	}

	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil || raw.ExportData == nil {
		return nil, &APIError{Op: op, Message: "export_data field missing"}
	}
	now := time.Now()
	export := &ExportData{
		ChatID:     raw.ExportData.ChatID,
		Title:      raw.ExportData.Title,
		CreatedAt:  parseTimestamp(raw.ExportData.CreatedAt, now),
		ExportedAt: parseTimestamp(raw.ExportData.ExportedAt, now),
	}
	for _, entry := range raw.ExportData.Messages {
		msg, err := decodeHistoryEntry(op, entry, now)
		if err != nil {
			return nil, err
		}
		export.Messages = append(export.Messages, msg)
	}
	return export, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// get performs an idempotent read with retries and the standard timeout.
func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &RequestError{Op: op, Err: ctx.Err()}
			}
		}

		data, err := c.do(ctx, op, http.MethodGet, path, nil)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !c.isRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

// command performs a non-idempotent write: single shot, standard timeout.
func (c *Client) command(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.do(cmdCtx, op, method, path, body)
}

// do performs one HTTP round trip and classifies the outcome.
func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	// Reads get the standard timeout here; Ask passes its context through
	// command-free so only the caller bounds it.
	if method == http.MethodGet {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("api: %s transport failure request_id=%s: %v", op, reqID, err)
		return nil, &RequestError{Op: op, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	data, err := c.readResponse(resp)
	if err != nil {
		c.logger.Printf("api: %s read failure request_id=%s: %v", op, reqID, err)
		return nil, &RequestError{Op: op, RequestID: reqID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode, Message: errorDetail(data, resp.StatusCode)}
		c.logger.Printf("api: %s rejected request_id=%s: %v", op, reqID, apiErr)
		return nil, apiErr
	}

	return data, nil
}

// readResponse reads a response body with a size cap.
func (c *Client) readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// errorDetail extracts FastAPI's {"detail": ...} message from an error
// body, falling back to the HTTP status text.
func errorDetail(data []byte, status int) string {
	var body detailBody
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return http.StatusText(status)
}

// isRetryable reports whether a read may be retried.
func (c *Client) isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return !errors.Is(reqErr.Err, context.Canceled) && !errors.Is(reqErr.Err, context.DeadlineExceeded)
	}
	return false
}

// calculateBackoff returns the exponential backoff delay for an attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// =============================================================================
// RESPONSE VALIDATION
// =============================================================================

// decodeChats validates the listing payload.
func decodeChats(op string, data []byte) ([]ChatSummary, error) {
	var raw rawChatList
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &APIError{Op: op, Message: "malformed response body"}
	}
	if !isJSONArray(raw.Chats) {
		return nil, &APIError{Op: op, Message: "chats field missing or not an array"}
	}

	var entries []rawChatEntry
	if err := json.Unmarshal(raw.Chats, &entries); err != nil {
		return nil, &APIError{Op: op, Message: "malformed chats array"}
	}

	now := time.Now()
	summaries := make([]ChatSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			return nil, &APIError{Op: op, Message: "listing entry missing id"}
		}
		summaries = append(summaries, ChatSummary{
			ID:          entry.ID,
			Title:       entry.Title,
			CreatedAt:   parseTimestamp(entry.CreatedAt, now),
			UpdatedAt:   parseTimestamp(entry.UpdatedAt, now),
			LastMessage: entry.LastMessage,
		})
	}
	return summaries, nil
}

// decodeHistory validates a history payload. A missing or non-array
// history field is a legitimately empty history.
func decodeHistory(op string, data []byte, now time.Time) ([]HistoryMessage, error) {
	var raw rawHistory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &APIError{Op: op, Message: "malformed response body"}
	}
	if !isJSONArray(raw.History) {
		return []HistoryMessage{}, nil
	}

	var entries []rawHistoryEntry
	if err := json.Unmarshal(raw.History, &entries); err != nil {
		return nil, &APIError{Op: op, Message: "malformed history array"}
	}

	messages := make([]HistoryMessage, 0, len(entries))
	for _, entry := range entries {
		msg, err := decodeHistoryEntry(op, entry, now)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// decodeHistoryEntry validates one history entry.
func decodeHistoryEntry(op string, entry rawHistoryEntry, now time.Time) (HistoryMessage, error) {
	role := model.Role(strings.ToLower(strings.TrimSpace(entry.Role)))
	if !role.Valid() {
		return HistoryMessage{}, &APIError{Op: op, Message: fmt.Sprintf("unrecognized role %q in history", entry.Role)}
	}

	var content string
	if len(entry.Content) > 0 {
		if err := json.Unmarshal(entry.Content, &content); err != nil {
			return HistoryMessage{}, &APIError{Op: op, Message: "history entry content is not a string"}
		}
	}

	// Older rows carry created_at instead of timestamp.
	ts := entry.Timestamp
	if len(ts) == 0 || string(ts) == "null" {
		ts = entry.CreatedAt
	}

	return HistoryMessage{
		Role:      role,
		Content:   content,
		Timestamp: parseTimestamp(ts, now),
	}, nil
}

// decodeSuccess validates a {"success": bool} command response.
func decodeSuccess(op string, data []byte) error {
	var raw rawSuccess
	if err := json.Unmarshal(data, &raw); err != nil {
		return &APIError{Op: op, Message: "malformed response body"}
	}
	if !raw.Success {
		return &APIError{Op: op, Message: "backend reported failure"}
	}
	return nil
}

// isJSONArray reports whether raw is a JSON array value.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
