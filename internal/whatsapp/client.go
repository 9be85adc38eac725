// Package whatsapp wraps outbound calls to the WhatsApp Cloud API with phone
// validation, error classification and retry handling.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"crm-gateway/internal/audit"
	"crm-gateway/internal/config"
	"crm-gateway/internal/phone"
	"crm-gateway/internal/template"
)

// MaxTextLength is the provider limit for a text message body.
const MaxTextLength = 4096

// sessionValidWindow is how long a successful credential probe is trusted
// before re-validating against the provider.
const sessionValidWindow = 5 * time.Minute

type Client struct {
	Config   *config.Config
	http     *http.Client
	recorder audit.Recorder

	mu            sync.Mutex
	lastValidated time.Time

	retryBase time.Duration
	bulkDelay time.Duration
}

func NewClient(cfg *config.Config, recorder audit.Recorder) *Client {
	if recorder == nil {
		recorder = audit.Discard{}
	}
	return &Client{
		Config:    cfg,
		http:      &http.Client{},
		recorder:  recorder,
		retryBase: time.Second,
		bulkDelay: 15 * time.Millisecond,
	}
}

// --- Session Validation ---

// ValidateSession probes the provider with an authenticated account-info call.
// A successful probe is cached for five minutes.
func (c *Client) ValidateSession(ctx context.Context) error {
	if !c.Config.HasWhatsAppCredentials() {
		return fmt.Errorf("whatsapp credentials not configured")
	}

	c.mu.Lock()
	if time.Since(c.lastValidated) < sessionValidWindow {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/%s", c.Config.GraphAPIBase, c.Config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("session probe failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.invalidateSession()
		return fmt.Errorf("session probe rejected: %s", resp.Status)
	}

	c.mu.Lock()
	c.lastValidated = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.lastValidated = time.Time{}
	c.mu.Unlock()
}

// --- Send Operations ---

// SendText sends a plain text message. Expected failures (bad config, bad
// phone, oversized body, provider errors) come back in the result, never as
// an error value.
func (c *Client) SendText(ctx context.Context, to, body string) SendResult {
	if body == "" {
		return c.failValidation(to, "text", "message body is empty")
	}
	if chars := utf8.RuneCountInString(body); chars > MaxTextLength {
		return c.failValidation(to, "text",
			fmt.Sprintf("message body is %d characters (maximum %d)", chars, MaxTextLength))
	}

	return c.dispatch(ctx, to, "text", body, func(normalized string) GenericMessage {
		return GenericMessage{
			MessagingProduct: "whatsapp",
			To:               normalized,
			Type:             "text",
			Text:             &TextObj{Body: body},
		}
	})
}

// SendTemplate builds components from a prefix-keyed parameter map and sends
// a template message.
func (c *Client) SendTemplate(ctx context.Context, to, templateName, language string, params map[string]string) SendResult {
	validation := template.Validate(templateName, params, nil)
	if !validation.Valid {
		return c.failValidation(to, "template", validation.Errors[0])
	}
	if language == "" {
		language = "en"
	}

	components := toWire(template.Build(params))
	content := "Template: " + templateName

	return c.dispatch(ctx, to, "template", content, func(normalized string) GenericMessage {
		return GenericMessage{
			MessagingProduct: "whatsapp",
			To:               normalized,
			Type:             "template",
			Template: &TemplateObj{
				Name:       templateName,
				Language:   LanguageObj{Code: language},
				Components: components,
			},
		}
	})
}

// SendDocument sends a document by link, e.g. a PDF statement.
func (c *Client) SendDocument(ctx context.Context, to, link, filename, caption string) SendResult {
	if link == "" {
		return c.failValidation(to, "document", "document link is empty")
	}

	return c.dispatch(ctx, to, "document", "Document: "+filename, func(normalized string) GenericMessage {
		return GenericMessage{
			MessagingProduct: "whatsapp",
			To:               normalized,
			Type:             "document",
			Document: &MediaObj{
				Link:     link,
				Filename: filename,
				Caption:  caption,
			},
		}
	})
}

// dispatch runs the shared validation pipeline and issues the HTTP call.
func (c *Client) dispatch(ctx context.Context, to, msgType, content string, build func(normalized string) GenericMessage) SendResult {
	if !c.Config.HasWhatsAppCredentials() {
		result := SendResult{
			To:            to,
			ErrorCategory: ErrConfiguration,
			ErrorMessage:  "whatsapp credentials not configured",
		}
		c.record(result, msgType, content)
		return result
	}

	normalized, ok := phone.ToMessagingFormat(to)
	if !ok {
		result := SendResult{
			To:            to,
			ErrorCategory: ErrInvalidPhone,
			ErrorMessage:  phone.Validate(to).Error,
		}
		c.record(result, msgType, content)
		return result
	}

	result := c.post(ctx, build(normalized))
	result.To = normalized
	c.record(result, msgType, content)
	return result
}

func (c *Client) post(ctx context.Context, msg GenericMessage) SendResult {
	result := SendResult{}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		result.ErrorCategory = ErrUnknown
		result.ErrorMessage = err.Error()
		return result
	}

	url := fmt.Sprintf("%s/%s/messages", c.Config.GraphAPIBase, c.Config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		result.ErrorCategory = ErrUnknown
		result.ErrorMessage = err.Error()
		return result
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// No response at all: transport-level failure, retryable.
		result.ErrorCategory = ErrNetwork
		result.ErrorMessage = err.Error()
		result.ShouldRetry = true
		return result
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		result.ErrorCategory = ErrNetwork
		result.ErrorMessage = err.Error()
		result.ShouldRetry = true
		return result
	}

	if resp.StatusCode < 400 {
		var parsed sendResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Messages) == 0 {
			result.ErrorCategory = ErrUnknown
			result.ErrorMessage = "provider returned an unexpected response body"
			return result
		}
		result.Success = true
		result.MessageID = parsed.Messages[0].ID
		return result
	}

	var provErr errorResponse
	json.Unmarshal(respBody, &provErr)

	category, shouldRetry, retryAfter := classify(resp.StatusCode, provErr.Error.Code, resp.Header.Get("Retry-After"))
	if category == ErrAuthentication {
		c.invalidateSession()
	}

	result.ErrorCategory = category
	result.ErrorCode = provErr.Error.Code
	result.ErrorMessage = provErr.Error.Message
	if result.ErrorMessage == "" {
		result.ErrorMessage = resp.Status
	}
	result.ShouldRetry = shouldRetry
	result.RetryAfter = retryAfter
	return result
}

func (c *Client) failValidation(to, msgType, reason string) SendResult {
	result := SendResult{
		To:            to,
		ErrorCategory: ErrValidation,
		ErrorMessage:  reason,
	}
	c.record(result, msgType, "")
	return result
}

func (c *Client) record(result SendResult, msgType, content string) {
	status := "failed"
	if result.Success {
		status = "sent"
	}
	c.recorder.Record(audit.Entry{
		PhoneNumber:       result.To,
		MessageContent:    content,
		MessageType:       msgType,
		Status:            status,
		WhatsAppMessageID: result.MessageID,
		ErrorMessage:      result.ErrorMessage,
		SentAt:            time.Now(),
	})
}

// toWire converts builder components into the Cloud API component shape.
func toWire(components []template.Component) []ComponentObj {
	out := make([]ComponentObj, 0, len(components))
	for _, comp := range components {
		obj := ComponentObj{Type: comp.Type}
		if comp.Type == template.ComponentButton {
			obj.SubType = comp.SubType
			obj.Index = strconv.Itoa(comp.Index)
		}
		for _, p := range comp.Parameters {
			obj.Parameters = append(obj.Parameters, ParameterObj{Type: "text", Text: p})
		}
		out = append(out, obj)
	}
	return out
}

// --- Template Sync ---

// GetTemplates fetches the WABA's message templates for local caching.
func (c *Client) GetTemplates(ctx context.Context) (map[string]interface{}, error) {
	if c.Config.WhatsAppBusinessAccountID == "" {
		return nil, fmt.Errorf("WABA_ID not configured")
	}

	url := fmt.Sprintf("%s/%s/message_templates", c.Config.GraphAPIBase, c.Config.WhatsAppBusinessAccountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Config.WhatsAppToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	var result map[string]interface{}
	err = json.Unmarshal(respBody, &result)
	return result, err
}
