package whatsapp

// --- Message Structures ---

type GenericMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	RecipientType    string       `json:"recipient_type,omitempty"`
	Text             *TextObj     `json:"text,omitempty"`
	Document         *MediaObj    `json:"document,omitempty"`
	Template         *TemplateObj `json:"template,omitempty"`
}

type TextObj struct {
	Body       string `json:"body"`
	PreviewUrl bool   `json:"preview_url,omitempty"`
}

type MediaObj struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"` // For documents
}

type TemplateObj struct {
	Name       string         `json:"name"`
	Language   LanguageObj    `json:"language"`
	Components []ComponentObj `json:"components,omitempty"`
}

type LanguageObj struct {
	Code string `json:"code"`
}

type ComponentObj struct {
	Type       string         `json:"type"`
	SubType    string         `json:"sub_type,omitempty"`
	Parameters []ParameterObj `json:"parameters"`
	Index      string         `json:"index,omitempty"` // For buttons
}

type ParameterObj struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// --- Provider Responses ---

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Contacts []struct {
		WaID string `json:"wa_id"`
	} `json:"contacts"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Send Results ---

// ErrorCategory is the fixed taxonomy failures are classified into.
type ErrorCategory string

const (
	ErrNone            ErrorCategory = ""
	ErrConfiguration   ErrorCategory = "configuration"
	ErrValidation      ErrorCategory = "validation"
	ErrAuthentication  ErrorCategory = "authentication"
	ErrRateLimit       ErrorCategory = "rate_limit"
	ErrInvalidPhone    ErrorCategory = "invalid_phone"
	ErrTemplate        ErrorCategory = "template_error"
	ErrPolicyViolation ErrorCategory = "policy_violation"
	ErrNetwork         ErrorCategory = "network_error"
	ErrCancelled       ErrorCategory = "cancelled"
	ErrUnknown         ErrorCategory = "unknown"
)

// SendResult is the outcome of one send operation. Expected failure modes are
// reported here, never as errors or panics.
type SendResult struct {
	Success       bool          `json:"success"`
	MessageID     string        `json:"message_id,omitempty"`
	To            string        `json:"to"`
	ErrorCategory ErrorCategory `json:"error_category,omitempty"`
	ErrorCode     int           `json:"error_code,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	ShouldRetry   bool          `json:"should_retry"`
	RetryAfter    int           `json:"retry_after,omitempty"` // seconds
}

// BulkMessage is one entry in a bulk send. A non-empty TemplateName selects a
// template send; otherwise Body is sent as text.
type BulkMessage struct {
	To           string            `json:"to"`
	Body         string            `json:"body,omitempty"`
	TemplateName string            `json:"template_name,omitempty"`
	Language     string            `json:"language,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
}

// BulkReport aggregates the per-message results of a bulk send.
type BulkReport struct {
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Cost    float64      `json:"cost"`
	Results []SendResult `json:"results"`
}
