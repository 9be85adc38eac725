package template

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"crm-gateway/internal/models"
	"crm-gateway/internal/phone"
)

// DateStyle selects a FormatDate rendering.
type DateStyle string

const (
	DateShort DateStyle = "short" // 02 Jan 2006
	DateLong  DateStyle = "long"  // Monday, 2 January 2006
	DateISO   DateStyle = "iso"   // 2006-01-02
)

// FormatCurrency renders an amount with Indian digit grouping: the last three
// digits form one group, every two digits after that form another.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	whole := fmt.Sprintf("%.2f", amount)
	intPart, fracPart, _ := strings.Cut(whole, ".")

	grouped := intPart
	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		grouped = strings.Join(groups, ",") + "," + tail
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s₹%s.%s", sign, grouped, fracPart)
}

// FormatDate renders a time in the requested style, defaulting to short.
func FormatDate(t time.Time, style DateStyle) string {
	switch style {
	case DateLong:
		return t.Format("Monday, 2 January 2006")
	case DateISO:
		return t.Format("2006-01-02")
	default:
		return t.Format("02 Jan 2006")
	}
}

// FormatPhone renders a raw phone value for display; unusable input is
// returned trimmed rather than dropped.
func FormatPhone(raw string) string {
	if v := phone.Validate(raw); v.IsValid {
		return phone.DisplayFormat(v.Normalized)
	}
	return strings.TrimSpace(raw)
}

// TitleCase capitalizes the first letter of each whitespace-separated word
// and lowercases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Truncate shortens a string to max runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

// CollapseWhitespace trims and collapses internal whitespace runs to single
// spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CustomerParams assembles the parameter map for a customer-facing template
// from a contact, an optional invoice, and caller-supplied extras. Extras win
// over generated values on key collision.
func CustomerParams(contact *models.Contact, invoice *models.Invoice, extra map[string]string) map[string]string {
	params := map[string]string{}

	if contact != nil {
		params["customer_name"] = TitleCase(CollapseWhitespace(contact.Name))
		if contact.Phone != "" {
			params["customer_phone"] = FormatPhone(contact.Phone)
		}
		if contact.Location != "" {
			params["customer_location"] = contact.Location
		}
	}

	if invoice != nil {
		params["invoice_ref"] = invoice.Reference
		params["amount"] = FormatCurrency(invoice.Amount)
		params["due_date"] = FormatDate(invoice.DueDate, DateShort)
	}

	for k, v := range extra {
		params[k] = v
	}

	return params
}
