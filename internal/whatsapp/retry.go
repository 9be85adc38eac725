package whatsapp

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// maxBackoff caps the exponential backoff between retry attempts.
const maxBackoff = 30 * time.Second

// messageCost is the approximate per-message rate (INR) used for the bulk
// report's cost counter.
const messageCost = 0.125

// SendTextWithRetry attempts a text send up to maxAttempts times, honoring
// the provider's retry-after when supplied and exponential backoff with ±10%
// jitter otherwise. It stops immediately on a non-retryable result and
// returns the last result when attempts are exhausted. Context cancellation
// interrupts a backoff wait.
func (c *Client) SendTextWithRetry(ctx context.Context, to, body string, maxAttempts int) SendResult {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result SendResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result = c.SendText(ctx, to, body)
		if result.Success || !result.ShouldRetry || attempt == maxAttempts {
			return result
		}

		wait := c.backoff(attempt, result.RetryAfter)
		log.Printf("Send to %s failed (%s), retrying in %v (attempt %d/%d)",
			to, result.ErrorCategory, wait, attempt, maxAttempts)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			result.ErrorMessage = ctx.Err().Error()
			result.ShouldRetry = false
			return result
		}
	}
	return result
}

// backoff returns the wait before the next attempt: the provider-supplied
// retry-after when present, else min(base*2^(attempt-1), 30s) with ±10%
// jitter.
func (c *Client) backoff(attempt, retryAfterSecs int) time.Duration {
	if retryAfterSecs > 0 {
		return time.Duration(retryAfterSecs) * time.Second
	}

	wait := c.retryBase << (attempt - 1)
	if wait > maxBackoff {
		wait = maxBackoff
	}
	jitter := 1 + (rand.Float64()*0.2 - 0.1)
	return time.Duration(float64(wait) * jitter)
}

// SendBulk sends messages sequentially with a fixed inter-message delay to
// stay under the provider rate ceiling. This is a throttled loop, not a
// queue: one slow or failed message never stops the rest.
func (c *Client) SendBulk(ctx context.Context, messages []BulkMessage) BulkReport {
	report := BulkReport{Results: make([]SendResult, 0, len(messages))}

	for i, msg := range messages {
		if i > 0 {
			select {
			case <-time.After(c.bulkDelay):
			case <-ctx.Done():
				report.Results = append(report.Results, SendResult{
					To:            msg.To,
					ErrorCategory: ErrCancelled,
					ErrorMessage:  ctx.Err().Error(),
				})
				report.Failed++
				continue
			}
		}

		var result SendResult
		if msg.TemplateName != "" {
			result = c.SendTemplate(ctx, msg.To, msg.TemplateName, msg.Language, msg.Params)
		} else {
			result = c.SendText(ctx, msg.To, msg.Body)
		}

		report.Results = append(report.Results, result)
		if result.Success {
			report.Sent++
			report.Cost += messageCost
		} else {
			report.Failed++
		}
	}

	return report
}
