package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResultNotification данные письма о результате попытки
type ResultNotification struct {
	ToEmail     string
	StudentName string
	QuizTitle   string
	Score       int
	MaxScore    int
	Percentage  float64
	Passed      bool
	AttemptID   uint
}

// EmailService sends transactional emails.
type EmailService interface {
	SendResultNotification(ctx context.Context, n ResultNotification, idempotencyKey string) error
}

// NoopEmailService is used when result emails are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendResultNotification(ctx context.Context, n ResultNotification, idempotencyKey string) error {
	log.Printf("[EmailService] noop send result notification to=%s attempt=%d", n.ToEmail, n.AttemptID)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendResultNotification(ctx context.Context, n ResultNotification, idempotencyKey string) error {
	if n.ToEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := buildResultEmail(s.from, n)

	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func buildResultEmail(from string, n ResultNotification) *resend.SendEmailRequest {
	verdict := "did not pass"
	if n.Passed {
		verdict = "passed"
	}
	name := n.StudentName
	if name == "" {
		name = "student"
	}

	return &resend.SendEmailRequest{
		From:    from,
		To:      []string{n.ToEmail},
		Subject: fmt.Sprintf("Your result: %s", n.QuizTitle),
		Text: fmt.Sprintf("Hi %s,\n\nYou scored %d/%d (%.2f%%) on \"%s\" and %s.\n",
			name, n.Score, n.MaxScore, n.Percentage, n.QuizTitle, verdict),
		Html: fmt.Sprintf("<p>Hi %s,</p><p>You scored <strong>%d/%d</strong> (%.2f%%) on &quot;%s&quot; and %s.</p>",
			html.EscapeString(name), n.Score, n.MaxScore, n.Percentage, html.EscapeString(n.QuizTitle), verdict),
	}
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
