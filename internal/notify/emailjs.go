package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxResponseSize = 64 << 10

// EmailParams are the template variables of the order email.
type EmailParams struct {
	ToEmail       string `json:"to_email"`
	OrderNumber   string `json:"order_number"`
	OrderTotal    string `json:"order_total"`
	OrderItems    string `json:"order_items"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type EmailSender interface {
	SendEmail(ctx context.Context, p EmailParams) error
}

// EmailJSSender sends through the EmailJS REST API.
type EmailJSSender struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Client     *http.Client
}

type emailJSRequest struct {
	ServiceID      string      `json:"service_id"`
	TemplateID     string      `json:"template_id"`
	UserID         string      `json:"user_id"`
	AccessToken    string      `json:"accessToken,omitempty"`
	TemplateParams EmailParams `json:"template_params"`
}

func (s *EmailJSSender) SendEmail(ctx context.Context, p EmailParams) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.ServiceID,
		TemplateID:     s.TemplateID,
		UserID:         s.PublicKey,
		AccessToken:    s.PrivateKey,
		TemplateParams: p,
	})
	if err != nil {
		return fmt.Errorf("emailjs: encode request: %w", err)
	}

	url := strings.TrimRight(s.BaseURL, "/") + "/api/v1.0/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("emailjs: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	return nil
}
