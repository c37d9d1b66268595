package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEmailJSURL adalah endpoint REST EmailJS untuk kirim email via template.
const DefaultEmailJSURL = "https://api.emailjs.com/api/v1.0/email/send"

// Email adalah satu pengiriman template EmailJS.
type Email struct {
	TemplateID string
	Params     map[string]string
}

// Mailer mengirim email transaksional.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// EmailJSConfig berisi kredensial akun EmailJS.
type EmailJSConfig struct {
	ServiceID  string
	PublicKey  string
	PrivateKey string
	Endpoint   string
	Timeout    time.Duration
}

// EmailJSError dikembalikan ketika EmailJS membalas status >= 400.
type EmailJSError struct {
	StatusCode int
	Body       string
}

func (e *EmailJSError) Error() string {
	return fmt.Sprintf("emailjs: status %d: %s", e.StatusCode, e.Body)
}

type emailJSMailer struct {
	cfg        EmailJSConfig
	httpClient *http.Client
}

// NewEmailJSMailer membuat Mailer yang memanggil REST API EmailJS.
func NewEmailJSMailer(cfg EmailJSConfig) Mailer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &emailJSMailer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (m *emailJSMailer) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     email.TemplateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.PrivateKey,
		TemplateParams: email.Params,
	})
	if err != nil {
		return fmt.Errorf("emailjs: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return &EmailJSError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return nil
}
