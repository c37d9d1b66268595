package service

import (
	"context"
	"fmt"
	"time"

	"ecolibres-backend/app/model"
	"ecolibres-backend/app/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultContactSubject dipakai ketika form kontak tidak mengisi asunto.
const DefaultContactSubject = "Consulta general"

// ContactInput adalah payload form kontak.
type ContactInput struct {
	Name    string `json:"nombre" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"asunto"`
	Message string `json:"mensaje" validate:"required"`
}

// ContactResult adalah blok "data" pada respons form kontak.
type ContactResult struct {
	Name       string    `json:"nombre"`
	Email      string    `json:"email"`
	Subject    string    `json:"asunto"`
	Timestamp  time.Time `json:"timestamp"`
	EmailSent  bool      `json:"emailSent"`
	EmailError *string   `json:"emailError"`
	Service    string    `json:"service"`
}

// ContactConfig mengatur template EmailJS dan alamat admin.
type ContactConfig struct {
	AdminEmail          string
	TemplateID          string
	AutoReplyTemplateID string
}

// ContactService memproses form kontak.
type ContactService interface {
	Submit(ctx context.Context, in ContactInput) (*ContactResult, error)
	EmailEnabled() bool
	InboxEnabled() bool
}

type contactService struct {
	repo     repository.ContactRepository // nil jika PostgreSQL tidak dikonfigurasi
	mailer   Mailer                       // nil berarti pengiriman disimulasikan
	cfg      ContactConfig
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewContactService membuat ContactService. repo dan mailer boleh nil.
func NewContactService(repo repository.ContactRepository, mailer Mailer, cfg ContactConfig, validate *validator.Validate, log *zap.Logger) ContactService {
	if validate == nil {
		validate = NewValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &contactService{
		repo:     repo,
		mailer:   mailer,
		cfg:      cfg,
		validate: validate,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *contactService) EmailEnabled() bool { return s.mailer != nil }

func (s *contactService) InboxEnabled() bool { return s.repo != nil }

// Submit memvalidasi pesan, menyimpannya, lalu mengirim email ke admin dan
// auto-reply ke pengirim. Gagal kirim email tidak menggagalkan request.
func (s *contactService) Submit(ctx context.Context, in ContactInput) (*ContactResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fromValidator(err)
	}
	if in.Subject == "" {
		in.Subject = DefaultContactSubject
	}
	now := s.now()

	s.log.Info("contact message received",
		zap.String("email", in.Email),
		zap.String("subject", in.Subject),
	)

	msg := &model.ContactMessage{
		ID:      uuid.New(),
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, msg); err != nil {
			s.log.Error("persistence failure", zap.String("op", "save contact message"), zap.Error(err))
			return nil, persistenceError("save contact message", err)
		}
	}

	result := &ContactResult{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Timestamp: now,
		Service:   "simulated",
	}

	if s.mailer == nil {
		result.EmailSent = true
		s.log.Warn("email service not configured, delivery simulated", zap.String("email", in.Email))
		return result, nil
	}

	result.Service = "EmailJS"
	if err := s.sendEmails(ctx, in, now); err != nil {
		s.log.Error("email dispatch failed", zap.String("email", in.Email), zap.Error(err))
		errMsg := err.Error()
		result.EmailError = &errMsg
	} else {
		result.EmailSent = true
	}

	if s.repo != nil {
		msg.EmailSent, msg.EmailError = result.EmailSent, result.EmailError
		if err := s.repo.UpdateDelivery(ctx, msg); err != nil {
			// pesan sudah tersimpan, status pengiriman saja yang tertinggal
			s.log.Warn("contact delivery status not saved", zap.String("id", msg.ID.String()), zap.Error(err))
		}
	}
	return result, nil
}

func (s *contactService) sendEmails(ctx context.Context, in ContactInput, now time.Time) error {
	stamp := now.Format(time.RFC1123)

	admin := Email{
		TemplateID: s.cfg.TemplateID,
		Params: map[string]string{
			"from_name":  in.Name,
			"from_email": in.Email,
			"to_email":   s.cfg.AdminEmail,
			"subject":    in.Subject,
			"message":    in.Message,
			"reply_to":   in.Email,
			"timestamp":  stamp,
			"type":       "contact_form",
		},
	}
	if err := s.mailer.Send(ctx, admin); err != nil {
		return fmt.Errorf("admin notification: %w", err)
	}

	reply := Email{
		TemplateID: s.cfg.AutoReplyTemplateID,
		Params: map[string]string{
			"from_name":    "Equipo EcoLibres",
			"from_email":   s.cfg.AdminEmail,
			"to_email":     in.Email,
			"subject":      "Confirmación de mensaje recibido",
			"message":      fmt.Sprintf("Hola %s, hemos recibido tu mensaje: %q", in.Name, excerpt(in.Message, 100)),
			"user_name":    in.Name,
			"user_message": in.Message,
			"timestamp":    stamp,
		},
	}
	if err := s.mailer.Send(ctx, reply); err != nil {
		return fmt.Errorf("auto-reply: %w", err)
	}
	return nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
