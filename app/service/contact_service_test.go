package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ecolibres-backend/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, e Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

type fakeContactRepo struct {
	created []*model.ContactMessage
	updated []*model.ContactMessage
	err     error
}

func (f *fakeContactRepo) Create(_ context.Context, msg *model.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	cp := *msg
	f.created = append(f.created, &cp)
	return nil
}

func (f *fakeContactRepo) UpdateDelivery(_ context.Context, msg *model.ContactMessage) error {
	cp := *msg
	f.updated = append(f.updated, &cp)
	return nil
}

func (f *fakeContactRepo) Ping(context.Context) error { return nil }

var contactCfg = ContactConfig{AdminEmail: "admin@ecolibres.mx", TemplateID: "tpl_admin", AutoReplyTemplateID: "tpl_reply"}

func validContact() ContactInput {
	return ContactInput{Name: "Ana", Email: "ana@example.com", Message: "Hola, quiero informes"}
}

func TestContactService_SendsBothEmails(t *testing.T) {
	mailer := &fakeMailer{}
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, mailer, contactCfg, nil, zap.NewNop())

	res, err := svc.Submit(context.Background(), validContact())
	require.NoError(t, err)

	assert.True(t, res.EmailSent)
	assert.Nil(t, res.EmailError)
	assert.Equal(t, DefaultContactSubject, res.Subject)
	assert.Equal(t, "EmailJS", res.Service)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "tpl_admin", mailer.sent[0].TemplateID)
	assert.Equal(t, "admin@ecolibres.mx", mailer.sent[0].Params["to_email"])
	assert.Equal(t, "ana@example.com", mailer.sent[0].Params["reply_to"])
	assert.Equal(t, "tpl_reply", mailer.sent[1].TemplateID)
	assert.Equal(t, "ana@example.com", mailer.sent[1].Params["to_email"])

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Ana", repo.created[0].Name)
	require.Len(t, repo.updated, 1)
	assert.True(t, repo.updated[0].EmailSent)
}

func TestContactService_EmailFailureDoesNotFail(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("quota exceeded")}
	repo := &fakeContactRepo{}
	svc := NewContactService(repo, mailer, contactCfg, nil, zap.NewNop())

	res, err := svc.Submit(context.Background(), validContact())
	require.NoError(t, err)

	assert.False(t, res.EmailSent)
	require.NotNil(t, res.EmailError)
	assert.Contains(t, *res.EmailError, "quota exceeded")
	require.Len(t, repo.updated, 1)
	assert.False(t, repo.updated[0].EmailSent)
}

func TestContactService_SimulatedWithoutMailer(t *testing.T) {
	svc := NewContactService(nil, nil, ContactConfig{}, nil, zap.NewNop())

	in := validContact()
	in.Subject = "Reservas"
	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, res.EmailSent)
	assert.Equal(t, "Reservas", res.Subject)
	assert.False(t, svc.EmailEnabled())
	assert.False(t, svc.InboxEnabled())
}

func TestContactService_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*ContactInput)
		field string
	}{
		{name: "missing name", edit: func(c *ContactInput) { c.Name = "" }, field: "nombre"},
		{name: "missing message", edit: func(c *ContactInput) { c.Message = "" }, field: "mensaje"},
		{name: "bad email", edit: func(c *ContactInput) { c.Email = "not-an-email" }, field: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			repo := &fakeContactRepo{}
			svc := NewContactService(repo, mailer, contactCfg, nil, zap.NewNop())

			in := validContact()
			tt.edit(&in)
			_, err := svc.Submit(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, mailer.sent)
			assert.Empty(t, repo.created)
		})
	}
}

func TestContactService_InboxFailureIsPersistenceError(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewContactService(&fakeContactRepo{err: errors.New("db down")}, mailer, contactCfg, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), validContact())
	require.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, mailer.sent)
}

func TestEmailJSMailer_Send(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	m := NewEmailJSMailer(EmailJSConfig{ServiceID: "svc", PublicKey: "pub", PrivateKey: "priv", Endpoint: srv.URL})
	err := m.Send(context.Background(), Email{TemplateID: "tpl", Params: map[string]string{"to_email": "a@b.co"}})
	require.NoError(t, err)

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "priv", got.AccessToken)
	assert.Equal(t, "a@b.co", got.TemplateParams["to_email"])
}

func TestEmailJSMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template ID is invalid\n"))
	}))
	defer srv.Close()

	m := NewEmailJSMailer(EmailJSConfig{ServiceID: "svc", Endpoint: srv.URL})
	err := m.Send(context.Background(), Email{TemplateID: "bad"})

	var ejErr *EmailJSError
	require.ErrorAs(t, err, &ejErr)
	assert.Equal(t, http.StatusBadRequest, ejErr.StatusCode)
	assert.True(t, strings.HasPrefix(ejErr.Body, "The template ID"))
}
