package routes

import (
	"context"
	"net/http"
	"time"

	"ecolibres-backend/app/service"
	"ecolibres-backend/middleware"
	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactHandler menangani form kontak.
type ContactHandler struct {
	contactService service.ContactService
	log            *zap.Logger
	timeout        time.Duration
}

func NewContactHandler(contactService service.ContactService, log *zap.Logger, timeout time.Duration) *ContactHandler {
	return &ContactHandler{contactService: contactService, log: log, timeout: timeout}
}

func (h *ContactHandler) SetupContactRoutes(r gin.IRouter) {
	r.POST("/api/contacto", h.Submit)
}

// Submit menyimpan pesan dan meneruskannya lewat email.
// Kegagalan email dilaporkan di data.emailError, bukan sebagai error HTTP.
func (h *ContactHandler) Submit(c *gin.Context) {
	var input service.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		// admin + auto-reply: dua panggilan EmailJS berurutan
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*h.timeout)
		defer cancel()
	}

	result, err := h.contactService.Submit(ctx, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middleware.IncrementContactMessages(result.EmailSent)

	c.JSON(http.StatusOK, utils.BuildResponseSuccess(
		"¡Mensaje enviado correctamente! Te contactaremos en menos de 24 horas.",
		gin.H{"data": result},
	))
}
