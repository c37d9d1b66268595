package routes

import (
	"errors"
	"net/http"

	"ecolibres-backend/app/service"
	"ecolibres-backend/middleware"
	"ecolibres-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFoundMessages = map[string]string{
	"user":  "Usuario no encontrado",
	"route": "Ruta no encontrada",
}

// respondError memetakan error service ke status HTTP.
// Detail error persistence hanya dicatat di log, tidak dikirim ke client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var (
		verr *service.ValidationError
		nf   *service.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, utils.BuildResponseFailed("Datos inválidos", verr.Fields))
	case errors.As(err, &nf):
		msg, ok := notFoundMessages[nf.Resource]
		if !ok {
			msg = "Recurso no encontrado"
		}
		c.JSON(http.StatusNotFound, utils.BuildResponseFailed(msg, nil))
	default:
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, utils.BuildResponseFailed("Error interno del servidor", nil))
	}
}

// respondBindError dipakai ketika body JSON tidak bisa dibaca.
func respondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, utils.BuildResponseFailed("El cuerpo de la petición es demasiado grande", nil))
		return
	}
	c.JSON(http.StatusBadRequest, utils.BuildResponseFailed("JSON inválido", err.Error()))
}
