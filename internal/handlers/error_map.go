package handlers

import (
	"net/http"

	"fare-estimator/internal/apperror"
	"fare-estimator/internal/logger"
)

// writeServiceError переводит ошибку сервиса в HTTP-ответ. Ошибки конфигурации
// и всё неизвестное скрываются за internalMessage.
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	switch {
	case apperror.Is(err, apperror.KindNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case apperror.Is(err, apperror.KindValidation):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
	}
}
