package handlers

import (
	"net/http"
	"net/url"

	"fare-estimator/internal/logger"
	"fare-estimator/internal/models"
)

const categoriesPathPrefix = "/api/categories/"

// FareHandler представляет обработчик каталога и расчёта стоимости
type FareHandler struct {
	service FareService
	log     *logger.Logger
}

// NewFareHandler создает новый обработчик тарифов
func NewFareHandler(service FareService, log *logger.Logger) *FareHandler {
	return &FareHandler{
		service: service,
		log:     log,
	}
}

// ListCategories возвращает категории для режима (?mode=bus|taxi, по умолчанию taxi)
func (h *FareHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	list, err := h.service.ListCategories(r.Context(), r.URL.Query().Get("mode"))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list categories")
		return
	}

	writeJSONResponse(w, http.StatusOK, list)
}

// GetCategory возвращает категорию с местами и тарифами по пассажирам
func (h *FareHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Имена категорий содержат пробелы и скобки, клиент их экранирует
	escaped, err := extractNameFromPath(r.URL.EscapedPath(), categoriesPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Category name is required")
		return
	}
	name, err := url.PathUnescape(escaped)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category name")
		return
	}

	detail, err := h.service.GetCategory(r.Context(), name)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get category")
		return
	}

	writeJSONResponse(w, http.StatusOK, detail)
}

// Estimate рассчитывает стоимость поездки по выбору пользователя
func (h *FareHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.EstimateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		h.log.WithError(err).Debug("Failed to decode estimate request")
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Estimate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to estimate fare")
		return
	}

	h.log.WithFields(map[string]interface{}{
		"quote_id": resp.QuoteID,
		"category": resp.Category,
		"result":   resp.Result,
	}).Info("Fare estimate served")

	writeJSONResponse(w, http.StatusOK, resp)
}
