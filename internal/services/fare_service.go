package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fare-estimator/internal/apperror"
	"fare-estimator/internal/catalog"
	"fare-estimator/internal/fare"
	"fare-estimator/internal/logger"
	"fare-estimator/internal/models"

	"github.com/google/uuid"
)

// QuotePublisher отправляет события о расчётах. nil отключает публикацию.
type QuotePublisher interface {
	PublishFareQuoted(data models.FareQuotedData) error
}

// EstimateMetrics учитывает расчёты. nil отключает метрики.
type EstimateMetrics interface {
	ObserveEstimate(shape, outcome, currency string, amount float64)
	PublishFailed()
}

// FareService отвечает на запросы к каталогу и рассчитывает стоимость поездок
type FareService struct {
	catalog  *catalog.Catalog
	resolver *fare.Resolver
	producer QuotePublisher
	metrics  EstimateMetrics
	log      *logger.Logger
	now      func() time.Time
}

// NewFareService создает новый сервис тарифов
func NewFareService(cat *catalog.Catalog, resolver *fare.Resolver, producer QuotePublisher, m EstimateMetrics, log *logger.Logger) *FareService {
	return &FareService{
		catalog:  cat,
		resolver: resolver,
		producer: producer,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ListCategories возвращает категории режима в порядке каталога. Пустой режим означает такси.
func (s *FareService) ListCategories(ctx context.Context, mode string) (*models.CategoryList, error) {
	m, err := parseMode(mode, catalog.ModeTaxi)
	if err != nil {
		return nil, err
	}

	categories := s.catalog.ListCategories(m)
	out := &models.CategoryList{
		Mode:           string(m),
		CatalogVersion: s.catalog.Version(),
		Categories:     make([]models.CategorySummary, 0, len(categories)),
	}
	for _, c := range categories {
		out.Categories = append(out.Categories, summarize(c))
	}
	return out, nil
}

// GetCategory возвращает категорию с вариантами выбора и тарифами по числу пассажиров
func (s *FareService) GetCategory(ctx context.Context, name string) (*models.CategoryDetail, error) {
	c, ok := s.catalog.FindCategory(name)
	if !ok {
		return nil, apperror.NotFound(fmt.Sprintf("category %q not found", name), nil)
	}

	detail := &models.CategoryDetail{
		CategorySummary: summarize(c),
		Items:           catalog.Items(c),
	}
	if detail.Items == nil {
		detail.Items = []string{}
	}

	switch cat := c.(type) {
	case *catalog.CruiseShipCategory:
		detail.TiersByItem = make(map[string][]string, len(detail.Items))
		for _, place := range detail.Items {
			detail.TiersByItem[place] = catalog.CruiseShipTiers(cat.FaresFor(place))
		}
	case *catalog.KingstownTourCategory:
		detail.Tiers = catalog.TourTiers(cat.Fares)
	}
	return detail, nil
}

// Estimate проверяет запрос, рассчитывает стоимость и публикует событие расчёта.
// Неполный выбор — это нормальный ответ (result=incomplete), а не ошибка.
func (s *FareService) Estimate(ctx context.Context, req *models.EstimateRequest) (*models.EstimateResponse, error) {
	if req == nil {
		return nil, apperror.Validation("request body is required", nil)
	}
	name := strings.TrimSpace(req.Category)
	if name == "" {
		return nil, apperror.Validation("category is required", nil)
	}

	c, ok := s.catalog.FindCategory(name)
	if !ok {
		return nil, apperror.NotFound(fmt.Sprintf("category %q not found", name), nil)
	}
	if req.Mode != "" {
		m, err := parseMode(req.Mode, c.Mode())
		if err != nil {
			return nil, err
		}
		if m != c.Mode() {
			return nil, apperror.NotFound(fmt.Sprintf("category %q not found for mode %s", name, m), nil)
		}
	}

	sel, err := selectionFrom(req)
	if err != nil {
		return nil, err
	}

	res := s.resolver.Resolve(c, sel)
	resp := &models.EstimateResponse{
		QuoteID:        uuid.New(),
		Result:         string(res.Outcome),
		Amount:         res.Amount,
		CurrencySymbol: res.CurrencySymbol,
		Details:        res.Details,
		Estimated:      res.Estimated,
		Category:       name,
		Item:           sel.Item,
		CatalogVersion: s.catalog.Version(),
		GeneratedAt:    s.now().UTC(),
	}

	if s.metrics != nil {
		s.metrics.ObserveEstimate(string(c.Shape()), resp.Result, string(sel.Currency), resp.Amount)
	}
	s.publish(c, sel, resp)

	s.log.WithFields(map[string]interface{}{
		"quote_id":   resp.QuoteID,
		"category":   name,
		"item":       sel.Item,
		"passengers": sel.Passengers,
		"result":     resp.Result,
		"amount":     resp.Amount,
	}).Debug("Fare estimated")

	return resp, nil
}

// publish не влияет на ответ: ошибка отправки только логируется.
func (s *FareService) publish(c catalog.Category, sel fare.Selection, resp *models.EstimateResponse) {
	if s.producer == nil {
		return
	}
	data := models.FareQuotedData{
		QuoteID:        resp.QuoteID,
		Mode:           string(c.Mode()),
		Category:       resp.Category,
		Shape:          string(c.Shape()),
		Item:           sel.Item,
		Passengers:     sel.Passengers,
		AfterHours:     sel.AfterHours,
		TripType:       string(sel.TripType),
		Currency:       string(sel.Currency),
		Result:         resp.Result,
		Amount:         resp.Amount,
		CatalogVersion: resp.CatalogVersion,
	}
	if err := s.producer.PublishFareQuoted(data); err != nil {
		s.log.WithError(err).WithField("quote_id", resp.QuoteID).Warn("Failed to publish fare quoted event")
		if s.metrics != nil {
			s.metrics.PublishFailed()
		}
	}
}

func selectionFrom(req *models.EstimateRequest) (fare.Selection, error) {
	trip, ok := fare.ParseTripType(req.TripType)
	if !ok {
		return fare.Selection{}, apperror.Validation(fmt.Sprintf("unknown trip type %q, expected one_way or return", req.TripType), nil)
	}
	currency, ok := fare.ParseCurrency(req.Currency)
	if !ok {
		return fare.Selection{}, apperror.Validation(fmt.Sprintf("unknown currency %q, expected EC or US", req.Currency), nil)
	}

	sel := fare.Selection{
		Item:             strings.TrimSpace(req.Item),
		Passengers:       req.Passengers,
		AfterHours:       req.AfterHours,
		TripType:         trip,
		DiscountEligible: req.DiscountEligible,
		Currency:         currency,
	}
	if err := sel.Validate(); err != nil {
		return fare.Selection{}, err
	}
	return sel, nil
}

func parseMode(s string, fallback catalog.Mode) (catalog.Mode, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	m, ok := catalog.ParseMode(s)
	if !ok {
		return "", apperror.Validation(fmt.Sprintf("unknown mode %q, expected bus or taxi", s), nil)
	}
	return m, nil
}

// summarize описывает, какие параметры выбора применимы к категории.
func summarize(c catalog.Category) models.CategorySummary {
	sum := models.CategorySummary{
		Name:  c.CategoryName(),
		Mode:  string(c.Mode()),
		Shape: string(c.Shape()),
	}

	switch cat := c.(type) {
	case *catalog.BusRouteCategory:
		sum.ItemKind = "route"
		sum.ItemCount = len(cat.Routes)
		sum.DiscountApplies = true
	case *catalog.StandardCategory:
		sum.ItemKind = "place"
		sum.ItemCount = len(catalog.Items(cat))
		sum.TripTypeApplies = true
		sum.AfterHoursApplies = true
		sum.PassengersApply = cat.Pricing != catalog.PricingFlat
	case *catalog.CruiseShipCategory:
		sum.ItemKind = "place"
		sum.ItemCount = len(catalog.Items(cat))
		sum.TripTypeApplies = true
		sum.AfterHoursApplies = true
		sum.PassengersApply = true
		sum.PassengerTierBased = true
	case *catalog.KingstownTourCategory:
		sum.AfterHoursApplies = true
		sum.PassengersApply = true
		sum.PassengerTierBased = true
	}
	return sum
}
