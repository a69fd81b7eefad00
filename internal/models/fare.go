package models

import (
	"time"

	"github.com/google/uuid"
)

// EstimateRequest представляет запрос на расчёт стоимости поездки
type EstimateRequest struct {
	Mode             string `json:"mode"`
	Category         string `json:"category"`
	Item             string `json:"item,omitempty"`
	Passengers       int    `json:"passengers"`
	AfterHours       bool   `json:"after_hours"`
	TripType         string `json:"trip_type,omitempty"`
	DiscountEligible bool   `json:"discount_eligible,omitempty"`
	Currency         string `json:"currency,omitempty"`
}

// EstimateResponse представляет результат расчёта
type EstimateResponse struct {
	QuoteID        uuid.UUID `json:"quote_id"`
	Result         string    `json:"result"`
	Amount         float64   `json:"amount"`
	CurrencySymbol string    `json:"currency_symbol,omitempty"`
	Details        string    `json:"details,omitempty"`
	Estimated      bool      `json:"estimated,omitempty"`
	Category       string    `json:"category"`
	Item           string    `json:"item,omitempty"`
	CatalogVersion string    `json:"catalog_version,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// CategorySummary представляет категорию в списке
type CategorySummary struct {
	Name               string `json:"name"`
	Mode               string `json:"mode"`
	Shape              string `json:"shape"`
	ItemKind           string `json:"item_kind,omitempty"` // route | place
	ItemCount          int    `json:"item_count"`
	TripTypeApplies    bool   `json:"trip_type_applies"`
	PassengersApply    bool   `json:"passengers_apply"`
	AfterHoursApplies  bool   `json:"after_hours_applies"`
	DiscountApplies    bool   `json:"discount_applies"`
	PassengerTierBased bool   `json:"passenger_tier_based"`
}

// CategoryDetail представляет категорию с вариантами выбора
type CategoryDetail struct {
	CategorySummary
	Items []string `json:"items"`
	// TiersByItem: тарифы по числу пассажиров для каждого места (круизный причал)
	TiersByItem map[string][]string `json:"tiers_by_item,omitempty"`
	// Tiers: тарифы по числу пассажиров для тура
	Tiers []string `json:"tiers,omitempty"`
}

// CategoryList представляет ответ со списком категорий
type CategoryList struct {
	Mode           string            `json:"mode"`
	CatalogVersion string            `json:"catalog_version,omitempty"`
	Categories     []CategorySummary `json:"categories"`
}
