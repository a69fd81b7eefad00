package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события
type EventType string

const (
	EventTypeFareQuoted    EventType = "fare.quoted"
	EventTypeCatalogLoaded EventType = "catalog.loaded"
)

// Event представляет событие, публикуемое в Kafka
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// FareQuotedData представляет данные события расчёта стоимости
type FareQuotedData struct {
	QuoteID        uuid.UUID `json:"quote_id"`
	Mode           string    `json:"mode"`
	Category       string    `json:"category"`
	Shape          string    `json:"shape"`
	Item           string    `json:"item,omitempty"`
	Passengers     int       `json:"passengers"`
	AfterHours     bool      `json:"after_hours"`
	TripType       string    `json:"trip_type"`
	Currency       string    `json:"currency"`
	Result         string    `json:"result"`
	Amount         float64   `json:"amount"`
	CatalogVersion string    `json:"catalog_version,omitempty"`
}

// CatalogLoadedData представляет данные события загрузки каталога
type CatalogLoadedData struct {
	Source     string `json:"source"`
	Version    string `json:"version"`
	Categories int    `json:"categories"`
	BusCount   int    `json:"bus_categories"`
	TaxiCount  int    `json:"taxi_categories"`
}
