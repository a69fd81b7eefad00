package fare

import (
	"fmt"
	"strings"

	"fare-estimator/internal/apperror"
)

// Policy содержит именованные константы, от которых зависит расчёт.
type Policy struct {
	// ECToUSRate: фиксированный курс EC$ за 1 US$.
	ECToUSRate float64
	// FlatTier: тариф круизного причала и тура, который не умножается на число пассажиров.
	FlatTier string
	// SmallGroupMax: верхняя граница категорий "(1 to 3 Passengers)".
	SmallGroupMax int
}

// DefaultPolicy возвращает значения, под которые составлен встроенный каталог.
func DefaultPolicy() Policy {
	return Policy{
		ECToUSRate:    2.70,
		FlatTier:      "1 to 4",
		SmallGroupMax: 3,
	}
}

func (p Policy) validate() error {
	if p.ECToUSRate <= 0 {
		return apperror.Configuration("exchange rate must be positive", nil)
	}
	if strings.TrimSpace(p.FlatTier) == "" {
		return apperror.Configuration("flat tier label is empty", nil)
	}
	if p.SmallGroupMax < 1 {
		return apperror.Configuration("small group limit must be positive", nil)
	}
	return nil
}

type TripType string

const (
	TripOneWay TripType = "one_way"
	TripReturn TripType = "return"
)

// ParseTripType принимает "one_way" или "return"; пустое значение означает поездку в одну сторону.
func ParseTripType(s string) (TripType, bool) {
	switch TripType(strings.ToLower(strings.TrimSpace(s))) {
	case "", TripOneWay:
		return TripOneWay, true
	case TripReturn:
		return TripReturn, true
	default:
		return "", false
	}
}

type Currency string

const (
	CurrencyEC Currency = "EC"
	CurrencyUS Currency = "US"
)

// ParseCurrency принимает "EC" или "US" без учёта регистра; пустое значение означает EC.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case "", CurrencyEC:
		return CurrencyEC, true
	case CurrencyUS:
		return CurrencyUS, true
	default:
		return "", false
	}
}

// Symbol возвращает символ валюты для отображения.
func (c Currency) Symbol() string {
	if c == CurrencyUS {
		return "US$"
	}
	return "EC$"
}

// Selection описывает выбор пользователя внутри одной категории.
type Selection struct {
	Item             string
	Passengers       int
	AfterHours       bool
	TripType         TripType
	DiscountEligible bool
	Currency         Currency
}

// Validate проверяет выбор строго; Resolve сам по себе подставляет значения по умолчанию.
func (s Selection) Validate() error {
	if s.Passengers < 1 {
		return apperror.Validation(fmt.Sprintf("passengers must be at least 1, got %d", s.Passengers), nil)
	}
	if s.TripType != TripOneWay && s.TripType != TripReturn {
		return apperror.Validation(fmt.Sprintf("unknown trip type %q", s.TripType), nil)
	}
	if s.Currency != CurrencyEC && s.Currency != CurrencyUS {
		return apperror.Validation(fmt.Sprintf("unknown currency %q", s.Currency), nil)
	}
	return nil
}

type Outcome string

const (
	OutcomeNone       Outcome = "none"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeFare       Outcome = "fare"
)

// Result содержит итог расчёта. Для OutcomeIncomplete сумма всегда 0, а Details
// объясняет, чего не хватает. OutcomeNone означает, что показывать нечего.
type Result struct {
	Outcome        Outcome
	Amount         float64
	CurrencySymbol string
	Details        string
	// Estimated помечает сумму, выведенную из другого тарифа, а не взятую из каталога.
	Estimated bool
}

func none() Result { return Result{Outcome: OutcomeNone} }

func incomplete(c Currency, details string) Result {
	return Result{Outcome: OutcomeIncomplete, CurrencySymbol: c.Symbol(), Details: details}
}
