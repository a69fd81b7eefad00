package fare

import (
	"fmt"
	"math"
	"strings"

	"fare-estimator/internal/catalog"
)

const unavailableDetails = "Fare information not available for current selection."

// Resolver рассчитывает стоимость поездки по категории каталога и выбору
// пользователя. Resolver не хранит состояния между вызовами, поэтому один
// экземпляр обслуживает любое число горутин.
type Resolver struct {
	policy Policy
}

// NewResolver создаёт резолвер с заданной политикой.
func NewResolver(policy Policy) (*Resolver, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	return &Resolver{policy: policy}, nil
}

// Policy возвращает политику, с которой создан резолвер.
func (r *Resolver) Policy() Policy { return r.policy }

// Resolve возвращает стоимость, неполный результат с пояснением или пустой
// результат, если выбирать ещё нечего. Ошибок нет: любые пробелы в каталоге
// превращаются в OutcomeIncomplete.
func (r *Resolver) Resolve(cat catalog.Category, sel Selection) Result {
	if cat == nil {
		return none()
	}
	sel = normalize(sel)

	switch c := cat.(type) {
	case *catalog.BusRouteCategory:
		return r.resolveBus(c, sel)
	case *catalog.StandardCategory:
		return r.resolveStandard(c, sel)
	case *catalog.CruiseShipCategory:
		return r.resolveCruiseShip(c, sel)
	case *catalog.KingstownTourCategory:
		return r.resolveTour(c, sel)
	default:
		return none()
	}
}

func normalize(sel Selection) Selection {
	if sel.Passengers < 1 {
		sel.Passengers = 1
	}
	if sel.TripType != TripReturn {
		sel.TripType = TripOneWay
	}
	if sel.Currency != CurrencyUS {
		sel.Currency = CurrencyEC
	}
	return sel
}

// Автобусный тариф всегда в одну сторону и хранится только в EC$.
func (r *Resolver) resolveBus(c *catalog.BusRouteCategory, sel Selection) Result {
	if sel.Item == "" {
		return none()
	}
	route, ok := c.Route(sel.Item)
	if !ok {
		return incomplete(sel.Currency, unavailableDetails)
	}

	ec, details := route.FareEC, "Bus fare."
	if sel.DiscountEligible {
		ec *= 0.5
		details = "Bus fare (School Child Discount)."
	}
	return r.priced(catalog.Rate{EC: ec}, sel.Currency, details, false)
}

func (r *Resolver) resolveStandard(c *catalog.StandardCategory, sel Selection) Result {
	if sel.Item == "" {
		return none()
	}
	row, ok := c.Fare(sel.Item)
	if !ok {
		return incomplete(sel.Currency, unavailableDetails)
	}

	base := row.Regular
	if sel.AfterHours {
		base = row.AfterHours
	}

	var details string
	switch c.Pricing {
	case catalog.PricingPerPassenger:
		base = base.Scale(float64(sel.Passengers))
		details = fmt.Sprintf("Per passenger rate. Total for %d passenger(s).", sel.Passengers)
	case catalog.PricingSmallGroup:
		limit := r.policy.SmallGroupMax
		details = fmt.Sprintf("Fare for 1-%d passengers.", limit)
		if sel.Passengers > limit {
			details += fmt.Sprintf(" Current selection: %d passengers; this rate is for 1-%d.", sel.Passengers, limit)
		}
	default:
		details = "Standard taxi rate."
	}

	// В каталоге нет отдельного тарифа обратно: поездка туда и обратно стоит вдвое больше.
	return r.directional(base, base.Scale(2), sel, details, false)
}

func (r *Resolver) resolveCruiseShip(c *catalog.CruiseShipCategory, sel Selection) Result {
	if sel.Item == "" {
		return none()
	}
	rows := c.FaresFor(sel.Item)
	if len(rows) == 0 {
		return incomplete(sel.Currency, unavailableDetails)
	}

	row, ok := firstCruiseShipMatch(rows, sel.Passengers)
	if !ok {
		return incomplete(sel.Currency, fmt.Sprintf(
			"No specific fare tier for %d passenger(s) for this selection. Available tiers for %s: %s. Please adjust passenger count or select an available tier.",
			sel.Passengers, sel.Item, strings.Join(catalog.CruiseShipTiers(rows), ", "),
		))
	}

	oneWay, ret := row.RegularOneWay, row.RegularReturn
	if sel.AfterHours {
		// Тарифа "после часов, туда и обратно" в каталоге нет, это оценка.
		oneWay, ret = row.AfterHoursOneWay, row.AfterHoursOneWay.Scale(2)
	}
	estimated := sel.AfterHours && sel.TripType == TripReturn

	var details string
	if r.isFlatTier(row.Passengers) {
		if estimated {
			details = "After-hours return estimated as 2x one-way. "
		}
		details += fmt.Sprintf("Fare for %s.", row.Passengers)
	} else {
		n := float64(sel.Passengers)
		oneWay, ret = oneWay.Scale(n), ret.Scale(n)
		if estimated {
			details = "After-hours return estimated as 2x one-way per passenger. "
		}
		details += fmt.Sprintf("Per passenger rate for %s. Total for %d passenger(s).", row.Passengers, sel.Passengers)
	}
	return r.directional(oneWay, ret, sel, details, estimated)
}

// Тур по Кингстауну продаётся только туда и обратно, выбор направления игнорируется.
func (r *Resolver) resolveTour(c *catalog.KingstownTourCategory, sel Selection) Result {
	row, ok := firstTourMatch(c.Fares, sel.Passengers)
	if !ok {
		if len(c.Fares) == 0 {
			return incomplete(sel.Currency, unavailableDetails)
		}
		return incomplete(sel.Currency, fmt.Sprintf(
			"No specific fare tier for %d passenger(s) for this tour. Available tiers: %s. Please adjust passenger count.",
			sel.Passengers, strings.Join(catalog.TourTiers(c.Fares), ", "),
		))
	}

	ret := row.RegularReturn
	if sel.AfterHours {
		ret = row.AfterHoursReturn
	}

	var details string
	if r.isFlatTier(row.Passengers) {
		details = fmt.Sprintf("Fare for %s. Tour (return trip).", row.Passengers)
	} else {
		ret = ret.Scale(float64(sel.Passengers))
		details = fmt.Sprintf("Per passenger rate for %s. Tour (return trip). Total for %d passenger(s).", row.Passengers, sel.Passengers)
	}
	return r.priced(ret, sel.Currency, afterHoursMarker(details, sel), false)
}

// directional выбирает пару тарифов по направлению и дописывает пометки,
// общие для такси.
func (r *Resolver) directional(oneWay, ret catalog.Rate, sel Selection, details string, estimated bool) Result {
	rate := oneWay
	if sel.TripType == TripReturn {
		rate = ret
		details += " (Return Trip)"
	} else {
		details += " (One-Way)"
	}
	return r.priced(rate, sel.Currency, afterHoursMarker(details, sel), estimated)
}

func afterHoursMarker(details string, sel Selection) string {
	if sel.AfterHours {
		return details + " (After hours)"
	}
	return details
}

// priced переводит тариф в запрошенную валюту. US-сумма берётся из каталога,
// а если её нет, считается по курсу.
func (r *Resolver) priced(rate catalog.Rate, currency Currency, details string, estimated bool) Result {
	amount := rate.EC
	if currency == CurrencyUS {
		amount = rate.US
		if amount == 0 {
			amount = rate.EC / r.policy.ECToUSRate
		}
	}
	return Result{
		Outcome:        OutcomeFare,
		Amount:         round2(amount),
		CurrencySymbol: currency.Symbol(),
		Details:        strings.TrimSpace(details),
		Estimated:      estimated,
	}
}

func (r *Resolver) isFlatTier(tier catalog.PassengerRange) bool {
	return strings.TrimSpace(string(tier)) == r.policy.FlatTier
}

// Первое совпадение в порядке каталога; пересекающиеся тарифы отсекаются при загрузке.
func firstCruiseShipMatch(rows []catalog.CruiseShipFare, passengers int) (catalog.CruiseShipFare, bool) {
	for _, row := range rows {
		if row.Passengers.Matches(passengers) {
			return row, true
		}
	}
	return catalog.CruiseShipFare{}, false
}

func firstTourMatch(rows []catalog.KingstownTourFare, passengers int) (catalog.KingstownTourFare, bool) {
	for _, row := range rows {
		if row.Passengers.Matches(passengers) {
			return row, true
		}
	}
	return catalog.KingstownTourFare{}, false
}

// round2 округляет до 2 знаков, половина округляется от нуля.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
