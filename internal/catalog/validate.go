package catalog

import "strings"

func validateCategory(cat Category) error {
	if cat == nil {
		return configErrorf("nil category")
	}
	name := cat.CategoryName()
	if strings.TrimSpace(name) == "" {
		return configErrorf("category name is empty")
	}

	switch c := cat.(type) {
	case *BusRouteCategory:
		return validateBus(c)
	case *StandardCategory:
		return validateStandard(c)
	case *CruiseShipCategory:
		return validateCruiseShip(c)
	case *KingstownTourCategory:
		return validateTour(c)
	default:
		return configErrorf("category %q has unsupported type %T", name, cat)
	}
}

func validateBus(c *BusRouteCategory) error {
	if len(c.Routes) == 0 {
		return configErrorf("category %q has no routes", c.Name)
	}
	seen := make(map[string]bool, len(c.Routes))
	for _, r := range c.Routes {
		if seen[r.Name] {
			return configErrorf("category %q lists route %q twice", c.Name, r.Name)
		}
		seen[r.Name] = true
		if r.FareEC <= 0 {
			return configErrorf("category %q route %q has non-positive fare", c.Name, r.Name)
		}
	}
	return nil
}

func validateStandard(c *StandardCategory) error {
	if len(c.Fares) == 0 {
		return configErrorf("category %q has no fares", c.Name)
	}
	seen := make(map[string]bool, len(c.Fares))
	for _, f := range c.Fares {
		if strings.TrimSpace(f.Place) == "" {
			return configErrorf("category %q has a fare without place", c.Name)
		}
		if seen[f.Place] {
			return configErrorf("category %q lists place %q twice", c.Name, f.Place)
		}
		seen[f.Place] = true
		if !positive(f.Regular, f.AfterHours) {
			return configErrorf("category %q place %q has non-positive rates", c.Name, f.Place)
		}
	}
	return nil
}

func validateCruiseShip(c *CruiseShipCategory) error {
	if len(c.Fares) == 0 {
		return configErrorf("category %q has no fares", c.Name)
	}
	byPlace := make(map[string][]PassengerRange)
	for _, f := range c.Fares {
		if strings.TrimSpace(f.Place) == "" {
			return configErrorf("category %q has a fare without place", c.Name)
		}
		if !positive(f.RegularOneWay, f.RegularReturn, f.AfterHoursOneWay) {
			return configErrorf("category %q place %q tier %q has non-positive rates", c.Name, f.Place, f.Passengers)
		}
		if err := checkTier(c.Name, f.Passengers, byPlace[f.Place]); err != nil {
			return err
		}
		byPlace[f.Place] = append(byPlace[f.Place], f.Passengers)
	}
	return nil
}

func validateTour(c *KingstownTourCategory) error {
	if len(c.Fares) == 0 {
		return configErrorf("category %q has no fares", c.Name)
	}
	var tiers []PassengerRange
	for _, f := range c.Fares {
		if !positive(f.RegularReturn, f.AfterHoursReturn) {
			return configErrorf("category %q tier %q has non-positive rates", c.Name, f.Passengers)
		}
		if err := checkTier(c.Name, f.Passengers, tiers); err != nil {
			return err
		}
		tiers = append(tiers, f.Passengers)
	}
	return nil
}

// checkTier rejects malformed tiers and tiers overlapping an earlier one in
// the same selection group.
func checkTier(category string, tier PassengerRange, earlier []PassengerRange) error {
	lo, hi, ok := tier.Bounds()
	if !ok {
		return configErrorf("category %q has malformed passenger tier %q", category, tier)
	}
	if lo < 1 || lo > hi {
		return configErrorf("category %q has empty passenger tier %q", category, tier)
	}
	for _, prev := range earlier {
		if tier.overlaps(prev) {
			return configErrorf("category %q passenger tiers %q and %q overlap", category, prev, tier)
		}
	}
	return nil
}

func positive(rates ...Rate) bool {
	for _, r := range rates {
		if r.EC <= 0 || r.US <= 0 {
			return false
		}
	}
	return true
}
