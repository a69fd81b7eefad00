// Package catalog holds the immutable fare rate table: bus routes and the three
// shapes of taxi fare rows, loaded once at startup.
package catalog

import "strings"

// Mode is the transport mode a category belongs to.
type Mode string

const (
	ModeBus  Mode = "bus"
	ModeTaxi Mode = "taxi"
)

// ParseMode accepts "bus" or "taxi" in any case.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBus:
		return ModeBus, true
	case ModeTaxi:
		return ModeTaxi, true
	}
	return "", false
}

// Shape identifies which variant of Category a value is.
type Shape string

const (
	ShapeBusRoute      Shape = "bus_route"
	ShapeStandard      Shape = "standard"
	ShapeCruiseShip    Shape = "cruise_ship"
	ShapeKingstownTour Shape = "kingstown_tour"
)

// Category is one named group of fare rows. The concrete type is one of
// *BusRouteCategory, *StandardCategory, *CruiseShipCategory or
// *KingstownTourCategory and is fixed when the catalog is built.
type Category interface {
	CategoryName() string
	Shape() Shape
	Mode() Mode
	isCategory()
}

// Rate is an EC dollar amount with its catalog-supplied US dollar equivalent.
type Rate struct {
	EC float64
	US float64
}

// Scale multiplies both currencies by n.
func (r Rate) Scale(n float64) Rate {
	return Rate{EC: r.EC * n, US: r.US * n}
}

type BusRoute struct {
	Name   string
	FareEC float64
}

type BusRouteCategory struct {
	Name   string
	Routes []BusRoute
}

func (c *BusRouteCategory) CategoryName() string { return c.Name }
func (c *BusRouteCategory) Shape() Shape         { return ShapeBusRoute }
func (c *BusRouteCategory) Mode() Mode           { return ModeBus }
func (c *BusRouteCategory) isCategory()          {}

// Route finds a route by exact name.
func (c *BusRouteCategory) Route(name string) (BusRoute, bool) {
	for _, r := range c.Routes {
		if r.Name == name {
			return r, true
		}
	}
	return BusRoute{}, false
}

// GroupPricing says how a standard taxi fare reacts to the passenger count.
type GroupPricing int

const (
	// PricingFlat is one rate for the whole car.
	PricingFlat GroupPricing = iota
	// PricingPerPassenger multiplies the rate by the passenger count.
	PricingPerPassenger
	// PricingSmallGroup is a flat rate quoted for small groups only; larger
	// groups still get the flat rate plus an informational note.
	PricingSmallGroup
)

func (p GroupPricing) String() string {
	switch p {
	case PricingPerPassenger:
		return "per_passenger"
	case PricingSmallGroup:
		return "small_group"
	default:
		return "flat"
	}
}

type StandardFare struct {
	Place            string
	DistanceCategory string
	Regular          Rate
	AfterHours       Rate
}

type StandardCategory struct {
	Name    string
	Pricing GroupPricing
	Fares   []StandardFare
}

func (c *StandardCategory) CategoryName() string { return c.Name }
func (c *StandardCategory) Shape() Shape         { return ShapeStandard }
func (c *StandardCategory) Mode() Mode           { return ModeTaxi }
func (c *StandardCategory) isCategory()          {}

// Fare finds the row for a destination by exact place name.
func (c *StandardCategory) Fare(place string) (StandardFare, bool) {
	for _, f := range c.Fares {
		if f.Place == place {
			return f, true
		}
	}
	return StandardFare{}, false
}

// CruiseShipFare has no after-hours return figure; callers derive it from the
// after-hours one-way rate.
type CruiseShipFare struct {
	Place            string
	Passengers       PassengerRange
	RegularOneWay    Rate
	RegularReturn    Rate
	AfterHoursOneWay Rate
}

type CruiseShipCategory struct {
	Name  string
	Fares []CruiseShipFare
}

func (c *CruiseShipCategory) CategoryName() string { return c.Name }
func (c *CruiseShipCategory) Shape() Shape         { return ShapeCruiseShip }
func (c *CruiseShipCategory) Mode() Mode           { return ModeTaxi }
func (c *CruiseShipCategory) isCategory()          {}

// FaresFor returns the passenger tiers for one destination in catalog order.
func (c *CruiseShipCategory) FaresFor(place string) []CruiseShipFare {
	var out []CruiseShipFare
	for _, f := range c.Fares {
		if f.Place == place {
			out = append(out, f)
		}
	}
	return out
}

// KingstownTourFare is priced for a return trip only.
type KingstownTourFare struct {
	Passengers       PassengerRange
	RegularReturn    Rate
	AfterHoursReturn Rate
}

type KingstownTourCategory struct {
	Name  string
	Fares []KingstownTourFare
}

func (c *KingstownTourCategory) CategoryName() string { return c.Name }
func (c *KingstownTourCategory) Shape() Shape         { return ShapeKingstownTour }
func (c *KingstownTourCategory) Mode() Mode           { return ModeTaxi }
func (c *KingstownTourCategory) isCategory()          {}

// Catalog is the validated, read-only rate table. It is safe for concurrent
// use because nothing mutates it after New returns.
type Catalog struct {
	version    string
	categories []Category
	byName     map[string]Category
}

// New validates the categories and builds a catalog that keeps their order.
func New(version string, categories []Category) (*Catalog, error) {
	c := &Catalog{
		version:    version,
		categories: make([]Category, 0, len(categories)),
		byName:     make(map[string]Category, len(categories)),
	}
	for _, cat := range categories {
		if err := validateCategory(cat); err != nil {
			return nil, err
		}
		name := cat.CategoryName()
		if _, dup := c.byName[name]; dup {
			return nil, configErrorf("duplicate category %q", name)
		}
		c.byName[name] = cat
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Version is the data version recorded in the catalog source.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of categories.
func (c *Catalog) Len() int { return len(c.categories) }

// Categories returns every category in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ListCategories returns the categories for a mode in display order: bus
// routes for ModeBus, taxi fares for ModeTaxi.
func (c *Catalog) ListCategories(mode Mode) []Category {
	var out []Category
	for _, cat := range c.categories {
		if cat.Mode() == mode {
			out = append(out, cat)
		}
	}
	return out
}

// FindCategory looks a category up by its display name.
func (c *Catalog) FindCategory(name string) (Category, bool) {
	cat, ok := c.byName[name]
	return cat, ok
}

// Items returns what a caller selects within a category: route names for bus
// categories, unique places (first occurrence order) for standard and cruise
// ship categories, nothing for tours.
func Items(cat Category) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	switch c := cat.(type) {
	case *BusRouteCategory:
		for _, r := range c.Routes {
			add(r.Name)
		}
	case *StandardCategory:
		for _, f := range c.Fares {
			add(f.Place)
		}
	case *CruiseShipCategory:
		for _, f := range c.Fares {
			add(f.Place)
		}
	}
	return out
}
