package catalog

import (
	"fmt"
	"strings"

	"fare-estimator/internal/apperror"
)

// Labels are the reserved category names and suffixes that decide which
// shape and pricing policy a category gets when its source does not say so.
type Labels struct {
	CruiseShipPrefix   string
	KingstownTourName  string
	PerPassengerSuffix string
	SmallGroupSuffix   string
}

// DefaultLabels returns the labels used by the bundled rate table.
func DefaultLabels() Labels {
	return Labels{
		CruiseShipPrefix:   "From Cruise Ship Berth",
		KingstownTourName:  "Tours around Kingstown (Minimum of two (2) hours)",
		PerPassengerSuffix: "(Per Passenger)",
		SmallGroupSuffix:   "(1 to 3 Passengers)",
	}
}

// CategorySpec is the source-neutral form of a category as it is stored in a
// catalog file or database, before its shape is decided.
type CategorySpec struct {
	Category string      `yaml:"category"`
	Shape    string      `yaml:"shape,omitempty"`
	Routes   []RouteSpec `yaml:"routes,omitempty"`
	Fares    []FareSpec  `yaml:"fares,omitempty"`
}

type RouteSpec struct {
	Name   string   `yaml:"name"`
	FareEC *float64 `yaml:"fare_ec"`
}

// FareSpec carries every field any taxi row shape can have. Which fields must
// be present depends on the category shape.
type FareSpec struct {
	Place            *string  `yaml:"place,omitempty"`
	DistanceCategory *string  `yaml:"distance_category,omitempty"`
	Passengers       *string  `yaml:"passengers,omitempty"`
	RegularEC        *float64 `yaml:"regular_ec,omitempty"`
	RegularUS        *float64 `yaml:"regular_us,omitempty"`
	AfterHoursEC     *float64 `yaml:"after_hours_ec,omitempty"`
	AfterHoursUS     *float64 `yaml:"after_hours_us,omitempty"`

	RegularOneWayEC    *float64 `yaml:"regular_one_way_ec,omitempty"`
	RegularOneWayUS    *float64 `yaml:"regular_one_way_us,omitempty"`
	RegularReturnEC    *float64 `yaml:"regular_return_ec,omitempty"`
	RegularReturnUS    *float64 `yaml:"regular_return_us,omitempty"`
	AfterHoursOneWayEC *float64 `yaml:"after_hours_one_way_ec,omitempty"`
	AfterHoursOneWayUS *float64 `yaml:"after_hours_one_way_us,omitempty"`
	AfterHoursReturnEC *float64 `yaml:"after_hours_return_ec,omitempty"`
	AfterHoursReturnUS *float64 `yaml:"after_hours_return_us,omitempty"`
}

// Build turns specs into a validated catalog. Any shape problem is a
// configuration error: the service must not start on a broken rate table.
func Build(version string, specs []CategorySpec, labels Labels) (*Catalog, error) {
	categories := make([]Category, 0, len(specs))
	for i, spec := range specs {
		cat, err := buildCategory(spec, labels)
		if err != nil {
			return nil, apperror.Configuration(fmt.Sprintf("catalog category #%d: %s", i+1, err.Error()), err)
		}
		categories = append(categories, cat)
	}
	return New(version, categories)
}

func buildCategory(spec CategorySpec, labels Labels) (Category, error) {
	name := strings.TrimSpace(spec.Category)
	if name == "" {
		return nil, configErrorf("category name is empty")
	}

	hasRoutes, hasFares := len(spec.Routes) > 0, len(spec.Fares) > 0
	switch {
	case hasRoutes && hasFares:
		return nil, configErrorf("category %q has both routes and fares", name)
	case !hasRoutes && !hasFares:
		return nil, configErrorf("category %q has neither routes nor fares", name)
	}

	shape, err := classify(name, spec, labels)
	if err != nil {
		return nil, err
	}

	switch shape {
	case ShapeBusRoute:
		return buildBus(name, spec.Routes)
	case ShapeStandard:
		return buildStandard(name, spec.Fares, labels)
	case ShapeCruiseShip:
		return buildCruiseShip(name, spec.Fares)
	default:
		return buildTour(name, spec.Fares)
	}
}

// classify honours an explicit shape and otherwise falls back to the
// reserved labels.
func classify(name string, spec CategorySpec, labels Labels) (Shape, error) {
	if len(spec.Routes) > 0 {
		if spec.Shape != "" && Shape(spec.Shape) != ShapeBusRoute {
			return "", configErrorf("category %q has routes but shape %q", name, spec.Shape)
		}
		return ShapeBusRoute, nil
	}

	if spec.Shape != "" {
		switch s := Shape(spec.Shape); s {
		case ShapeStandard, ShapeCruiseShip, ShapeKingstownTour:
			return s, nil
		default:
			return "", configErrorf("category %q has unknown fare shape %q", name, spec.Shape)
		}
	}

	switch {
	case labels.KingstownTourName != "" && name == labels.KingstownTourName:
		return ShapeKingstownTour, nil
	case labels.CruiseShipPrefix != "" && strings.HasPrefix(name, labels.CruiseShipPrefix):
		return ShapeCruiseShip, nil
	default:
		return ShapeStandard, nil
	}
}

func buildBus(name string, routes []RouteSpec) (*BusRouteCategory, error) {
	cat := &BusRouteCategory{Name: name, Routes: make([]BusRoute, 0, len(routes))}
	for i, r := range routes {
		if strings.TrimSpace(r.Name) == "" {
			return nil, configErrorf("category %q route #%d has no name", name, i+1)
		}
		if r.FareEC == nil {
			return nil, configErrorf("category %q route %q has no fare_ec", name, r.Name)
		}
		cat.Routes = append(cat.Routes, BusRoute{Name: r.Name, FareEC: *r.FareEC})
	}
	return cat, nil
}

func buildStandard(name string, fares []FareSpec, labels Labels) (*StandardCategory, error) {
	cat := &StandardCategory{Name: name, Pricing: PricingFlat, Fares: make([]StandardFare, 0, len(fares))}
	switch {
	case labels.PerPassengerSuffix != "" && strings.HasSuffix(name, labels.PerPassengerSuffix):
		cat.Pricing = PricingPerPassenger
	case labels.SmallGroupSuffix != "" && strings.HasSuffix(name, labels.SmallGroupSuffix):
		cat.Pricing = PricingSmallGroup
	}

	for i, f := range fares {
		row := rowCheck{category: name, index: i + 1, fare: f}
		row.require("place", f.Place != nil)
		row.require("regular_ec", f.RegularEC != nil)
		row.require("regular_us", f.RegularUS != nil)
		row.require("after_hours_ec", f.AfterHoursEC != nil)
		row.require("after_hours_us", f.AfterHoursUS != nil)
		row.forbid("passengers", f.Passengers != nil)
		row.forbidTierRates()
		if row.err != nil {
			return nil, row.err
		}
		out := StandardFare{
			Place:      *f.Place,
			Regular:    Rate{EC: *f.RegularEC, US: *f.RegularUS},
			AfterHours: Rate{EC: *f.AfterHoursEC, US: *f.AfterHoursUS},
		}
		if f.DistanceCategory != nil {
			out.DistanceCategory = *f.DistanceCategory
		}
		cat.Fares = append(cat.Fares, out)
	}
	return cat, nil
}

func buildCruiseShip(name string, fares []FareSpec) (*CruiseShipCategory, error) {
	cat := &CruiseShipCategory{Name: name, Fares: make([]CruiseShipFare, 0, len(fares))}
	for i, f := range fares {
		row := rowCheck{category: name, index: i + 1, fare: f}
		row.require("place", f.Place != nil)
		row.require("passengers", f.Passengers != nil)
		row.require("regular_one_way_ec", f.RegularOneWayEC != nil)
		row.require("regular_one_way_us", f.RegularOneWayUS != nil)
		row.require("regular_return_ec", f.RegularReturnEC != nil)
		row.require("regular_return_us", f.RegularReturnUS != nil)
		row.require("after_hours_one_way_ec", f.AfterHoursOneWayEC != nil)
		row.require("after_hours_one_way_us", f.AfterHoursOneWayUS != nil)
		row.forbid("after_hours_return_ec", f.AfterHoursReturnEC != nil)
		row.forbid("after_hours_return_us", f.AfterHoursReturnUS != nil)
		row.forbidStandardRates()
		if row.err != nil {
			return nil, row.err
		}
		cat.Fares = append(cat.Fares, CruiseShipFare{
			Place:            *f.Place,
			Passengers:       PassengerRange(*f.Passengers),
			RegularOneWay:    Rate{EC: *f.RegularOneWayEC, US: *f.RegularOneWayUS},
			RegularReturn:    Rate{EC: *f.RegularReturnEC, US: *f.RegularReturnUS},
			AfterHoursOneWay: Rate{EC: *f.AfterHoursOneWayEC, US: *f.AfterHoursOneWayUS},
		})
	}
	return cat, nil
}

func buildTour(name string, fares []FareSpec) (*KingstownTourCategory, error) {
	cat := &KingstownTourCategory{Name: name, Fares: make([]KingstownTourFare, 0, len(fares))}
	for i, f := range fares {
		row := rowCheck{category: name, index: i + 1, fare: f}
		row.require("passengers", f.Passengers != nil)
		row.require("regular_return_ec", f.RegularReturnEC != nil)
		row.require("regular_return_us", f.RegularReturnUS != nil)
		row.require("after_hours_return_ec", f.AfterHoursReturnEC != nil)
		row.require("after_hours_return_us", f.AfterHoursReturnUS != nil)
		row.forbid("place", f.Place != nil)
		row.forbid("regular_one_way_ec", f.RegularOneWayEC != nil)
		row.forbid("regular_one_way_us", f.RegularOneWayUS != nil)
		row.forbid("after_hours_one_way_ec", f.AfterHoursOneWayEC != nil)
		row.forbid("after_hours_one_way_us", f.AfterHoursOneWayUS != nil)
		row.forbidStandardRates()
		if row.err != nil {
			return nil, row.err
		}
		cat.Fares = append(cat.Fares, KingstownTourFare{
			Passengers:       PassengerRange(*f.Passengers),
			RegularReturn:    Rate{EC: *f.RegularReturnEC, US: *f.RegularReturnUS},
			AfterHoursReturn: Rate{EC: *f.AfterHoursReturnEC, US: *f.AfterHoursReturnUS},
		})
	}
	return cat, nil
}

// rowCheck collects the first field problem of one fare row.
type rowCheck struct {
	category string
	index    int
	fare     FareSpec
	err      error
}

func (c *rowCheck) require(field string, present bool) {
	if c.err == nil && !present {
		c.err = configErrorf("category %q fare #%d is missing %s", c.category, c.index, field)
	}
}

func (c *rowCheck) forbid(field string, present bool) {
	if c.err == nil && present {
		c.err = configErrorf("category %q fare #%d has unexpected field %s", c.category, c.index, field)
	}
}

func (c *rowCheck) forbidStandardRates() {
	c.forbid("regular_ec", c.fare.RegularEC != nil)
	c.forbid("regular_us", c.fare.RegularUS != nil)
	c.forbid("after_hours_ec", c.fare.AfterHoursEC != nil)
	c.forbid("after_hours_us", c.fare.AfterHoursUS != nil)
}

func (c *rowCheck) forbidTierRates() {
	c.forbid("regular_one_way_ec", c.fare.RegularOneWayEC != nil)
	c.forbid("regular_one_way_us", c.fare.RegularOneWayUS != nil)
	c.forbid("regular_return_ec", c.fare.RegularReturnEC != nil)
	c.forbid("regular_return_us", c.fare.RegularReturnUS != nil)
	c.forbid("after_hours_one_way_ec", c.fare.AfterHoursOneWayEC != nil)
	c.forbid("after_hours_one_way_us", c.fare.AfterHoursOneWayUS != nil)
	c.forbid("after_hours_return_ec", c.fare.AfterHoursReturnEC != nil)
	c.forbid("after_hours_return_us", c.fare.AfterHoursReturnUS != nil)
}

func configErrorf(format string, args ...interface{}) error {
	return apperror.Configuration(fmt.Sprintf(format, args...), nil)
}
