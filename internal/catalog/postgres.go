package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"fare-estimator/internal/apperror"
)

// Querier is the part of *sql.DB the Postgres source needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

const (
	selectCategoriesSQL = `
		SELECT name, COALESCE(shape, ''), version
		FROM fare_categories
		ORDER BY position, name
	`
	selectRoutesSQL = `
		SELECT category, name, fare_ec
		FROM bus_routes
		ORDER BY category, position
	`
	selectTaxiFaresSQL = `
		SELECT category, place, distance_category, passengers,
			regular_ec, regular_us, after_hours_ec, after_hours_us,
			regular_one_way_ec, regular_one_way_us, regular_return_ec, regular_return_us,
			after_hours_one_way_ec, after_hours_one_way_us, after_hours_return_ec, after_hours_return_us
		FROM taxi_fares
		ORDER BY category, position
	`
)

// LoadPostgres reads the rate table from the fare_categories, bus_routes and
// taxi_fares tables and builds it with the same rules as a catalog file.
func LoadPostgres(ctx context.Context, db Querier, labels Labels) (*Catalog, error) {
	specs, index, version, err := loadCategoryRows(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, apperror.Configuration("catalog has no categories", nil)
	}

	if err := loadRouteRows(ctx, db, specs, index); err != nil {
		return nil, err
	}
	if err := loadTaxiRows(ctx, db, specs, index); err != nil {
		return nil, err
	}

	return Build(version, specs, labels)
}

func loadCategoryRows(ctx context.Context, db Querier) ([]CategorySpec, map[string]int, string, error) {
	rows, err := db.QueryContext(ctx, selectCategoriesSQL)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to query fare categories: %w", err)
	}
	defer rows.Close()

	var (
		specs   []CategorySpec
		version string
	)
	index := make(map[string]int)
	for rows.Next() {
		var name, shape, rowVersion string
		if err := rows.Scan(&name, &shape, &rowVersion); err != nil {
			return nil, nil, "", fmt.Errorf("failed to scan fare category: %w", err)
		}
		if _, dup := index[name]; dup {
			return nil, nil, "", configErrorf("duplicate category %q", name)
		}
		if rowVersion > version {
			version = rowVersion
		}
		index[name] = len(specs)
		specs = append(specs, CategorySpec{Category: name, Shape: shape})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, "", fmt.Errorf("failed to iterate fare categories: %w", err)
	}
	return specs, index, version, nil
}

func loadRouteRows(ctx context.Context, db Querier, specs []CategorySpec, index map[string]int) error {
	rows, err := db.QueryContext(ctx, selectRoutesSQL)
	if err != nil {
		return fmt.Errorf("failed to query bus routes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category, name string
			fare           sql.NullFloat64
		)
		if err := rows.Scan(&category, &name, &fare); err != nil {
			return fmt.Errorf("failed to scan bus route: %w", err)
		}
		i, ok := index[category]
		if !ok {
			return configErrorf("bus route %q references unknown category %q", name, category)
		}
		specs[i].Routes = append(specs[i].Routes, RouteSpec{Name: name, FareEC: nullFloat(fare)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate bus routes: %w", err)
	}
	return nil
}

func loadTaxiRows(ctx context.Context, db Querier, specs []CategorySpec, index map[string]int) error {
	rows, err := db.QueryContext(ctx, selectTaxiFaresSQL)
	if err != nil {
		return fmt.Errorf("failed to query taxi fares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category                         string
			place, distance, passengers      sql.NullString
			regEC, regUS, ahEC, ahUS         sql.NullFloat64
			owEC, owUS, retEC, retUS         sql.NullFloat64
			ahowEC, ahowUS, ahretEC, ahretUS sql.NullFloat64
		)
		if err := rows.Scan(&category, &place, &distance, &passengers,
			&regEC, &regUS, &ahEC, &ahUS,
			&owEC, &owUS, &retEC, &retUS,
			&ahowEC, &ahowUS, &ahretEC, &ahretUS,
		); err != nil {
			return fmt.Errorf("failed to scan taxi fare: %w", err)
		}
		i, ok := index[category]
		if !ok {
			return configErrorf("taxi fare references unknown category %q", category)
		}
		specs[i].Fares = append(specs[i].Fares, FareSpec{
			Place:              nullString(place),
			DistanceCategory:   nullString(distance),
			Passengers:         nullString(passengers),
			RegularEC:          nullFloat(regEC),
			RegularUS:          nullFloat(regUS),
			AfterHoursEC:       nullFloat(ahEC),
			AfterHoursUS:       nullFloat(ahUS),
			RegularOneWayEC:    nullFloat(owEC),
			RegularOneWayUS:    nullFloat(owUS),
			RegularReturnEC:    nullFloat(retEC),
			RegularReturnUS:    nullFloat(retUS),
			AfterHoursOneWayEC: nullFloat(ahowEC),
			AfterHoursOneWayUS: nullFloat(ahowUS),
			AfterHoursReturnEC: nullFloat(ahretEC),
			AfterHoursReturnUS: nullFloat(ahretUS),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate taxi fares: %w", err)
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
