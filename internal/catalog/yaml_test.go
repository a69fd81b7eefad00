package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"fare-estimator/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
version: "test-1"
categories:
  - category: "Bus Fares: Kingstown to Leeward"
    routes:
      - { name: "Kingstown to Layou", fare_ec: 3.50 }
  - category: "From Cruise Ship Berth (Kingstown)"
    fares:
      - place: "Fort Charlotte"
        passengers: "1 to 4"
        regular_one_way_ec: 40
        regular_one_way_us: 15
        regular_return_ec: 70
        regular_return_us: 26
        after_hours_one_way_ec: 50
        after_hours_one_way_us: 18.5
`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog), DefaultLabels())
	require.NoError(t, err)
	assert.Equal(t, "test-1", cat.Version())
	assert.Equal(t, 2, cat.Len())

	got, ok := cat.FindCategory("From Cruise Ship Berth (Kingstown)")
	require.True(t, ok)
	cruise, ok := got.(*CruiseShipCategory)
	require.True(t, ok)
	require.Len(t, cruise.Fares, 1)
	assert.Equal(t, PassengerRange("1 to 4"), cruise.Fares[0].Passengers)
	assert.Equal(t, Rate{EC: 50, US: 18.5}, cruise.Fares[0].AfterHoursOneWay)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty document", ""},
		{"no categories", "version: \"x\"\ncategories: []\n"},
		{"unknown field", "categories:\n  - category: \"A\"\n    routes:\n      - { name: \"r\", fare: 2 }\n"},
		{"not yaml", "categories: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), DefaultLabels())
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindConfiguration))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	cat, err := LoadFile(path, DefaultLabels())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), DefaultLabels())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
}

func TestEmbedded(t *testing.T) {
	cat, err := Embedded(DefaultLabels())
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Version())

	shapes := make(map[Shape]int)
	for _, c := range cat.Categories() {
		shapes[c.Shape()]++
	}
	assert.Positive(t, shapes[ShapeBusRoute])
	assert.Positive(t, shapes[ShapeStandard])
	assert.Equal(t, 1, shapes[ShapeCruiseShip])
	assert.Equal(t, 1, shapes[ShapeKingstownTour])

	airport, ok := cat.FindCategory("From Argyle International Airport (AIA) (1 to 3 Passengers)")
	require.True(t, ok)
	assert.Equal(t, PricingSmallGroup, airport.(*StandardCategory).Pricing)
}

func TestEmbedded_CustomLabelsChangeClassification(t *testing.T) {
	labels := DefaultLabels()
	labels.KingstownTourName = "Guided Tours"

	_, err := Embedded(labels)
	require.Error(t, err, "tour rows must not load as standard fares")
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
}
