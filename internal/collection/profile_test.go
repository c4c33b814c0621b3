// internal/collection/profile_test.go
package collection

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fretwatch/internal/common/database"
	"fretwatch/internal/models"
)

func TestProfile(t *testing.T) {
	owned := []models.OwnedGuitar{
		{Brand: "Gibson", Model: "ES-335", Type: models.TypeElectric},
		{Brand: "Gibson", Model: "J-45", Type: models.TypeAcoustic},
		{Brand: "Fender", Model: "Jazz Bass", Type: models.TypeBass},
		{Brand: "Martin", Model: "D-28", Type: models.TypeAcoustic},
	}
	p := NewProfile(owned)

	assert.False(t, p.Empty())

	assert.True(t, p.OwnsBrand("Gibson"))
	assert.True(t, p.OwnsBrand("gibson")) // case-insensitive
	assert.False(t, p.OwnsBrand("Gretsch"))

	assert.True(t, p.OwnsPair("Gibson", "ES-335"))
	assert.True(t, p.OwnsPair("gibson", "es-335"))
	assert.False(t, p.OwnsPair("Gibson", "Les Paul"))

	assert.InDelta(t, 0.5, p.TypeShare(models.TypeAcoustic), 1e-9)
	assert.InDelta(t, 0.25, p.TypeShare(models.TypeElectric), 1e-9)
	assert.InDelta(t, 0.25, p.TypeShare(models.TypeBass), 1e-9)
}

func TestProfile_Empty(t *testing.T) {
	p := NewProfile(nil)
	assert.True(t, p.Empty())
	assert.False(t, p.OwnsBrand("Gibson"))
	assert.False(t, p.OwnsPair("Gibson", "ES-335"))
	assert.InDelta(t, 0.0, p.TypeShare(models.TypeElectric), 1e-9)
}

func TestLoadOwned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	year := 1964
	rows := sqlmock.NewRows([]string{"brand", "model", "guitar_type", "year"}).
		AddRow("Fender", "Stratocaster", "Electric", &year).
		AddRow("Martin", "D-18", "Acoustic Guitar", nil)

	mock.ExpectQuery("SELECT brand, model, guitar_type, year").WillReturnRows(rows)

	loader := NewLoader(&database.PostgresClient{DB: db})
	owned, err := loader.LoadOwned(context.Background())
	require.NoError(t, err)

	require.Len(t, owned, 2)
	assert.Equal(t, "Fender", owned[0].Brand)
	assert.Equal(t, models.TypeElectric, owned[0].Type)
	require.NotNil(t, owned[0].Year)
	assert.Equal(t, 1964, *owned[0].Year)
	assert.Equal(t, models.TypeAcoustic, owned[1].Type)
	assert.Nil(t, owned[1].Year)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadOwned_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT brand, model, guitar_type, year").WillReturnError(assert.AnError)

	loader := NewLoader(&database.PostgresClient{DB: db})
	_, err = loader.LoadOwned(context.Background())
	assert.Error(t, err)
}
