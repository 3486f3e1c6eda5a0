package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events-admin/internal/models"
)

func TestParseField(t *testing.T) {
	f, err := ParseField("theme_optional")
	require.NoError(t, err)
	assert.Equal(t, FieldThemeOptional, f)

	_, err = ParseField("id")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = ParseField("created_at")
	assert.ErrorIs(t, err, ErrUnknownField)

	for _, f := range AllFields {
		_, ok := f.Kind()
		assert.True(t, ok, "field %s has a kind", f)
	}
}

func TestEditBufferSeedIsCopy(t *testing.T) {
	src := models.Event{ID: 5, Name: models.StringPtr("Original")}
	b := newEditBuffer(src, time.UTC)

	require.NoError(t, b.SetText(FieldName, "Renamed"))
	assert.Equal(t, "Original", *src.Name)
	assert.Equal(t, "Renamed", *b.Draft().Name)
	assert.Equal(t, int64(5), b.EventID())
}

func TestEditBufferSetList(t *testing.T) {
	b := newEditBuffer(models.Event{ID: 1}, time.UTC)

	require.NoError(t, b.SetList(FieldCategoryOptional, "DeFi,  , NFTs,"))
	assert.Equal(t, `["DeFi","NFTs"]`, *b.Draft().CategoryOptional)

	text, err := b.ListText(FieldCategoryOptional)
	require.NoError(t, err)
	assert.Equal(t, "DeFi, NFTs", text)

	require.NoError(t, b.SetList(FieldLink, ""))
	assert.Equal(t, "[]", *b.Draft().Link)

	assert.ErrorIs(t, b.SetList(FieldName, "a,b"), ErrFieldKind)
	_, err = b.ListText(FieldApproved)
	assert.ErrorIs(t, err, ErrFieldKind)
}

func TestEditBufferMalformedListShowsEmpty(t *testing.T) {
	b := newEditBuffer(models.Event{ID: 1, ThemeOptional: models.StringPtr("DeFi; NFTs")}, time.UTC)

	text, err := b.ListText(FieldThemeOptional)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestEditBufferSetText(t *testing.T) {
	b := newEditBuffer(models.Event{ID: 1, VenueType: models.StringPtr(models.VenueTypeIRL)}, time.UTC)

	require.NoError(t, b.SetText(FieldSeason, ""))
	assert.Equal(t, "", *b.Draft().Season, "free text keeps the empty string")

	require.NoError(t, b.SetText(FieldVenueType, ""))
	assert.Nil(t, b.Draft().VenueType, "enumerations clear to null")

	require.NoError(t, b.SetText(FieldEcosystemFocus, models.EcosystemFocusCore))
	assert.Equal(t, models.EcosystemFocusCore, *b.Draft().EcosystemFocus)

	assert.ErrorIs(t, b.SetText(FieldVenueType, "Metaverse"), ErrInvalidValue)
	assert.ErrorIs(t, b.SetText(FieldEcosystemFocus, models.VenueTypeIRL), ErrInvalidValue)
	assert.ErrorIs(t, b.SetText(FieldStartValue, "x"), ErrFieldKind)
	assert.ErrorIs(t, b.SetText(Field("id"), "7"), ErrUnknownField)
}

func TestEditBufferSetTime(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	b := newEditBuffer(models.Event{ID: 1, StartValue: &start}, berlin)

	text, err := b.DateTimeText(FieldStartValue)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T10:00", text)

	require.NoError(t, b.SetTime(FieldStartValue, "2025-06-02T09:30"))
	assert.True(t, b.Draft().StartValue.Equal(time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)))

	require.NoError(t, b.SetTime(FieldEndValue, "2025-06-03T18:00:00Z"))
	assert.True(t, b.Draft().EndValue.Equal(time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)))

	require.NoError(t, b.SetTime(FieldEndValue, ""))
	assert.Nil(t, b.Draft().EndValue)
	text, err = b.DateTimeText(FieldEndValue)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	assert.ErrorIs(t, b.SetTime(FieldStartValue, "next tuesday"), ErrInvalidValue)
	assert.ErrorIs(t, b.SetTime(FieldSeason, "2025-06-02T09:30"), ErrFieldKind)
}

func TestEditBufferSetDispatch(t *testing.T) {
	b := newEditBuffer(models.Event{ID: 1}, time.UTC)

	require.NoError(t, b.Set(FieldHighlighted, "true"))
	require.NoError(t, b.Set(FieldApproved, "false"))
	require.NoError(t, b.Set(FieldLink, "https://a.io"))
	require.NoError(t, b.Set(FieldLocation, "Lisbon"))
	require.NoError(t, b.Set(FieldStartValue, "2025-01-01T00:00"))

	d := b.Draft()
	assert.True(t, d.IsHighlighted())
	require.NotNil(t, d.Approved)
	assert.False(t, *d.Approved)
	assert.Equal(t, `["https://a.io"]`, *d.Link)
	assert.Equal(t, "Lisbon", *d.Location)
	assert.NotNil(t, d.StartValue)

	assert.ErrorIs(t, b.Set(FieldApproved, "sure"), ErrInvalidValue)
	assert.ErrorIs(t, b.Set(Field("updated_at"), "x"), ErrUnknownField)
	assert.ErrorIs(t, b.SetFlag(FieldName, true), ErrFieldKind)
}

func TestEditBufferChangedFields(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	b := newEditBuffer(models.Event{
		ID:         1,
		Name:       models.StringPtr("Same"),
		StartValue: &start,
		Link:       models.StringPtr(`["https://a.io"]`),
	}, time.UTC)

	require.NoError(t, b.SetText(FieldName, "Same"))
	require.NoError(t, b.SetTime(FieldStartValue, "2025-06-01T08:00"))
	require.NoError(t, b.SetList(FieldLink, "https://a.io"))
	assert.Empty(t, b.ChangedFields(), "equal values are not changes")

	require.NoError(t, b.SetFlag(FieldHighlighted, false))
	require.NoError(t, b.SetText(FieldTwitter, "https://x.com/devcon"))
	assert.Equal(t, []Field{FieldTwitter, FieldHighlighted}, b.ChangedFields())
}

func TestEditBufferValidate(t *testing.T) {
	assert.ErrorIs(t, newEditBuffer(models.Event{ID: 1}, nil).validate(), ErrNameRequired)
	assert.NoError(t, newEditBuffer(models.Event{ID: 1, Name: models.StringPtr("x")}, nil).validate())
}
