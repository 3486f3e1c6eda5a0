package handlers

import (
	"time"

	"events-admin/internal/codec"
	"events-admin/internal/models"
)

const (
	rowDateLayout   = "Jan 2, 2006"
	rowThemeLimit   = 2
	untitledEvent   = "Untitled Event"
	unknownLocation = "TBA"
)

// EventRow is one line of the dashboard event table
type EventRow struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Logo           string   `json:"logo,omitempty"`
	Themes         []string `json:"themes"`
	PrimaryLink    string   `json:"primary_link,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	VenueType      string   `json:"venue_type,omitempty"`
	EcosystemFocus string   `json:"ecosystem_focus,omitempty"`
	Status         string   `json:"status"`
	Highlighted    bool     `json:"highlighted"`
}

// NewEventRow renders an event for the table, with dates shown in loc
func NewEventRow(e *models.Event, loc *time.Location) EventRow {
	row := EventRow{
		ID:             e.ID,
		Name:           orDefault(e.Name, untitledEvent),
		Location:       orDefault(e.Location, unknownLocation),
		Logo:           orDefault(e.Logo, ""),
		PrimaryLink:    codec.First(e.Link),
		VenueType:      orDefault(e.VenueType, ""),
		EcosystemFocus: orDefault(e.EcosystemFocus, ""),
		Status:         "Pending",
		Highlighted:    e.IsHighlighted(),
	}

	themes := codec.Decode(e.ThemeOptional)
	if len(themes) > rowThemeLimit {
		themes = themes[:rowThemeLimit]
	}
	row.Themes = themes

	if e.IsApproved() {
		row.Status = "Approved"
	}

	if e.StartValue != nil {
		row.StartDate = e.StartValue.In(loc).Format(rowDateLayout)
	}
	// End date only when it differs from the start
	if e.EndValue != nil && (e.StartValue == nil || !e.EndValue.Equal(*e.StartValue)) {
		row.EndDate = e.EndValue.In(loc).Format(rowDateLayout)
	}

	return row
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
