package models

import (
	"fmt"
	"strings"
	"time"

	"portail-citoyen-backend/lifecycle"
)

// FlexibleTime accepte les formats de dates envoyés par les formulaires
type FlexibleTime struct {
	time.Time
}

var flexibleLayouts = []string{
	"2006-01-02T15:04:05", // "2026-06-21T20:00:00"
	"2006-01-02T15:04",    // champ datetime-local
	"2006-01-02",          // journée entière
	time.RFC3339,
	time.RFC3339Nano,
}

// ParisLocation retourne le fuseau Europe/Paris
func ParisLocation() *time.Location {
	return lifecycle.Paris
}

// UnmarshalJSON interprète les dates sans fuseau en heure de Paris
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		ft.Time = time.Time{}
		return nil
	}

	paris := ParisLocation()
	for _, layout := range flexibleLayouts {
		if parsed, err := time.ParseInLocation(layout, s, paris); err == nil {
			ft.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("format de date invalide: %s", s)
}

// MarshalJSON retourne la date en heure de Paris, sans fuseau
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte("\"" + ft.Time.In(ParisLocation()).Format("2006-01-02T15:04:05") + "\""), nil
}
