// internal/models/collection.go
package models

// OwnedGuitar is one instrument in the owned collection, as loaded from the
// collection table. Only the fields the scoring profile needs.
type OwnedGuitar struct {
	Brand string     `json:"brand"`
	Model string     `json:"model"`
	Type  GuitarType `json:"type"`
	Year  *int       `json:"year,omitempty"`
}
