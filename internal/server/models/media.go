package models

// StoredMedia is an uploaded object. PublicID is the storage key and the
// handle used to delete it.
type StoredMedia struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
