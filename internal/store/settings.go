package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Setting keys.
const (
	KeyViewport = "viewport"
	KeyEnabled  = "tracking_enabled"
)

// Viewport is the last known render surface size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsRepository stores JSON-encoded values by key.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value for key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set inserts or replaces the value for key.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	return err
}

// Delete removes key. Missing keys are not an error.
func (r *SettingsRepository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// GetJSON decodes the value for key into v.
func (r *SettingsRepository) GetJSON(key string, v any) error {
	raw, err := r.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode setting %q: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func (r *SettingsRepository) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	return r.Set(key, string(data))
}

// SaveViewport persists the render surface size.
func (r *SettingsRepository) SaveViewport(v Viewport) error {
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", v.Width, v.Height)
	}
	return r.SetJSON(KeyViewport, v)
}

// LoadViewport returns the saved render surface size or ErrNotFound.
func (r *SettingsRepository) LoadViewport() (Viewport, error) {
	var v Viewport
	if err := r.GetJSON(KeyViewport, &v); err != nil {
		return Viewport{}, err
	}
	return v, nil
}
