package api

import (
	"time"

	"github.com/google/uuid"

	"scan-annotator/internal/mask"
)

// ScanStatus mirrors the backend scan lifecycle states.
type ScanStatus string

const (
	StatusReceived  ScanStatus = "received"
	StatusProcessed ScanStatus = "processed"
	StatusFailed    ScanStatus = "failed"
)

// Scan is the detail record the backend returns for a single scan. Asset
// URLs are short-lived presigned links; the record must be re-fetched (or
// taken from a save response) rather than cached when the overlay needs to
// be re-derived.
type Scan struct {
	ID          uuid.UUID  `json:"id"`
	ScanID      string     `json:"scan_id,omitempty"`
	CaptureID   string     `json:"capture_id"`
	DeviceID    uuid.UUID  `json:"device_id"`
	DeviceCode  string     `json:"device_code,omitempty"`
	DeviceLabel string     `json:"device_label,omitempty"`
	FarmID      *uuid.UUID `json:"farm_id,omitempty"`
	FarmName    string     `json:"farm_name,omitempty"`
	AnimalID    *uuid.UUID `json:"animal_id,omitempty"`
	OperatorID  *uuid.UUID `json:"operator_id,omitempty"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	Status      ScanStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`

	ImageAssetID *uuid.UUID `json:"image_asset_id,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`

	MaskAssetID *uuid.UUID `json:"mask_asset_id,omitempty"`
	MaskURL     string     `json:"mask_url,omitempty"`

	BackfatLineAssetID *uuid.UUID `json:"backfat_line_asset_id,omitempty"`
	BackfatLineURL     string     `json:"backfat_line_url,omitempty"`
}

// HasMask reports whether a committed raster exists for the mask type.
func (s *Scan) HasMask(t mask.Type) bool {
	switch t {
	case mask.TypeRegion:
		return s.MaskAssetID != nil
	case mask.TypeBackfatLine:
		return s.BackfatLineAssetID != nil
	default:
		return false
	}
}

// AssetURL returns the presigned download URL for the mask type's committed
// raster, or empty when none exists.
func (s *Scan) AssetURL(t mask.Type) string {
	switch t {
	case mask.TypeRegion:
		return s.MaskURL
	case mask.TypeBackfatLine:
		return s.BackfatLineURL
	default:
		return ""
	}
}

// Label returns the operator-facing identifier for the scan.
func (s *Scan) Label() string {
	if s.ScanID != "" {
		return s.ScanID
	}
	return s.CaptureID
}

// User is the authenticated operator record from GET /me.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Roles []string  `json:"roles"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// CanAnnotate is the role predicate gating entry into mask edit mode.
func (u *User) CanAnnotate() bool {
	return u.HasRole("admin") || u.HasRole("annotator")
}
