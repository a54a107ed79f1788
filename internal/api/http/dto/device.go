package dto

import (
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
)

type RegisterDeviceRequest struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name,omitempty"`
}

type DeviceResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Fingerprint string     `json:"fingerprint"`
	Name        string     `json:"name,omitempty"`
	LastSeen    *time.Time `json:"last_seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RegisterDeviceResponse struct {
	Message string         `json:"message,omitempty"`
	Device  DeviceResponse `json:"device"`
}

func NewDeviceResponse(d domain.Device) DeviceResponse {
	return DeviceResponse{
		ID:          d.ID,
		UserID:      d.UserID,
		Fingerprint: d.Fingerprint,
		Name:        d.Name,
		LastSeen:    d.LastSeen,
		CreatedAt:   d.CreatedAt,
	}
}
