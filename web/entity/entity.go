// Package entity defines the request and response shapes of the
// collector API.
package entity

import (
	"time"

	"github.com/sensorlab/doorwatch/database/model"
)

// TokenResponse is returned by the token endpoints.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// UserOut is the public view of a user account; the password hash never
// leaves the service layer.
type UserOut struct {
	Id        int        `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// StatusOut is a snapshot enriched with the derived offline flag, the
// system's only liveness signal.
type StatusOut struct {
	Id          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	State       string    `json:"state"`
	Temperature float64   `json:"temperature"`
	Battery     int       `json:"battery"`
	Offline     bool      `json:"offline"`
}

// DevicePayload accepts the two status shapes a Shelly-class door sensor
// reports: the nested {sensor:{state}, tmp:{value}, bat:{value}} form
// and the flat {state, temperature, battery} form. Pointer fields keep
// "absent" distinguishable from zero values so extraction stays strict.
type DevicePayload struct {
	Sensor *struct {
		State *string `json:"state"`
	} `json:"sensor"`
	Tmp *struct {
		Value *float64 `json:"value"`
	} `json:"tmp"`
	Bat *struct {
		Value *int `json:"value"`
	} `json:"bat"`

	State       *string  `json:"state"`
	Temperature *float64 `json:"temperature"`
	Battery     *int     `json:"battery"`
}

// Reading is the normalized result of extracting a DevicePayload.
type Reading struct {
	State       string
	Temperature float64
	Battery     int
}
