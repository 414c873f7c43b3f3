package transport

import "time"

const (
	StateUp       = "up"
	StateDown     = "down"
	StateDisabled = "disabled"
)

type HealthReport struct {
	Timestamp  time.Time      `json:"timestamp"`
	LastCheck  time.Time      `json:"last_check"`
	Workspaces int            `json:"workspaces"`
	Services   HealthServices `json:"services"`
}

type HealthServices struct {
	PostgreSQL string           `json:"postgresql"`
	Redis      string           `json:"redis"`
	PhotoStore PhotoStoreHealth `json:"photo_store"`
}

type PhotoStoreHealth struct {
	State  string `json:"state"`
	Photos int    `json:"photos"`
}

// ServiceState renders a probe result. Dependencies that were never configured report "disabled".
func ServiceState(configured, online bool) string {
	switch {
	case !configured:
		return StateDisabled
	case online:
		return StateUp
	default:
		return StateDown
	}
}
