package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	PhotoStore bool      `json:"photo_store"`
	Photos     int       `json:"photos"`
	Workspaces int       `json:"workspaces"`
	LastCheck  time.Time `json:"last_check"`
}

// Healthy reports whether every required dependency answered. The photo store is always required;
// Postgres and Redis only when they were configured.
func (s Status) Healthy(requirePostgres, requireRedis bool) bool {
	if !s.PhotoStore {
		return false
	}
	if requirePostgres && !s.PostgreSQL {
		return false
	}
	if requireRedis && !s.Redis {
		return false
	}
	return true
}
