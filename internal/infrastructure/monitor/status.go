package monitor

import "time"

type Status struct {
	LocalStore bool      `json:"localstore"`
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	SpillSize  int       `json:"spill_size"`
	LastCheck  time.Time `json:"last_check"`
}
