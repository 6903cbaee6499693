package dto

import "time"

// IntegrationLogResponse uma entrada da trilha de integração.
type IntegrationLogResponse struct {
	ID           string    `json:"id"`
	Service      string    `json:"service"`
	Operation    string    `json:"operation"`
	Status       string    `json:"status"`
	Request      string    `json:"request"`
	Response     string    `json:"response"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
