package model

import "time"

type Pet struct {
	ID          string     `json:"id"`
	Species     string     `json:"species"`
	Name        string     `json:"name"`
	Age         int        `json:"age"`
	Gender      string     `json:"gender"`
	CreatedDate time.Time  `json:"createdDate"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}
