package domain

import "time"

type Department struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Rules     []string  `json:"rules,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

type Group struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
