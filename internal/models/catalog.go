package models

type Location struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Type       string `db:"type" json:"type"` // sala, laboratório, ambulatório...
	Street     string `db:"street" json:"street,omitempty"`
	City       string `db:"city" json:"city,omitempty"`
	State      string `db:"state" json:"state,omitempty"`
	PostalCode string `db:"postal_code" json:"postal_code,omitempty"`
}

type Discipline struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type Class struct {
	ID           int64  `db:"id" json:"id"`
	DisciplineID int64  `db:"discipline_id" json:"discipline_id"`
	Name         string `db:"name" json:"name"`
	Term         string `db:"term" json:"term"` // например "2025.1"
}
