package models

import "time"

type Role string

const (
	Student       Role = "student"
	Teacher       Role = "teacher"
	Preceptor     Role = "preceptor"
	Coordinator   Role = "coordinator"
	Admin         Role = "admin"
	ExternalStaff Role = "external"
)

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
