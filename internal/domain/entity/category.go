package entity

import "time"

// Category representa una categoría del catálogo. Name es único (índice en la base command).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
