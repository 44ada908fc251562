package entity

import "github.com/google/uuid"

type Company struct {
	Base
	Name    string    `db:"name"`
	OwnerID uuid.UUID `db:"owner_id"`
}
