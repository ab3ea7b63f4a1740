package model

import "github.com/google/uuid"

// ensureID assigns a client-side uuid so the models work on any dialect
// without a database-side default.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
