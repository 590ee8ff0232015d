// Package chat contains core concepts of the chat store.
// This file defines Participant entities and their roles.
// No runtime, network, or UI logic should be added here.
package chat

type Role int

const (
	RoleAdmin Role = iota
	RoleAgent
	RoleCustomer
)

type Participant struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Role Role   `json:"role" validate:"oneof=0 1 2"`
}
