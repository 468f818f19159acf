// Package repository holds the Postgres-backed stores.
package repository

//go:generate mockgen -destination=../mocks/repository.go -package=mocks github.com/cura-agent/roster-service/internal/repository AccountRepository,RosterRepository,PasswordResetRepository
