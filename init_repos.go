// Package main: Repository katmanı başlatma.
package main

import (
	"database/sql"

	"github.com/akinalp/hush/repository"
)

// Repositories, repository instance'larını tutan container struct.
//
// MuteRegistry bellekte yaşar; MuteAudit SQLite'a yazar.
type Repositories struct {
	MuteRegistry repository.MuteRegistry
	MuteAudit    repository.MuteAuditRepository
}

func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		MuteRegistry: repository.NewMemoryMuteRegistry(),
		MuteAudit:    repository.NewSQLiteMuteAuditRepo(conn),
	}
}
