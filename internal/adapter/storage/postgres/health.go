package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HealthCheck implements ports.HealthChecker for PostgreSQL. Besides
// connectivity it confirms the application table is present.
type HealthCheck struct {
	pool  Pool
	table string
}

// NewHealthCheck creates a PostgreSQL health checker for table.
func NewHealthCheck(pool Pool, table string) *HealthCheck {
	return &HealthCheck{pool: pool, table: table}
}

// Ping checks PostgreSQL connectivity and the application table.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var exists bool
	err := h.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", pgx.Identifier{h.table}.Sanitize()).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s does not exist", h.table)
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "postgresql"
}
