package repomanager

import (
	"context"
	"fmt"
)

// Open returns the manager for driver ("postgres" or "memory").
func Open(ctx context.Context, driver, dsn string) (RepositoryManager, error) {
	switch driver {
	case "postgres":
		m, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
