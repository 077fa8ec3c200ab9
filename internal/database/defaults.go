package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jask/cncdeck/internal/database/repository"
)

type defaultMachine struct {
	name   string
	limits repository.Limits
}

var defaultMachines = []defaultMachine{
	{name: "Generic 3-axis router", limits: repository.Limits{XMax: 300, YMax: 300, ZMin: -80}},
	{name: "Shapeoko 3 XXL", limits: repository.Limits{XMax: 838, YMax: 838, ZMin: -95}},
	{name: "X-Carve 1000mm", limits: repository.Limits{XMax: 750, YMax: 750, ZMin: -65}},
	{name: "Prusa i3 MK3S", limits: repository.Limits{XMax: 250, YMax: 210, ZMax: 210}},
}

// MachineID derives a stable id for a seeded machine name.
func MachineID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("machine:"+name)).String()
}

// SeedDefaults ensures baseline machine profiles exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	existing, err := repository.NewMachineRepo(db).List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := repository.NewMachineRepo(tx)
		for idx, d := range defaultMachines {
			m := repository.Machine{ID: MachineID(d.name), Name: d.name, SortOrder: idx, Limits: d.limits}
			if err := repo.Upsert(ctx, m); err != nil {
				return fmt.Errorf("seed %s: %w", d.name, err)
			}
		}
		return nil
	})
}
