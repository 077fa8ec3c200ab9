package repository

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// MachineRepo handles machine profiles.
type MachineRepo struct {
	db DBTX
}

func NewMachineRepo(db DBTX) *MachineRepo { return &MachineRepo{db: db} }

func (r *MachineRepo) Upsert(ctx context.Context, m Machine) error {
	l := m.Limits
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO machines(id, name, sort_order, xmin, xmax, ymin, ymax, zmin, zmax, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 sort_order=excluded.sort_order,
	 xmin=excluded.xmin, xmax=excluded.xmax,
	 ymin=excluded.ymin, ymax=excluded.ymax,
	 zmin=excluded.zmin, zmax=excluded.zmax;
	`, m.ID, m.Name, m.SortOrder, l.XMin, l.XMax, l.YMin, l.YMax, l.ZMin, l.ZMax)
	return err
}

func (r *MachineRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM machines WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *MachineRepo) List(ctx context.Context) ([]Machine, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, sort_order, xmin, xmax, ymin, ymax, zmin, zmax, created_at
	FROM machines ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Machine
	for rows.Next() {
		var m Machine
		l := &m.Limits
		if err := rows.Scan(&m.ID, &m.Name, &m.SortOrder, &l.XMin, &l.XMax, &l.YMin, &l.YMax, &l.ZMin, &l.ZMax, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
