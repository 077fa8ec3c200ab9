package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MacroRepo handles stored macros.
type MacroRepo struct {
	db *sql.DB
}

func NewMacroRepo(db *sql.DB) *MacroRepo { return &MacroRepo{db: db} }

func (r *MacroRepo) Insert(ctx context.Context, m Macro) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO macros(id, name, content, created_at, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, m.ID, m.Name, m.Content)
	return err
}

// Update rewrites name and content. It returns ErrNotFound for unknown ids.
func (r *MacroRepo) Update(ctx context.Context, m Macro) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE macros SET name = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;
	`, m.Name, m.Content, m.ID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// Delete removes a macro. It returns ErrNotFound for unknown ids.
func (r *MacroRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM macros WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *MacroRepo) Get(ctx context.Context, id string) (Macro, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, content, created_at, updated_at FROM macros WHERE id = ?`, id)
	var m Macro
	if err := row.Scan(&m.ID, &m.Name, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Macro{}, ErrNotFound
		}
		return Macro{}, err
	}
	return m, nil
}

func (r *MacroRepo) List(ctx context.Context) ([]Macro, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, content, created_at, updated_at FROM macros ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Macro
	for rows.Next() {
		var m Macro
		if err := rows.Scan(&m.ID, &m.Name, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
