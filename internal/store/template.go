package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/umarshaikh/physiosync/internal/engine"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Template represents an expert reference exercise stored in the database.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ArmSide   string    `json:"arm_side"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateRepository provides CRUD operations for exercise templates.
type TemplateRepository struct {
	db *sql.DB
}

// Templates returns the template repository for this store.
func (s *Store) Templates() *TemplateRepository {
	return &TemplateRepository{db: s.db}
}

// Create inserts a new template into the database.
func (r *TemplateRepository) Create(t *Template) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO templates (id, name, arm_side, points, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.ArmSide, t.Points, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a template by its ID.
func (r *TemplateRepository) GetByID(id string) (*Template, error) {
	t := &Template{}

	err := r.db.QueryRow(
		`SELECT id, name, arm_side, points, created_at, updated_at
		 FROM templates WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.ArmSide, &t.Points, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// GetByName retrieves a template by its name.
func (r *TemplateRepository) GetByName(name string) (*Template, error) {
	t := &Template{}

	err := r.db.QueryRow(
		`SELECT id, name, arm_side, points, created_at, updated_at
		 FROM templates WHERE name = ?`,
		name,
	).Scan(&t.ID, &t.Name, &t.ArmSide, &t.Points, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return t, nil
}

// List retrieves all templates from the database.
func (r *TemplateRepository) List() ([]*Template, error) {
	rows, err := r.db.Query(
		`SELECT id, name, arm_side, points, created_at, updated_at
		 FROM templates ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t := &Template{}

		err := rows.Scan(&t.ID, &t.Name, &t.ArmSide, &t.Points, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}

		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

// Update updates an existing template in the database.
func (r *TemplateRepository) Update(t *Template) error {
	t.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE templates SET name = ?, arm_side = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.ArmSide, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a template from the database by its ID. Its trajectory
// points are removed by the foreign key cascade.
func (r *TemplateRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPoints replaces a template's trajectory in a single transaction.
// It also updates the point count on the template.
func (r *TemplateRepository) SetPoints(templateID string, traj engine.Trajectory) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM template_points WHERE template_id = ?`, templateID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO template_points (template_id, sequence, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range traj {
		if _, err := stmt.Exec(templateID, i, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}

	// Update point count on the template
	result, err := tx.Exec(`UPDATE templates SET points = ?, updated_at = ? WHERE id = ?`,
		len(traj), time.Now(), templateID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GetPoints retrieves a template's trajectory ordered by sequence.
func (r *TemplateRepository) GetPoints(templateID string) (engine.Trajectory, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z
		 FROM template_points
		 WHERE template_id = ?
		 ORDER BY sequence`,
		templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traj engine.Trajectory
	for rows.Next() {
		var p engine.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		traj = append(traj, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return traj, nil
}
