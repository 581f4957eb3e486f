package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session represents one completed analysis run stored in the database.
type Session struct {
	ID           string    `json:"id"`
	TemplateID   string    `json:"template_id,omitempty"`
	TemplateFile string    `json:"template_file,omitempty"`
	PatientFile  string    `json:"patient_file"`
	Score        float64   `json:"score"`
	GlobalRMSE   float64   `json:"global_rmse"`
	RMSEX        float64   `json:"rmse_x"`
	RMSEY        float64   `json:"rmse_y"`
	RMSEZ        float64   `json:"rmse_z"`
	ROMRatio     float64   `json:"rom_ratio"`
	ROMRatioX    float64   `json:"rom_ratio_x"`
	ROMRatioY    float64   `json:"rom_ratio_y"`
	ROMRatioZ    float64   `json:"rom_ratio_z"`
	ROMGradeX    int       `json:"rom_grade_x"`
	ROMGradeY    int       `json:"rom_grade_y"`
	ROMGradeZ    int       `json:"rom_grade_z"`
	AvgROMGrade  float64   `json:"avg_rom_grade"`
	ShapeGrade   int       `json:"shape_grade"`
	ROMStatus    string    `json:"rom_status"`
	ShapeStatus  string    `json:"shape_status"`
	Report       string    `json:"report"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionRepository provides storage operations for analysis sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	var templateID interface{}
	if sess.TemplateID != "" {
		templateID = sess.TemplateID
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, template_id, template_file, patient_file,
			score, global_rmse, rmse_x, rmse_y, rmse_z,
			rom_ratio, rom_ratio_x, rom_ratio_y, rom_ratio_z,
			rom_grade_x, rom_grade_y, rom_grade_z, avg_rom_grade, shape_grade,
			rom_status, shape_status, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, templateID, sess.TemplateFile, sess.PatientFile,
		sess.Score, sess.GlobalRMSE, sess.RMSEX, sess.RMSEY, sess.RMSEZ,
		sess.ROMRatio, sess.ROMRatioX, sess.ROMRatioY, sess.ROMRatioZ,
		sess.ROMGradeX, sess.ROMGradeY, sess.ROMGradeZ, sess.AvgROMGrade, sess.ShapeGrade,
		sess.ROMStatus, sess.ShapeStatus, sess.Report, sess.CreatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var templateID sql.NullString

	err := r.db.QueryRow(
		`SELECT id, template_id, template_file, patient_file,
			score, global_rmse, rmse_x, rmse_y, rmse_z,
			rom_ratio, rom_ratio_x, rom_ratio_y, rom_ratio_z,
			rom_grade_x, rom_grade_y, rom_grade_z, avg_rom_grade, shape_grade,
			rom_status, shape_status, report, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &templateID, &sess.TemplateFile, &sess.PatientFile,
		&sess.Score, &sess.GlobalRMSE, &sess.RMSEX, &sess.RMSEY, &sess.RMSEZ,
		&sess.ROMRatio, &sess.ROMRatioX, &sess.ROMRatioY, &sess.ROMRatioZ,
		&sess.ROMGradeX, &sess.ROMGradeY, &sess.ROMGradeZ, &sess.AvgROMGrade, &sess.ShapeGrade,
		&sess.ROMStatus, &sess.ShapeStatus, &sess.Report, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.TemplateID = templateID.String
	return sess, nil
}

// List retrieves all sessions from the database, most recent first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, template_id, template_file, patient_file,
			score, global_rmse, rmse_x, rmse_y, rmse_z,
			rom_ratio, rom_ratio_x, rom_ratio_y, rom_ratio_z,
			rom_grade_x, rom_grade_y, rom_grade_z, avg_rom_grade, shape_grade,
			rom_status, shape_status, report, created_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var templateID sql.NullString

		err := rows.Scan(&sess.ID, &templateID, &sess.TemplateFile, &sess.PatientFile,
			&sess.Score, &sess.GlobalRMSE, &sess.RMSEX, &sess.RMSEY, &sess.RMSEZ,
			&sess.ROMRatio, &sess.ROMRatioX, &sess.ROMRatioY, &sess.ROMRatioZ,
			&sess.ROMGradeX, &sess.ROMGradeY, &sess.ROMGradeZ, &sess.AvgROMGrade, &sess.ShapeGrade,
			&sess.ROMStatus, &sess.ShapeStatus, &sess.Report, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		sess.TemplateID = templateID.String
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session from the database by its ID.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
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
