package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Templates table - stores expert reference exercise metadata
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			arm_side TEXT NOT NULL CHECK(arm_side IN ('Left', 'Right')),
			points INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Template points table - stores the reference wrist trajectory
		`CREATE TABLE IF NOT EXISTS template_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL
		)`,

		// Sessions table - stores the full result of one analysis run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			template_id TEXT REFERENCES templates(id) ON DELETE SET NULL,
			template_file TEXT NOT NULL DEFAULT '',
			patient_file TEXT NOT NULL,
			score REAL NOT NULL,
			global_rmse REAL NOT NULL,
			rmse_x REAL NOT NULL,
			rmse_y REAL NOT NULL,
			rmse_z REAL NOT NULL,
			rom_ratio REAL NOT NULL,
			rom_ratio_x REAL NOT NULL,
			rom_ratio_y REAL NOT NULL,
			rom_ratio_z REAL NOT NULL,
			rom_grade_x INTEGER NOT NULL,
			rom_grade_y INTEGER NOT NULL,
			rom_grade_z INTEGER NOT NULL,
			avg_rom_grade REAL NOT NULL,
			shape_grade INTEGER NOT NULL,
			rom_status TEXT NOT NULL,
			shape_status TEXT NOT NULL,
			report TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_template_points_template_id ON template_points(template_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_template_id ON sessions(template_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
