package storage

func (s *SQLiteStorage) migrate() error {
	schema := `
    CREATE TABLE IF NOT EXISTS interests (
        interest TEXT PRIMARY KEY,
        selected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS subscriptions (
        id TEXT PRIMARY KEY,
        interest TEXT NOT NULL,
        alert_body TEXT NOT NULL DEFAULT '',
        sound_name TEXT NOT NULL DEFAULT '',
        created_at INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS reconcile_runs (
        id INTEGER PRIMARY KEY,
        backend TEXT NOT NULL,
        started_at INTEGER NOT NULL,
        duration_ms INTEGER NOT NULL,
        desired INTEGER NOT NULL,
        deleted INTEGER NOT NULL,
        created INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS reconcile_failures (
        id INTEGER PRIMARY KEY,
        run_id INTEGER NOT NULL REFERENCES reconcile_runs(id),
        operation TEXT NOT NULL,
        target TEXT NOT NULL,
        kind TEXT NOT NULL,
        message TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_subs_interest
        ON subscriptions(interest);
    CREATE INDEX IF NOT EXISTS idx_failures_run
        ON reconcile_failures(run_id);
    `

	_, err := s.db.Exec(schema)
	return err
}
