package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS incidents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			reported_by TEXT NOT NULL,
			status TEXT NOT NULL,
			priority INTEGER NOT NULL,
			reported_at DATETIME NOT NULL,
			assigned_to TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
		CREATE INDEX IF NOT EXISTS idx_incidents_priority ON incidents(priority);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Create(ctx context.Context, incident *models.Incident) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents (type, description, location, reported_by, status, priority, reported_at, assigned_to)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		incident.Type,
		incident.Description,
		incident.Location,
		incident.ReportedBy,
		string(incident.Status),
		incident.Priority,
		incident.ReportedAt,
		incident.AssignedTo,
	)
	if err != nil {
		return fmt.Errorf("error inserting incident: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading generated incident id: %w", err)
	}
	incident.ID = id
	return nil
}

// GetByID returns nil without error when no incident has the id.
func (s *SQLiteDB) GetByID(ctx context.Context, id int64) (*models.Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, description, location, reported_by, status, priority, reported_at, assigned_to
		FROM incidents WHERE id = ?`, id)

	incident, err := scanIncident(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying incident %d: %w", id, err)
	}
	return incident, nil
}

func (s *SQLiteDB) List(ctx context.Context) ([]models.Incident, error) {
	return s.list(ctx, `
		SELECT id, type, description, location, reported_by, status, priority, reported_at, assigned_to
		FROM incidents ORDER BY reported_at DESC`)
}

func (s *SQLiteDB) Update(ctx context.Context, incident *models.Incident) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE incidents
		SET type = ?, description = ?, location = ?, reported_by = ?, status = ?, priority = ?, assigned_to = ?
		WHERE id = ?`,
		incident.Type,
		incident.Description,
		incident.Location,
		incident.ReportedBy,
		string(incident.Status),
		incident.Priority,
		incident.AssignedTo,
		incident.ID,
	)
	if err != nil {
		return false, fmt.Errorf("error updating incident %d: %w", incident.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLiteDB) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting incident %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLiteDB) ListByStatus(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	return s.list(ctx, `
		SELECT id, type, description, location, reported_by, status, priority, reported_at, assigned_to
		FROM incidents WHERE status = ? ORDER BY reported_at DESC`, string(status))
}

// ListHighPriority returns incidents with priority 1 or 2, most urgent first.
func (s *SQLiteDB) ListHighPriority(ctx context.Context) ([]models.Incident, error) {
	return s.list(ctx, `
		SELECT id, type, description, location, reported_by, status, priority, reported_at, assigned_to
		FROM incidents WHERE priority <= 2 ORDER BY priority ASC, reported_at DESC`)
}

func (s *SQLiteDB) list(ctx context.Context, query string, args ...any) ([]models.Incident, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning incident: %w", err)
		}
		incidents = append(incidents, *incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}
	return incidents, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	var (
		incident   models.Incident
		status     string
		assignedTo sql.NullString
	)
	err := row.Scan(
		&incident.ID,
		&incident.Type,
		&incident.Description,
		&incident.Location,
		&incident.ReportedBy,
		&status,
		&incident.Priority,
		&incident.ReportedAt,
		&assignedTo,
	)
	if err != nil {
		return nil, err
	}
	incident.Status = models.IncidentStatus(status)
	incident.AssignedTo = assignedTo.String
	return &incident, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
