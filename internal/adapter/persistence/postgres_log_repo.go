package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/ports"
)

// PostgresLogRepository implements LogRepository using PostgreSQL
type PostgresLogRepository struct {
	db *sql.DB
}

func NewPostgresLogRepository(db *sql.DB) ports.LogRepository {
	return &PostgresLogRepository{db: db}
}

func (r *PostgresLogRepository) Create(ctx context.Context, log *domain.Log) error {
	query := `
		INSERT INTO logs (id, owner_id, date, tasks, time_spent, mood, blockers, tags, reviewed, feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	tagsJSON, err := marshalTags(log.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		log.OwnerID,
		log.Date,
		log.Tasks,
		log.TimeSpent,
		string(log.Mood),
		log.Blockers,
		tagsJSON,
		log.Reviewed,
		log.Feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}

	return nil
}

func (r *PostgresLogRepository) FindByID(ctx context.Context, id string) (*domain.Log, error) {
	query := `
		SELECT id, owner_id, date, tasks, time_spent, mood, blockers, tags, reviewed, feedback
		FROM logs
		WHERE id = $1
	`

	log, err := scanLog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrLogNotFound
		}
		return nil, fmt.Errorf("failed to find log: %w", err)
	}

	return log, nil
}

func (r *PostgresLogRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Log, error) {
	query := `
		SELECT id, owner_id, date, tasks, time_spent, mood, blockers, tags, reviewed, feedback
		FROM logs
		WHERE owner_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, nil
}

func (r *PostgresLogRepository) ListAll(ctx context.Context) ([]*domain.LogWithOwner, error) {
	query := `
		SELECT l.id, l.owner_id, l.date, l.tasks, l.time_spent, l.mood, l.blockers, l.tags, l.reviewed, l.feedback, u.name
		FROM logs l
		JOIN users u ON u.id = l.owner_id
		ORDER BY l.date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.LogWithOwner
	for rows.Next() {
		var rec domain.LogWithOwner
		var tagsJSON []byte

		err := rows.Scan(
			&rec.ID,
			&rec.OwnerID,
			&rec.Date,
			&rec.Tasks,
			&rec.TimeSpent,
			&rec.Mood,
			&rec.Blockers,
			&tagsJSON,
			&rec.Reviewed,
			&rec.Feedback,
			&rec.OwnerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}

		if rec.Tags, err = unmarshalTags(tagsJSON); err != nil {
			return nil, err
		}

		logs = append(logs, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating logs: %w", err)
	}

	return logs, nil
}

func (r *PostgresLogRepository) Update(ctx context.Context, log *domain.Log) error {
	query := `
		UPDATE logs
		SET tasks = $2, time_spent = $3, mood = $4, blockers = $5, tags = $6, reviewed = $7, feedback = $8
		WHERE id = $1
	`

	tagsJSON, err := marshalTags(log.Tags)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.Tasks,
		log.TimeSpent,
		string(log.Mood),
		log.Blockers,
		tagsJSON,
		log.Reviewed,
		log.Feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to update log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ports.ErrLogNotFound
	}

	return nil
}

func (r *PostgresLogRepository) DeleteByOwner(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM logs WHERE id = $1 AND owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ports.ErrLogNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLog(row rowScanner) (*domain.Log, error) {
	var log domain.Log
	var tagsJSON []byte

	err := row.Scan(
		&log.ID,
		&log.OwnerID,
		&log.Date,
		&log.Tasks,
		&log.TimeSpent,
		&log.Mood,
		&log.Blockers,
		&tagsJSON,
		&log.Reviewed,
		&log.Feedback,
	)
	if err != nil {
		return nil, err
	}

	if log.Tags, err = unmarshalTags(tagsJSON); err != nil {
		return nil, err
	}

	return &log, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return data, nil
}

func unmarshalTags(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return tags, nil
}
