package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/city_emergency_response/internal/models"
	"github.com/shenikar/city_emergency_response/internal/service"
)

// resultListLimit ограничивает ListTaskResults, когда прогон не указан
const resultListLimit = 100

type ArtifactRepository struct {
	db *pgxpool.Pool
}

func NewArtifactRepository(db *pgxpool.Pool) service.ArtifactStore {
	return &ArtifactRepository{db: db}
}

// SaveArtifact сохраняет артефакт по хэшу входа, повторный вход перезаписывает результат
func (r *ArtifactRepository) SaveArtifact(ctx context.Context, a *models.RunArtifact) error {
	actions, err := json.Marshal(a.ActionList)
	if err != nil {
		return fmt.Errorf("failed to marshal action list: %w", err)
	}
	query := `
		INSERT INTO run_artifacts (input_hash, run_id, unit, task_id, input, action_list, final_answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (input_hash) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			unit = EXCLUDED.unit,
			task_id = EXCLUDED.task_id,
			action_list = EXCLUDED.action_list,
			final_answer = EXCLUDED.final_answer,
			created_at = EXCLUDED.created_at;
	`
	_, err = r.db.Exec(ctx, query,
		a.InputHash,
		a.RunID,
		a.Unit,
		int(a.TaskID),
		a.Input,
		actions,
		a.FinalAnswer,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run artifact: %w", err)
	}
	return nil
}

// GetArtifact возвращает артефакт по хэшу входа
func (r *ArtifactRepository) GetArtifact(ctx context.Context, inputHash string) (*models.RunArtifact, error) {
	query := `
		SELECT input_hash, run_id, unit, task_id, input, action_list, final_answer, created_at
		FROM run_artifacts
		WHERE input_hash = $1;
	`
	a := &models.RunArtifact{}
	var (
		taskID  int
		actions []byte
	)
	err := r.db.QueryRow(ctx, query, inputHash).Scan(
		&a.InputHash,
		&a.RunID,
		&a.Unit,
		&taskID,
		&a.Input,
		&actions,
		&a.FinalAnswer,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", inputHash, models.ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("failed to get run artifact: %w", err)
	}
	a.TaskID = models.TaskID(taskID)
	if err := json.Unmarshal(actions, &a.ActionList); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action list: %w", err)
	}
	return a, nil
}

func (r *ArtifactRepository) SaveTaskResult(ctx context.Context, res *models.TaskResult) error {
	query := `
		INSERT INTO task_results (id, run_id, epoch, task_id, description, status, units, reflection, summary, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	units, summary := res.Units, res.Summary
	if units == nil {
		units = []string{}
	}
	if summary == nil {
		summary = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		res.ID,
		res.RunID,
		res.Epoch,
		int(res.TaskID),
		res.Description,
		string(res.Status),
		units,
		res.Reflection,
		summary,
		res.Attempts,
		res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save task result: %w", err)
	}
	return nil
}

// ListTaskResults возвращает результаты прогона в порядке записи,
// а при пустом runID - последние результаты по всем прогонам
func (r *ArtifactRepository) ListTaskResults(ctx context.Context, runID uuid.UUID) ([]*models.TaskResult, error) {
	var (
		rows pgx.Rows
		err  error
	)
	const columns = `id, run_id, epoch, task_id, description, status, units, reflection, summary, attempts, created_at`
	if runID == uuid.Nil {
		rows, err = r.db.Query(ctx, `SELECT `+columns+` FROM task_results ORDER BY created_at DESC LIMIT $1;`, resultListLimit)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+columns+` FROM task_results WHERE run_id = $1 ORDER BY created_at;`, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list task results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.TaskResult, 0)
	for rows.Next() {
		res := &models.TaskResult{}
		var (
			taskID int
			status string
		)
		err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.Epoch,
			&taskID,
			&res.Description,
			&status,
			&res.Units,
			&res.Reflection,
			&res.Summary,
			&res.Attempts,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task result row: %w", err)
		}
		res.TaskID = models.TaskID(taskID)
		res.Status = models.TaskStatus(status)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error task result iteration: %w", err)
	}
	return results, nil
}
