package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/internal/policy"
	"github.com/devlog/devlog/internal/ports"
	"github.com/devlog/devlog/internal/service/logger"
	"github.com/devlog/devlog/pkg/apperror"
)

// CreateLogRequest carries a new log entry's content. The owner is
// always taken from the caller identity, never from the request.
type CreateLogRequest struct {
	Date      time.Time   `json:"date"`
	Tasks     string      `json:"tasks"`
	TimeSpent float64     `json:"time_spent"`
	Mood      domain.Mood `json:"mood"`
	Blockers  string      `json:"blockers"`
	Tags      []string    `json:"tags"`
}

// LogUseCase drives log operations through the access policy
type LogUseCase struct {
	logRepo ports.LogRepository
	logger  logger.Logger
}

func NewLogUseCase(logRepo ports.LogRepository, log logger.Logger) *LogUseCase {
	return &LogUseCase{logRepo: logRepo, logger: log}
}

// Create submits a new log entry for the calling developer
func (uc *LogUseCase) Create(ctx context.Context, caller domain.Identity, req CreateLogRequest) (*domain.Log, error) {
	ownerID, err := policy.AuthorizeCreate(caller)
	if err != nil {
		return nil, err
	}

	if req.Mood == "" {
		req.Mood = domain.MoodNeutral
	}
	if err := policy.ValidateNew(req.Tasks, req.TimeSpent, req.Mood); err != nil {
		return nil, err
	}

	log := domain.NewLog(uuid.New().String(), ownerID, req.Date, req.Tasks, req.TimeSpent, req.Mood, req.Blockers, req.Tags)
	if err := uc.logRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create log: %w", err)
	}

	uc.logger.Info(ctx, "log created", map[string]interface{}{
		"log_id":   log.ID,
		"owner_id": log.OwnerID,
	})

	return log, nil
}

// ListOwn returns the caller's own logs, most recent first
func (uc *LogUseCase) ListOwn(ctx context.Context, caller domain.Identity) ([]*domain.Log, error) {
	scope := policy.AuthorizeListOwn(caller)

	logs, err := uc.logRepo.ListByOwner(ctx, scope.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	return logs, nil
}

// ListAll returns every developer's logs matching the composed filter,
// annotated with the owner's display name. Manager only.
func (uc *LogUseCase) ListAll(ctx context.Context, caller domain.Identity, spec domain.FilterSpec) ([]*domain.LogWithOwner, error) {
	pred, err := policy.AuthorizeListAll(caller, spec)
	if err != nil {
		return nil, err
	}

	all, err := uc.logRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	matched := make([]*domain.LogWithOwner, 0, len(all))
	for _, rec := range all {
		if pred.Matches(*rec) {
			matched = append(matched, rec)
		}
	}

	return matched, nil
}

// Summarize aggregates the logs matching the composed filter into
// dashboard figures. Manager only, same filter semantics as ListAll.
func (uc *LogUseCase) Summarize(ctx context.Context, caller domain.Identity, spec domain.FilterSpec) (*domain.Summary, error) {
	matched, err := uc.ListAll(ctx, caller, spec)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(matched), nil
}

// Update patches an unreviewed log's content fields for its owner.
// A missing or foreign record rejects as Forbidden, matching the
// update path's historical behavior.
func (uc *LogUseCase) Update(ctx context.Context, caller domain.Identity, id string, patch domain.LogPatch) (*domain.Log, error) {
	log, err := uc.logRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrLogNotFound) {
			return nil, apperror.Forbidden("not allowed to edit this log")
		}
		return nil, fmt.Errorf("failed to find log: %w", err)
	}

	if err := policy.AuthorizeUpdate(caller, log, patch); err != nil {
		return nil, err
	}

	log.Apply(patch)
	if err := uc.logRepo.Update(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to update log: %w", err)
	}

	uc.logger.Info(ctx, "log updated", map[string]interface{}{
		"log_id":   log.ID,
		"owner_id": log.OwnerID,
	})

	return log, nil
}

// Delete removes the caller's own log. A missing or foreign record
// rejects as NotFound, unlike update.
func (uc *LogUseCase) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if err := uc.logRepo.DeleteByOwner(ctx, id, caller.ID); err != nil {
		if errors.Is(err, ports.ErrLogNotFound) {
			return apperror.NotFound("log not found")
		}
		return fmt.Errorf("failed to delete log: %w", err)
	}

	uc.logger.Info(ctx, "log deleted", map[string]interface{}{
		"log_id":   id,
		"owner_id": caller.ID,
	})

	return nil
}

// Review marks a log reviewed with feedback. Manager only; calling it
// again overwrites the feedback while the flag stays set.
func (uc *LogUseCase) Review(ctx context.Context, caller domain.Identity, id, feedback string) (*domain.Log, error) {
	log, err := uc.logRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrLogNotFound) {
			return nil, apperror.NotFound("log not found")
		}
		return nil, fmt.Errorf("failed to find log: %w", err)
	}

	if err := policy.AuthorizeReview(caller, log); err != nil {
		return nil, err
	}

	log.Review(feedback)
	if err := uc.logRepo.Update(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to update log: %w", err)
	}

	uc.logger.Info(ctx, "log reviewed", map[string]interface{}{
		"log_id":      log.ID,
		"reviewer_id": caller.ID,
	})

	return log, nil
}
