// Package policy decides whether a caller may perform an operation on
// a log and computes the effective scope or change. It is pure: no
// I/O, no state shared between calls.
package policy

import (
	"github.com/devlog/devlog/internal/domain"
	"github.com/devlog/devlog/pkg/apperror"
)

// OwnScope is the query constraint for a caller's own listing: the
// scope is forced to the caller's id inside the policy, never taken
// from the request.
type OwnScope struct {
	OwnerID string
}

// AuthorizeCreate permits log creation for developers only. The
// returned owner id overrides anything supplied in the input.
func AuthorizeCreate(caller domain.Identity) (string, error) {
	if caller.Role != domain.RoleDeveloper {
		return "", apperror.Forbidden("only developers can submit logs")
	}
	return caller.ID, nil
}

// AuthorizeListOwn permits any authenticated caller to list their own
// logs, scoped to their identity.
func AuthorizeListOwn(caller domain.Identity) OwnScope {
	return OwnScope{OwnerID: caller.ID}
}

// AuthorizeListAll permits managers to list every developer's logs
// through the composed filter predicate, unscoped by owner.
func AuthorizeListAll(caller domain.Identity, spec domain.FilterSpec) (domain.Predicate, error) {
	if !caller.IsManager() {
		return domain.Predicate{}, apperror.Forbidden("manager role required")
	}
	pred, err := domain.Compose(spec)
	if err != nil {
		return domain.Predicate{}, apperror.Validation("invalid date filter, expected YYYY-MM-DD")
	}
	return pred, nil
}

// AuthorizeUpdate permits the owner to patch an unreviewed log.
// Ownership mismatch and reviewed state yield distinct rejections.
// The patch type itself restricts changes to the content fields.
func AuthorizeUpdate(caller domain.Identity, log *domain.Log, patch domain.LogPatch) error {
	if log.OwnerID != caller.ID {
		return apperror.Forbidden("not allowed to edit this log")
	}
	if log.Reviewed {
		return apperror.ReadOnly("cannot edit a reviewed log")
	}
	if patch.IsEmpty() {
		return apperror.Validation("patch must change at least one field")
	}
	return validatePatch(patch)
}

// AuthorizeDelete permits the owner to delete their log. Reviewed
// state does not block deletion, unlike update.
func AuthorizeDelete(caller domain.Identity, log *domain.Log) error {
	if log.OwnerID != caller.ID {
		return apperror.NotFound("log not found")
	}
	return nil
}

// AuthorizeReview permits managers to mark a log reviewed and attach
// feedback. Re-reviewing is allowed: the flag stays true and only the
// feedback text changes.
func AuthorizeReview(caller domain.Identity, log *domain.Log) error {
	if !caller.IsManager() {
		return apperror.Forbidden("manager role required")
	}
	return nil
}

// ValidateNew checks the content fields of a log about to be created
func ValidateNew(tasks string, timeSpent float64, mood domain.Mood) error {
	if tasks == "" {
		return apperror.Validation("tasks is required")
	}
	if timeSpent < 0 {
		return apperror.Validation("time spent must not be negative")
	}
	if !mood.IsValid() {
		return apperror.Validation("mood must be one of happy, neutral, sad")
	}
	return nil
}

func validatePatch(patch domain.LogPatch) error {
	if patch.Tasks != nil && *patch.Tasks == "" {
		return apperror.Validation("tasks cannot be empty")
	}
	if patch.TimeSpent != nil && *patch.TimeSpent < 0 {
		return apperror.Validation("time spent must not be negative")
	}
	if patch.Mood != nil && !patch.Mood.IsValid() {
		return apperror.Validation("mood must be one of happy, neutral, sad")
	}
	return nil
}
