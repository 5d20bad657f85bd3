package task

import (
	"context"
	"fmt"

	"github.com/rezkam/taskboard/internal/domain"
)

// Business rule error keys.
const (
	RuleKeyStatus   = "status"
	RuleKeyDeletion = "deletion"
	RuleKeyTitle    = "title"
)

// Rules holds the state-transition checks run against persisted state
// immediately before a mutating write.
type Rules struct{}

// CheckCompletion rejects completing a task that is already completed.
func (Rules) CheckCompletion(t *domain.Task) error {
	if t.IsCompleted() {
		return domain.NewBusinessRuleError(RuleKeyStatus, MsgAlreadyCompleted)
	}
	return nil
}

// CheckDeletion rejects deleting a task that is in progress.
func (Rules) CheckDeletion(t *domain.Task) error {
	if t.Status == domain.TaskStatusInProgress {
		return domain.NewBusinessRuleError(RuleKeyDeletion, MsgDeleteInProgress)
	}
	return nil
}

// CheckTitleAvailable rejects a title that another task already uses.
func (Rules) CheckTitleAvailable(ctx context.Context, repo Repository, title string, excludeID int64) error {
	exists, err := repo.TitleExists(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return domain.NewBusinessRuleError(RuleKeyTitle, MsgTitleTaken)
	}
	return nil
}
