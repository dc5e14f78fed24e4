package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
)

type CheckConflicts struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewCheckConflicts(repo domain.Repository, log *zap.Logger) *CheckConflicts {
	return &CheckConflicts{repo: repo, log: log}
}

// Execute is a read-only preview used by forms before submitting. A
// malformed excludeID is rejected before the store is queried.
func (uc *CheckConflicts) Execute(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID string,
) (domain.ConflictCheckResult, error) {
	if excludeID != "" {
		if _, err := uuid.Parse(excludeID); err != nil {
			return domain.ConflictCheckResult{}, httperr.ErrBusiness("invalid_id")
		}
	}
	return domain.NewEvaluator(uc.repo, uc.log).Evaluate(ctx, start, end, excludeID)
}
