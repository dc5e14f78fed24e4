package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
)

// Auditor receives workflow events after they commit.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role domain.Role
}

func (a Actor) IsManager() bool {
	return a.Role == domain.RoleManager
}

var now = func() time.Time { return time.Now().UTC() }

// gate turns an evaluation into the use-case decision. Warnings pass
// only when the caller has acknowledged them.
func gate(res domain.ConflictCheckResult, acknowledged bool) error {
	switch res.Outcome {
	case domain.OutcomeIndeterminate:
		return httperr.ErrBusiness("conflict_check_unavailable")
	case domain.OutcomeBlock:
		return httperr.ConflictError{Code: "ministry_conflict", Conflicts: res.Conflicts}
	case domain.OutcomeWarning:
		if !acknowledged {
			return httperr.ConflictError{Code: "conflict_requires_ack", Conflicts: res.Conflicts}
		}
	}
	return nil
}

func managerIDs(ctx context.Context, repo domain.Repository) ([]string, error) {
	return repo.ListProfileIDsByRole(ctx, domain.RoleManager)
}
