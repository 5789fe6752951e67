package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/goerror"
	"github.com/shandysiswandi/clearshot/internal/pkg/jwt"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 100
)

type AuditListInput struct {
	Limit int
}

type AuditListOutput struct {
	Entries []entity.AuditEntry
}

// AuditList returns the caller's own recent send and verify attempts,
// newest first.
func (s *Usecase) AuditList(ctx context.Context, in AuditListInput) (*AuditListOutput, error) {
	ctx, span := s.startSpan(ctx, "AuditList")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if in.Limit <= 0 {
		in.Limit = defaultAuditLimit
	}
	in.Limit = min(in.Limit, maxAuditLimit)

	entries, err := s.repoDB.ListAuditEntries(ctx, entity.AuditFilter{
		Value: clm.Subject,
		Limit: in.Limit,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list audit entries", "limit", in.Limit, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AuditListOutput{Entries: entries}, nil
}
