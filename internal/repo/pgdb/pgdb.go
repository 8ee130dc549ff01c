package pgdb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-management-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// translateError maps driver errors onto the repository sentinels. Lost
// serialization and deadlock races come back as ErrSerialization so the
// service layer can retry the whole unit.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return repo_errors.ErrSerialization
		case "23505":
			return repo_errors.ErrAlreadyExists
		}
	}

	return err
}

// documentNumber builds a short human-readable number like RA-2026-1A2B3C4D.
func documentNumber(prefix string, id uuid.UUID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("%s-%d-%s", prefix, at.Year(), short)
}
