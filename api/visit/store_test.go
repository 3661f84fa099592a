package visit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapInsertError(t *testing.T) {
	t.Run("unique violation becomes ErrDuplicate", func(t *testing.T) {
		err := mapInsertError(&pgconn.PgError{Code: "23505", ConstraintName: "ux_visit_log_daily"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("wrapped unique violation still detected", func(t *testing.T) {
		wrapped := fmt.Errorf("insert visit: %w", &pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, mapInsertError(wrapped), ErrDuplicate)
	})

	t.Run("foreign key violation passes through", func(t *testing.T) {
		fk := &pgconn.PgError{Code: "23503"}
		err := mapInsertError(fk)
		assert.NotErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, error(fk), err)
	})

	t.Run("plain error passes through", func(t *testing.T) {
		plain := errors.New("connection reset")
		assert.Equal(t, plain, mapInsertError(plain))
	})
}

func TestCanTransition(t *testing.T) {
	statuses := []string{
		CollectionPendingApproval,
		CollectionApproved,
		CollectionRejected,
		CollectionDeposited,
		"", // visit without declared cash
	}
	// The only eligible source per action. Firing from anywhere else,
	// including a repeat of the same action, is a no-op.
	eligible := map[string]string{
		ActionApprove: CollectionPendingApproval,
		ActionReject:  CollectionPendingApproval,
		ActionDeposit: CollectionApproved,
	}
	for action, from := range eligible {
		for _, current := range statuses {
			name := fmt.Sprintf("%s from %q", action, current)
			t.Run(name, func(t *testing.T) {
				assert.Equal(t, current == from, CanTransition(current, action))
			})
		}
	}

	t.Run("unknown action never fires", func(t *testing.T) {
		assert.False(t, CanTransition(CollectionPendingApproval, "archive"))
	})
}

func TestPrecondition(t *testing.T) {
	assert.Equal(t, CollectionPendingApproval, Precondition(ActionApprove))
	assert.Equal(t, CollectionPendingApproval, Precondition(ActionReject))
	assert.Equal(t, CollectionApproved, Precondition(ActionDeposit))
	assert.Empty(t, Precondition("archive"))
}
