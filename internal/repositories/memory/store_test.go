package memory_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kantorly/currency_exchange_app/internal/core/domain"
	"github.com/kantorly/currency_exchange_app/internal/repositories/memory"
)

func TestFindUsers_PaginationIsStable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.SaveUser(ctx, domain.User{
			UserID:    "user-" + strconv.Itoa(i),
			FirstName: "name-" + strconv.Itoa(i),
			Email:     "user-" + strconv.Itoa(i) + "@example.com",
			AuditFields: domain.AuditFields{
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			},
		})
		require.NoError(t, err)
	}

	// oldest first, and pages must not overlap or skip
	firstPage, err := store.FindUsers(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.Equal(t, "user-0", firstPage[0].UserID)
	require.Equal(t, "user-1", firstPage[1].UserID)

	secondPage, err := store.FindUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.Equal(t, "user-2", secondPage[0].UserID)
	require.Equal(t, "user-3", secondPage[1].UserID)

	lastPage, err := store.FindUsers(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, lastPage, 1)
	require.Equal(t, "user-4", lastPage[0].UserID)

	empty, err := store.FindUsers(ctx, 2, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestFindUsers_TiesBreakByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"user-c", "user-a", "user-b"} {
		err := store.SaveUser(ctx, domain.User{
			UserID:      id,
			FirstName:   "name-" + id,
			Email:       id + "@example.com",
			AuditFields: domain.AuditFields{CreatedAt: at},
		})
		require.NoError(t, err)
	}

	users, err := store.FindUsers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, "user-a", users[0].UserID)
	require.Equal(t, "user-b", users[1].UserID)
	require.Equal(t, "user-c", users[2].UserID)
}
