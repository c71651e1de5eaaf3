package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/underneath-app/underneath/internal/domain"
	"github.com/underneath-app/underneath/internal/repository/postgres"
	"github.com/underneath-app/underneath/internal/testutil"
	"gorm.io/gorm"
)

func TestConnectionRepository_GetActive(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewConnectionRepository(testDB.DB)
	ctx := context.Background()

	dom, _ := testutil.NewUserBuilder().WithRole(domain.RoleDom).Build(t, testDB.DB)
	sub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, testDB.DB)
	connection := testutil.NewConnectionBuilder(dom, sub).Build(t, testDB.DB)

	byDom, err := repo.GetActiveByDomID(ctx, dom.ID)
	require.NoError(t, err)
	assert.Equal(t, connection.ID, byDom.ID)
	require.NotNil(t, byDom.Sub, "sub should be preloaded")

	bySub, err := repo.GetActiveBySubID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, connection.ID, bySub.ID)

	_, err = repo.GetActiveByDomID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConnectionRepository_GetActiveIgnoresTerminated(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewConnectionRepository(testDB.DB)
	ctx := context.Background()

	dom, _ := testutil.NewUserBuilder().WithRole(domain.RoleDom).Build(t, testDB.DB)
	sub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, testDB.DB)
	testutil.NewConnectionBuilder(dom, sub).
		WithStatus(domain.ConnectionStatusTerminated).
		Build(t, testDB.DB)

	_, err := repo.GetActiveByDomID(ctx, dom.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// The partial unique indexes are the last line of defense for the
// one-active-connection rule; verify they actually reject a second ACTIVE
// row for the same dom or sub.
func TestConnectionRepository_ActiveUniqueIndexes(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewConnectionRepository(testDB.DB)
	ctx := context.Background()

	dom, _ := testutil.NewUserBuilder().WithRole(domain.RoleDom).Build(t, testDB.DB)
	sub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, testDB.DB)
	otherSub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, testDB.DB)
	otherDom, _ := testutil.NewUserBuilder().WithRole(domain.RoleDom).Build(t, testDB.DB)

	testutil.NewConnectionBuilder(dom, sub).Build(t, testDB.DB)

	now := time.Now()

	sameDom := &domain.Connection{
		ID:        uuid.New(),
		DomID:     dom.ID,
		SubID:     otherSub.ID,
		Status:    domain.ConnectionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.Create(ctx, sameDom), gorm.ErrDuplicatedKey)

	sameSub := &domain.Connection{
		ID:        uuid.New(),
		DomID:     otherDom.ID,
		SubID:     sub.ID,
		Status:    domain.ConnectionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.Create(ctx, sameSub), gorm.ErrDuplicatedKey)

	// A terminated row does not block a new pairing.
	terminated := &domain.Connection{
		ID:        uuid.New(),
		DomID:     otherDom.ID,
		SubID:     otherSub.ID,
		Status:    domain.ConnectionStatusTerminated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, terminated))

	fresh := &domain.Connection{
		ID:        uuid.New(),
		DomID:     otherDom.ID,
		SubID:     otherSub.ID,
		Status:    domain.ConnectionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, fresh))
}

func TestConnectionRepository_ListAndCount(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewConnectionRepository(testDB.DB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dom, _ := testutil.NewUserBuilder().WithRole(domain.RoleDom).Build(t, testDB.DB)
		sub, _ := testutil.NewUserBuilder().WithRole(domain.RoleSub).Build(t, testDB.DB)
		connection := testutil.NewConnectionBuilder(dom, sub).Build(t, testDB.DB)

		// Stagger created_at so ordering is deterministic.
		createdAt := time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, testDB.DB.Model(connection).Update("created_at", createdAt).Error)
	}

	connections, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, connections, 2)
	assert.True(t, connections[0].CreatedAt.After(connections[1].CreatedAt), "newest first")

	rest, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
