package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/compliance-management-api/internal/permission"
	dbmodel "github.com/complyhub/compliance-management-api/internal/system/database/model"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
	"github.com/complyhub/compliance-management-api/internal/user/model"
)

var profileRowColumns = []string{"id", "user_id", "email", "role", "tenant_id", "revoked", "created_at", "updated_at"}

func newStoreWithMock(t *testing.T) (UserStore, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewUserStore(provider.NewDBClient(sqlxDB, "mysql")), sqlxDB, mock
}

func TestStore_GetCaller(t *testing.T) {
	store, _, mock := newStoreWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetProfileByUserID.Query)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("p-1", "u-1", "u@example.com", "manager", "tenant-a", int64(1), created, created))

	caller, err := store.GetCaller(context.Background(), "u-1")

	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, permission.RoleManager, caller.Role)
	assert.Equal(t, "tenant-a", caller.TenantID)
	assert.Equal(t, "p-1", caller.ProfileID)
	assert.True(t, caller.Revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetCaller_NoProfile(t *testing.T) {
	store, _, mock := newStoreWithMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetProfileByUserID.Query)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	caller, err := store.GetCaller(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestStore_ListByTenant(t *testing.T) {
	store, _, mock := newStoreWithMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(QueryListProfilesByTenant.Query)).
		WithArgs("tenant-a").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("p-1", "u-1", "a@example.com", "user", "tenant-a", int64(0), created, created).
			AddRow("p-2", "u-2", "b@example.com", "external_auditor", "tenant-a", int64(0), created, created))

	profiles, err := store.List(context.Background(), "tenant-a")

	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, permission.RoleExternalAuditor, profiles[1].Role)
	assert.False(t, profiles[0].Revoked)
}

func TestStore_CreateAndRevoke(t *testing.T) {
	store, sqlxDB, mock := newStoreWithMock(t)
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	p := &model.Profile{ID: "p-1", UserID: "u-1", Email: "a@example.com", Role: permission.RoleAdmin, CreatedAt: now, UpdatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(QueryCreateProfile.Query)).
		WithArgs("p-1", "u-1", "a@example.com", "admin", nil, false, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(QueryUpdateProfileRevoked.Query)).
		WithArgs(true, now, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)
	var txi dbmodel.TxInterface = tx
	require.NoError(t, store.Create(txi, p))
	require.NoError(t, store.SetRevoked(txi, "u-1", true, now))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
