package form

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
	"github.com/complyhub/compliance-management-api/internal/system/database/provider"
)

func newStoreWithMock(t *testing.T) (FormStore, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewFormStore(provider.NewDBClient(sqlxDB, "mysql")), sqlxDB, mock
}

func TestStore_GetByIDReadsTitle(t *testing.T) {
	store, _, mock := newStoreWithMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetFormByID.Query)).
		WithArgs("form-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "compliance_id", "form_schema", "status", "created_by", "created_at", "updated_at"}).
			AddRow("form-1", "c-1", []byte(accessReviewSchema), "active", "admin-1", now, now))

	form, err := store.GetByID(context.Background(), "form-1")

	require.NoError(t, err)
	require.NotNil(t, form)
	assert.Equal(t, "Access review", form.Title)
	assert.Equal(t, lifecycle.StatusActive, form.Status)
	assert.JSONEq(t, accessReviewSchema, string(form.FormSchema))
}

func TestStore_CreateResponse(t *testing.T) {
	store, db, mock := newStoreWithMock(t)
	now := time.Now().UTC()
	tenant := "tenant-a"
	response := &model.FormResponse{
		ID: "r-1", FormID: "form-1", UserID: "user-1", TenantID: &tenant,
		Answers: schema.Answers{"f1": "Yes"}, Status: "completed",
		Score:     &schema.Score{Marks: 10, MaxMarks: 10, Percentage: 100, Result: schema.ResultPass},
		CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(QueryCreateFormResponse.Query)).
		WithArgs("r-1", "form-1", "user-1", "tenant-a", `{"f1":"Yes"}`, "completed", 10.0, 10.0, 100.0, "pass", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, store.CreateResponse(tx, response))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListResponses(t *testing.T) {
	store, _, mock := newStoreWithMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(QueryListFormResponses.Query)).
		WithArgs("form-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "form_id", "user_id", "tenant_id", "answers", "status", "marks", "max_marks", "percentage", "result", "comments", "created_at"}).
			AddRow("r-1", "form-1", "user-1", "tenant-a", `{"f1":"No"}`, "completed", "0.00", "10.00", "0.00", "failed", nil, now).
			AddRow("r-2", "form-1", "user-1", nil, `{}`, "draft", nil, nil, nil, nil, nil, now))

	responses, err := store.ListResponses(context.Background(), "form-1")

	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "No", responses[0].Answers["f1"])
	require.NotNil(t, responses[0].Score)
	assert.Equal(t, schema.ResultFailed, responses[0].Score.Result)
	assert.Equal(t, 10.0, responses[0].Score.MaxMarks)
	assert.Nil(t, responses[1].Score)
}
