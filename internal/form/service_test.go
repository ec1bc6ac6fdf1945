package form

import (
	"errors"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditmodel "github.com/complyhub/compliance-management-api/internal/audit/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/form/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/metrics"
	"github.com/complyhub/compliance-management-api/internal/testutil"
)

const accessReviewSchema = `{
	"title": "Access review",
	"fields": [
		{"id": "f1", "type": "radio", "label": "MFA enabled", "required": true, "weightage": 10,
		 "enhancedOptions": [{"value": "Yes", "points": 10}, {"value": "No", "points": 0, "isFailOption": true}]},
		{"id": "f2", "type": "email", "label": "Owner", "required": true}
	]
}`

const emptyCheckboxSchema = `{"title": "Broken", "fields": [{"id": "f1", "type": "checkbox", "label": "Pick", "options": []}]}`

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service    FormService
	store      *MockFormStore
	frameworks *MockFrameworkStore
	audits     *MockAuditStore
	tx         *testutil.Transactioner
	recorder   *metrics.Recorder
}

func newFixture(strict bool) *fixture {
	f := &fixture{
		store:      &MockFormStore{},
		frameworks: &MockFrameworkStore{},
		audits:     &MockAuditStore{},
		tx:         &testutil.Transactioner{},
		recorder:   metrics.NewRecorder(),
	}
	f.service = NewFormService(f.store, f.frameworks, f.audits, f.tx, testutil.Gate(),
		Settings{PassThreshold: 70, StrictValidation: strict}, f.recorder, func() time.Time { return fixedNow })
	return f
}

func activeForm() *model.Form {
	return &model.Form{ID: "form-1", ComplianceID: "c-1", Title: "Access review",
		FormSchema: []byte(accessReviewSchema), Status: lifecycle.StatusActive}
}

func TestCreateForm_Success(t *testing.T) {
	f := newFixture(true)
	f.frameworks.On("GetByID", mock.Anything, "c-1").Return(&compliancemodel.Compliance{ID: "c-1"}, nil)
	f.store.On("Create", mock.Anything, mock.AnythingOfType("*model.Form")).Return(nil)

	form, svcErr := f.service.CreateForm(testutil.As(testutil.Admin),
		model.CreateRequest{ComplianceID: "c-1", FormSchema: accessReviewSchema})

	require.Nil(t, svcErr)
	assert.Equal(t, "Access review", form.Title)
	assert.Equal(t, lifecycle.StatusDraft, form.Status)
	assert.Equal(t, 1, f.tx.Calls)
}

func TestCreateForm_SchemaChecks(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		schema  string
		wantErr string
	}{
		{name: "invalid json", strict: false, schema: `{"title":`, wantErr: "Invalid JSON format for schema"},
		{name: "empty", strict: true, schema: " ", wantErr: "form_schema is required"},
		{name: "strict rejects empty checkbox", strict: true, schema: emptyCheckboxSchema, wantErr: "must have at least one option"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.strict)
			f.frameworks.On("GetByID", mock.Anything, "c-1").Return(&compliancemodel.Compliance{ID: "c-1"}, nil)

			_, svcErr := f.service.CreateForm(testutil.As(testutil.Admin),
				model.CreateRequest{ComplianceID: "c-1", FormSchema: tt.schema})

			require.NotNil(t, svcErr)
			assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
			assert.Contains(t, svcErr.ErrorDescription, tt.wantErr)
			f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateForm_LenientAcceptsEmptyCheckbox(t *testing.T) {
	f := newFixture(false)
	f.frameworks.On("GetByID", mock.Anything, "c-1").Return(&compliancemodel.Compliance{ID: "c-1"}, nil)
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, svcErr := f.service.CreateForm(testutil.As(testutil.Admin),
		model.CreateRequest{ComplianceID: "c-1", FormSchema: emptyCheckboxSchema})
	assert.Nil(t, svcErr)
}

func TestCreateForm_UnknownFramework(t *testing.T) {
	f := newFixture(true)
	f.frameworks.On("GetByID", mock.Anything, "nope").Return(nil, nil)

	_, svcErr := f.service.CreateForm(testutil.As(testutil.Admin),
		model.CreateRequest{ComplianceID: "nope", FormSchema: accessReviewSchema})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestUpdateSchema_BlockedWhenFrameworkUsed(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.frameworks.On("HasResponses", mock.Anything, "c-1").Return(true, nil)

	_, svcErr := f.service.UpdateSchema(testutil.As(testutil.Admin), "form-1",
		model.UpdateSchemaRequest{FormSchema: accessReviewSchema})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
	assert.Zero(t, f.tx.Calls)
}

func TestChangeStatus_IllegalTransition(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)

	_, svcErr := f.service.ChangeStatus(testutil.As(testutil.Admin), "form-1", lifecycle.ActionActivate)

	require.NotNil(t, svcErr)
	assert.Equal(t, "Cannot activate a form in active status", svcErr.ErrorDescription)
}

func TestSubmitResponse_ScoresAndWritesAudit(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.AnythingOfType("*model.FormResponse")).Return(nil)

	var written *auditmodel.Audit
	f.audits.On("Create", mock.Anything, mock.AnythingOfType("*model.Audit")).
		Run(func(args mock.Arguments) { written = args.Get(1).(*auditmodel.Audit) }).
		Return(nil)

	response, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{
		Answers: schema.Answers{"f1": "Yes", "f2": "owner@example.com"},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, auditmodel.StatusCompleted, response.Status)
	require.NotNil(t, response.Score)
	assert.Equal(t, 100.0, response.Score.Percentage)
	assert.Equal(t, schema.ResultPass, response.Score.Result)
	assert.Equal(t, 1, f.tx.Calls)

	require.NotNil(t, written)
	assert.Equal(t, response.ID, written.FormResponseID)
	assert.Equal(t, "c-1", written.ComplianceID)
	assert.Equal(t, "tenant-a", *written.TenantID)
	assert.Equal(t, auditmodel.VerificationPending, *written.VerificationStatus)
	assert.Equal(t, "pass", *written.Result)
	count, err := promtestutil.GatherAndCount(f.recorder.Registry(), "compliance_mgt_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitResponse_FailOption(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)
	f.audits.On("Create", mock.Anything, mock.Anything).Return(nil)

	response, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{
		Answers: schema.Answers{"f1": "No", "f2": "owner@example.com"},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, schema.ResultFailed, response.Score.Result)
	assert.True(t, response.Score.AutoFailed)
}

func TestSubmitResponse_RequiredAnswers(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)

	_, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{
		Answers: schema.Answers{"f2": "not-an-email"},
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
	assert.Contains(t, svcErr.ErrorDescription, "MFA enabled is required")
	assert.Contains(t, svcErr.ErrorDescription, "Owner must be a valid email address")
	assert.Zero(t, f.tx.Calls)
}

func TestSubmitResponse_DraftSkipsChecks(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)
	f.audits.On("Create", mock.Anything, mock.MatchedBy(func(a *auditmodel.Audit) bool {
		return a.Status == auditmodel.StatusDraft && a.VerificationStatus == nil && a.Percentage == nil
	})).Return(nil)

	response, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{Draft: true})

	require.Nil(t, svcErr)
	assert.Equal(t, auditmodel.StatusDraft, response.Status)
	assert.Nil(t, response.Score)
	f.audits.AssertExpectations(t)
}

func TestSubmitResponse_InactiveForm(t *testing.T) {
	f := newFixture(true)
	form := activeForm()
	form.Status = lifecycle.StatusArchive
	f.store.On("GetByID", mock.Anything, "form-1").Return(form, nil)

	_, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{})

	require.NotNil(t, svcErr)
	assert.Equal(t, "Form is not active", svcErr.ErrorDescription)
}

func TestSubmitResponse_TransactionFailure(t *testing.T) {
	f := newFixture(true)
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)
	f.audits.On("Create", mock.Anything, mock.Anything).Return(errors.New("duplicate key"))

	_, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "form-1", model.SubmitRequest{
		Answers: schema.Answers{"f1": "Yes", "f2": "owner@example.com"},
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ServerErrorType, svcErr.Type)
}

func TestListResponses_TenantScoped(t *testing.T) {
	f := newFixture(true)
	tenantA, tenantB := "tenant-a", "tenant-b"
	f.store.On("GetByID", mock.Anything, "form-1").Return(activeForm(), nil)
	f.store.On("ListResponses", mock.Anything, "form-1").Return([]model.FormResponse{
		{ID: "r-1", TenantID: &tenantA},
		{ID: "r-2", TenantID: &tenantB},
		{ID: "r-3"},
	}, nil)

	responses, svcErr := f.service.ListResponses(testutil.As(testutil.Manager), "form-1")
	require.Nil(t, svcErr)
	require.Len(t, responses, 1)
	assert.Equal(t, "r-1", responses[0].ID)

	_, svcErr = f.service.ListResponses(testutil.As(testutil.User), "form-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
}

func TestListForms_NonAdminSeesActive(t *testing.T) {
	f := newFixture(true)
	f.store.On("List", mock.Anything, "c-1").Return([]model.Form{
		{ID: "a", Status: lifecycle.StatusActive},
		{ID: "b", Status: lifecycle.StatusDraft},
	}, nil)

	forms, svcErr := f.service.ListForms(testutil.As(testutil.User), "c-1")
	require.Nil(t, svcErr)
	require.Len(t, forms, 1)
	assert.Equal(t, "a", forms[0].ID)

	forms, svcErr = f.service.ListForms(testutil.As(testutil.Admin), "c-1")
	require.Nil(t, svcErr)
	assert.Len(t, forms, 2)
}
