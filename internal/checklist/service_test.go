package checklist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/complyhub/compliance-management-api/internal/checklist/model"
	compliancemodel "github.com/complyhub/compliance-management-api/internal/compliance/model"
	"github.com/complyhub/compliance-management-api/internal/lifecycle"
	"github.com/complyhub/compliance-management-api/internal/schema"
	"github.com/complyhub/compliance-management-api/internal/system/error/serviceerror"
	"github.com/complyhub/compliance-management-api/internal/system/storage"
	"github.com/complyhub/compliance-management-api/internal/testutil"
)

const legacyChecklist = `{
	"title": "Onboarding",
	"items": [
		{"id": "i1", "name": "Signed NDA", "type": "document", "autoFail": true},
		{"id": "i2", "name": "Laptop encrypted", "type": "yesno"}
	]
}`

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	service    ChecklistService
	store      *MockChecklistStore
	frameworks *MockFrameworkStore
	objects    *storage.FileStorage
	tx         *testutil.Transactioner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	objects, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		store:      &MockChecklistStore{},
		frameworks: &MockFrameworkStore{},
		objects:    objects,
		tx:         &testutil.Transactioner{},
	}
	f.service = NewChecklistService(f.store, f.frameworks, f.objects, f.tx, testutil.Gate(),
		Settings{PassThreshold: 70, StrictValidation: true, MaxUploadBytes: 1 << 20}, nil,
		func() time.Time { return fixedNow })
	return f
}

func activeChecklist() *model.Checklist {
	return &model.Checklist{ID: "cl-1", ComplianceID: "c-1", ChecklistSchema: []byte(legacyChecklist), Status: lifecycle.StatusActive}
}

func TestCreateChecklist_NormalizesLegacy(t *testing.T) {
	f := newFixture(t)
	f.frameworks.On("GetByID", mock.Anything, "c-1").Return(&compliancemodel.Compliance{ID: "c-1"}, nil)

	var stored *model.Checklist
	f.store.On("Create", mock.Anything, mock.AnythingOfType("*model.Checklist")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.Checklist) }).
		Return(nil)

	checklist, svcErr := f.service.CreateChecklist(testutil.As(testutil.Admin),
		model.CreateRequest{ComplianceID: "c-1", ChecklistSchema: legacyChecklist})

	require.Nil(t, svcErr)
	assert.Equal(t, "Onboarding", checklist.Title)
	require.NotNil(t, stored)

	var doc schema.ChecklistSchema
	require.NoError(t, json.Unmarshal(stored.ChecklistSchema, &doc))
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, schema.LegacySectionName, doc.Sections[0].Name)
	assert.Equal(t, []string{"i1", "i2"}, []string{doc.Sections[0].Items[0].ID, doc.Sections[0].Items[1].ID})
}

func TestCreateChecklist_StrictRejectsEmptySection(t *testing.T) {
	f := newFixture(t)
	f.frameworks.On("GetByID", mock.Anything, "c-1").Return(&compliancemodel.Compliance{ID: "c-1"}, nil)

	_, svcErr := f.service.CreateChecklist(testutil.As(testutil.Admin), model.CreateRequest{
		ComplianceID:    "c-1",
		ChecklistSchema: `{"title":"x","sections":[{"id":"s1","name":"Empty","items":[]}]}`,
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestGetForEdit_Legacy(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)

	view, svcErr := f.service.GetForEdit(testutil.As(testutil.Admin), "cl-1")

	require.Nil(t, svcErr)
	assert.True(t, view.Legacy)
	require.Len(t, view.ChecklistSchema.Sections, 1)
	assert.Equal(t, "General", view.ChecklistSchema.Sections[0].Name)
	assert.Len(t, view.ChecklistSchema.Sections[0].Items, 2)
}

func TestUploadDocument_StoresUnderItemPrefix(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)

	doc, svcErr := f.service.UploadDocument(testutil.As(testutil.User), "cl-1", Upload{
		ItemID: "i1", FileName: "../../nda final.pdf", ContentType: "application/pdf",
		Size: 5, Body: strings.NewReader("%PDF-"),
	})

	require.Nil(t, svcErr)
	assert.True(t, strings.HasPrefix(doc.Key, "checklists/cl-1/i1/"))
	assert.True(t, strings.HasSuffix(doc.Key, "-nda_final.pdf"))

	reader, err := f.objects.Get(context.Background(), doc.Key)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(content))
}

func TestUploadDocument_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		wantErr string
	}{
		{"unknown item", Upload{ItemID: "zz", Size: 1}, "Unknown checklist item"},
		{"yes/no item", Upload{ItemID: "i2", Size: 1}, "does not accept documents"},
		{"too large", Upload{ItemID: "i1", Size: 2 << 20}, "upload limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)
			tt.upload.Body = bytes.NewReader(nil)

			_, svcErr := f.service.UploadDocument(testutil.As(testutil.User), "cl-1", tt.upload)

			require.NotNil(t, svcErr)
			assert.Contains(t, svcErr.ErrorDescription, tt.wantErr)
		})
	}
}

func TestSubmitResponse_WithUploadedEvidence(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.AnythingOfType("*model.ChecklistResponse")).Return(nil)

	doc, svcErr := f.service.UploadDocument(testutil.As(testutil.User), "cl-1",
		Upload{ItemID: "i1", FileName: "nda.pdf", Size: 3, Body: strings.NewReader("pdf")})
	require.Nil(t, svcErr)

	response, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "cl-1", model.SubmitRequest{
		Answers: schema.ChecklistAnswers{
			"i1": {DocumentKey: doc.Key},
			"i2": {Value: "no"},
		},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, "completed", response.Status)
	require.NotNil(t, response.Score)
	assert.Equal(t, 50.0, response.Score.Percentage)
	assert.Equal(t, schema.ResultFailed, response.Score.Result)
	assert.Equal(t, "tenant-a", *response.TenantID)
}

func TestSubmitResponse_ForeignDocumentKey(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)

	_, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "cl-1", model.SubmitRequest{
		Answers: schema.ChecklistAnswers{
			"i1": {DocumentKey: "checklists/other/i1/x.pdf"},
			"i2": {Value: "yes"},
		},
	})

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "was not uploaded to this checklist")
	assert.Zero(t, f.tx.Calls)
}

func TestSubmitResponse_TraversingDocumentKey(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)
	require.NoError(t, f.objects.Put(context.Background(), "checklists/other/i1/x.pdf",
		strings.NewReader("pdf"), storage.ObjectMetadata{}))

	_, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "cl-1", model.SubmitRequest{
		Answers: schema.ChecklistAnswers{
			"i1": {DocumentKey: "checklists/cl-1/i1/../../other/i1/x.pdf"},
			"i2": {Value: "yes"},
		},
	})

	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "was not uploaded to this checklist")
	assert.Zero(t, f.tx.Calls)
}

func TestSubmitResponse_DraftSkipsChecks(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)
	f.store.On("CreateResponse", mock.Anything, mock.Anything).Return(nil)

	response, svcErr := f.service.SubmitResponse(testutil.As(testutil.User), "cl-1", model.SubmitRequest{Draft: true})

	require.Nil(t, svcErr)
	assert.Equal(t, "draft", response.Status)
	assert.Nil(t, response.Score)
}

func TestDeleteChecklist_BlockedWhenUsed(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetByID", mock.Anything, "cl-1").Return(activeChecklist(), nil)
	f.frameworks.On("HasResponses", mock.Anything, "c-1").Return(true, nil)

	svcErr := f.service.DeleteChecklist(testutil.As(testutil.Admin), "cl-1")

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report.pdf", sanitizeFileName("report.pdf"))
	assert.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "evidence.png", sanitizeFileName(`C:\Users\me\evidence.png`))
	assert.Equal(t, "document", sanitizeFileName(".."))
}
