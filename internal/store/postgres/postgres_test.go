package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestGetUserByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "created_at", "updated_at"}).
		AddRow("1", "user@example.com", "hash", string(models.RoleViewer), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("user@example.com").
		WillReturnRows(rows)

	user, err := s.GetUserByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := s.CreateUser(context.Background(), &models.User{Email: "user@example.com", PasswordHash: "hash", Role: models.RoleViewer})
	assert.ErrorIs(t, err, store.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDataset(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	mock.ExpectExec("INSERT INTO datasets").WillReturnResult(sqlmock.NewResult(1, 1))

	dataset := &models.Dataset{DrugName: "Drug", StudyID: "S1", DatasetType: "pk", OwnerID: "u1"}
	err := s.CreateDataset(context.Background(), dataset)
	require.NoError(t, err)
	assert.NotEmpty(t, dataset.ID)
	assert.NotNil(t, dataset.Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDatasetBuildsPartialSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE datasets SET drug_name = $1, updated_at = $2 WHERE id = $3")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{"id", "drug_name", "study_id", "dataset_type", "metadata", "file_name", "owner_id", "locked", "created_at", "updated_at"}).
		AddRow("d1", "Drug B", "S1", "pk", []byte(`{}`), nil, "u1", false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, drug_name, study_id, dataset_type, metadata, file_name, owner_id, locked, created_at, updated_at FROM datasets WHERE id = $1 LIMIT 1")).
		WithArgs("d1").
		WillReturnRows(rows)

	name := "Drug B"
	updated, err := s.UpdateDataset(context.Background(), "d1", models.DatasetPatch{DrugName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Drug B", updated.DrugName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDatasetNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	mock.ExpectExec("UPDATE datasets SET").WillReturnResult(sqlmock.NewResult(0, 0))

	name := "Drug"
	_, err := s.UpdateDataset(context.Background(), "missing", models.DatasetPatch{DrugName: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetDatasetLock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE datasets SET locked = $2, updated_at = $3 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{"id", "drug_name", "study_id", "dataset_type", "metadata", "file_name", "owner_id", "locked", "created_at", "updated_at"}).
		AddRow("d1", "Drug", "S1", "pk", []byte(`{}`), nil, "u1", true, now, now)
	mock.ExpectQuery("SELECT .+ FROM datasets WHERE id = \\$1").
		WithArgs("d1").
		WillReturnRows(rows)

	dataset, err := s.SetDatasetLock(context.Background(), "d1", true)
	require.NoError(t, err)
	assert.True(t, dataset.Locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLogEntry(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.AuditLogEntry{DatasetID: "d1", ActorID: "u1", Action: models.AuditActionLockDataset, Details: models.JSONMap{"locked": true}}
	err := s.CreateAuditLogEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccessRequestsByDataset(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "dataset_id", "requester_id", "reason", "status", "created_at"}).
		AddRow("r1", "d1", "u1", "analysis", string(models.StatusPending), now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, dataset_id, requester_id, reason, status, created_at FROM access_requests WHERE dataset_id = $1 ORDER BY created_at ASC")).
		WithArgs("d1").
		WillReturnRows(rows)

	requests, err := s.ListAccessRequestsByDataset(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.StatusPending, requests[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRoleUpgradeRequestStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	s := New(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE role_upgrade_requests SET status = $2 WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	rows := sqlmock.NewRows([]string{"id", "requester_id", "requested_role", "reason", "status", "created_at"}).
		AddRow("rr1", "u1", string(models.RoleResearcher), "need access", string(models.StatusApproved), now)
	mock.ExpectQuery("SELECT .+ FROM role_upgrade_requests WHERE id = \\$1").
		WithArgs("rr1").
		WillReturnRows(rows)

	request, err := s.SetRoleUpgradeRequestStatus(context.Background(), "rr1", models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
