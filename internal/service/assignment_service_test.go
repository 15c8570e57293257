package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eduspark/edu-platform-api/internal/models"
	appErrors "github.com/eduspark/edu-platform-api/pkg/errors"
)

type mockAssignmentRepo struct {
	created  []models.Assignment
	statuses map[string]models.AssignmentStatus
	owned    map[int64]int64
}

func (m *mockAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	a.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *a)
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, a *models.Assignment) (int64, error) {
	if owner, ok := m.owned[a.ID]; ok && owner == a.TeacherID {
		return 1, nil
	}
	return 0, nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id, teacherID int64) (int64, error) {
	if owner, ok := m.owned[id]; ok && owner == teacherID {
		delete(m.owned, id)
		return 1, nil
	}
	return 0, nil
}

func (m *mockAssignmentRepo) ListByTeacher(ctx context.Context, teacherID int64) ([]models.TeacherAssignmentRow, error) {
	return nil, nil
}

func (m *mockAssignmentRepo) ListByStudent(ctx context.Context, studentID int64) ([]models.StudentAssignmentRow, error) {
	return nil, nil
}

func (m *mockAssignmentRepo) UpsertStatus(ctx context.Context, assignmentID, studentID int64, status models.AssignmentStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.AssignmentStatus)
	}
	m.statuses[keyFor(assignmentID, studentID)] = status
	return nil
}

func keyFor(assignmentID, studentID int64) string {
	return fmt.Sprintf("%d:%d", assignmentID, studentID)
}

type mockResolver struct {
	mappings map[[3]int64]int64
}

func (m *mockResolver) FindClassCourseID(ctx context.Context, teacherID, classID, courseID int64) (int64, error) {
	if id, ok := m.mappings[[3]int64{teacherID, classID, courseID}]; ok {
		return id, nil
	}
	return 0, sql.ErrNoRows
}

func TestCreateAssignmentResolvesAllocation(t *testing.T) {
	repo := &mockAssignmentRepo{}
	resolver := &mockResolver{mappings: map[[3]int64]int64{{9, 1, 2}: 5}}
	trail := &mockActivityLog{}
	svc := NewAssignmentService(repo, resolver, trail, zap.NewNop())

	assignment, err := svc.Create(context.Background(), 9, CreateAssignmentInput{
		Title: "Fractions worksheet", ClassID: 1, CourseID: 2, DueDate: time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), assignment.ClassCourseID)
	assert.Equal(t, int64(9), assignment.TeacherID)
	assert.Contains(t, trail.entries, models.ActivityCreateAssignment)
}

func TestCreateAssignmentUnheldAllocation(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, &mockResolver{}, &mockActivityLog{}, zap.NewNop())

	_, err := svc.Create(context.Background(), 9, CreateAssignmentInput{
		Title: "Fractions worksheet", ClassID: 1, CourseID: 2, DueDate: time.Now(),
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateAssignmentNotOwned(t *testing.T) {
	repo := &mockAssignmentRepo{owned: map[int64]int64{21: 9}}
	svc := NewAssignmentService(repo, &mockResolver{}, &mockActivityLog{}, zap.NewNop())

	err := svc.Update(context.Background(), 10, 21, CreateAssignmentInput{Title: "X", DueDate: time.Now()})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUpdateStatusValidatesEnum(t *testing.T) {
	svc := NewAssignmentService(&mockAssignmentRepo{}, &mockResolver{}, &mockActivityLog{}, zap.NewNop())

	err := svc.UpdateStatus(context.Background(), 11, 21, models.AssignmentStatus("Done"))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUpdateStatusUpsertsAndLogs(t *testing.T) {
	repo := &mockAssignmentRepo{}
	trail := &mockActivityLog{}
	svc := NewAssignmentService(repo, &mockResolver{}, trail, zap.NewNop())

	err := svc.UpdateStatus(context.Background(), 11, 21, models.AssignmentCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentCompleted, repo.statuses[keyFor(21, 11)])
	assert.Contains(t, trail.entries, models.ActivityUpdateAssignmentStatus)
}
