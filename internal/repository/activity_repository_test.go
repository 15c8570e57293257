package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduspark/edu-platform-api/internal/models"
)

func TestInsertActivityWithoutActor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities (user_id, role, activity_name) VALUES ($1, $2, $3)")).
		WithArgs(nil, "system", models.ActivityRejectRegistration).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), nil, "system", models.ActivityRejectRegistration)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTodayAppendsFilterConditions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	classID := int64(2)
	rows := sqlmock.NewRows([]string{"activity_name", "role", "activity_timestamp", "user_name"}).
		AddRow(models.ActivityLogin, "student", time.Now(), "Amina Yusuf")
	mock.ExpectQuery(`WHERE DATE\(a\.activity_timestamp\) = CURRENT_DATE AND a\.role = \$1 AND up\.class_id = \$2`).
		WithArgs("student", classID).
		WillReturnRows(rows)

	feed, err := repo.ListToday(context.Background(), models.ActivityFilter{Role: "student", ClassID: &classID})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Amina Yusuf", feed[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolUsageOrdersByCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	rows := sqlmock.NewRows([]string{"activity_name", "usage_count"}).
		AddRow(models.ActivityUseLessonPlan, 12).
		AddRow(models.ActivityUseAITool, 4)
	mock.ExpectQuery("WHERE activity_name LIKE 'use_%'").
		WithArgs(5).
		WillReturnRows(rows)

	counts, err := repo.ToolUsage(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.ActivityUseLessonPlan, counts[0].Name)
	assert.Equal(t, 12, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
