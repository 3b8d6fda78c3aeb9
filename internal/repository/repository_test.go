package repository_test

import (
	"academy_backend/internal/model"
	"academy_backend/internal/repository"
	"academy_backend/internal/testutil"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_HasColumn(t *testing.T) {
	store := testutil.Store(t)

	tests := []struct {
		name string
		col  string
		ok   bool
	}{
		{"createdAt", "created_at", true},
		{"created_at", "created_at", true},
		{"Name", "name", true},
		// 课程没有排序列，未知字段回退到默认排序
		{"order", "", false},
		{"password; drop table users", "", false},
		{"courseTeachers", "", false},
	}
	for _, tt := range tests {
		col, ok := store.Courses.HasColumn(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.col, col, tt.name)
	}

	col, ok := store.Sections.HasColumn("order")
	assert.True(t, ok)
	assert.Equal(t, "sort_order", col)
}

func TestRepository_FindAndPage(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, testutil.Course(t, store, author, model.CoursePublished).ID)
	}

	missing, err := store.Courses.FindOne(ctx, repository.Where("id = ?", "nope"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	found, err := store.Courses.FindOne(ctx, repository.IDOrSlug(ids[0]), repository.Preload("CourseTeachers"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.CourseTeachers, 1)

	exists, err := store.Courses.Exists(ctx, repository.Where("id = ?", ids[1]))
	require.NoError(t, err)
	assert.True(t, exists)

	items, total, err := store.Courses.Page(ctx, repository.All(), repository.OrderBy("id", false), 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Less(t, items[0].ID, items[1].ID)

	var creators []string
	require.NoError(t, store.Courses.Pluck(ctx, repository.All(), "created_by", &creators))
	assert.Equal(t, []string{author.ID}, creators)

	count, err := store.Courses.Count(ctx, repository.Where("id IN ?", ids[:3]))
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	course := testutil.Course(t, store, author, model.CoursePublished)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *repository.Store) error {
		section := &model.Section{CourseID: course.ID, Name: "Week 1", Slug: "week-1"}
		section.Stamp(author.ID)
		require.NoError(t, tx.Sections.Insert(ctx, section))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := store.Sections.Exists(ctx, repository.Where("slug = ?", "week-1"))
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Transaction(ctx, func(tx *repository.Store) error {
		section := &model.Section{CourseID: course.ID, Name: "Week 2", Slug: "week-2"}
		section.Stamp(author.ID)
		return tx.Sections.Insert(ctx, section)
	})
	require.NoError(t, err)
	exists, err = store.Sections.Exists(ctx, repository.Where("slug = ?", "week-2"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_DeleteWhere(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	author := testutil.User(t, store, model.Trainer)
	course := testutil.Course(t, store, author, model.CoursePublished)
	testutil.Section(t, store, course)
	testutil.Section(t, store, course)

	require.NoError(t, store.Sections.DeleteWhere(ctx, repository.Where("course_id = ?", course.ID)))
	count, err := store.Sections.Count(ctx, repository.Where("course_id = ?", course.ID))
	require.NoError(t, err)
	assert.Zero(t, count)
}
