package repository

import (
	"academy_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories of every entity over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users                           *Repository[model.User]
	Courses                         *Repository[model.Course]
	CourseTeachers                  *Repository[model.CourseTeacher]
	Sections                        *Repository[model.Section]
	Lessons                         *Repository[model.Lesson]
	Meetings                        *Repository[model.Meeting]
	QuestionSets                    *Repository[model.QuestionSet]
	WatchHistories                  *Repository[model.WatchHistory]
	Assignments                     *Repository[model.Assignment]
	AssignmentAttachments           *Repository[model.AssignmentAttachment]
	AssignmentOptions               *Repository[model.AssignmentQuestionOption]
	AssignmentSubmissions           *Repository[model.AssignmentSubmission]
	AssignmentSubmissionAttachments *Repository[model.AssignmentSubmissionAttachment]
	Feedbacks                       *Repository[model.Feedback]
	FeedbackOptions                 *Repository[model.FeedbackQuestionOption]
	FeedbackSubmissions             *Repository[model.FeedbackSubmission]
	Certificates                    *Repository[model.Certificate]
	QuestionPools                   *Repository[model.QuestionPool]
	QuestionPoolTeachers            *Repository[model.QuestionPoolTeacher]
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:                              db,
		Users:                           NewRepository[model.User](db),
		Courses:                         NewRepository[model.Course](db),
		CourseTeachers:                  NewRepository[model.CourseTeacher](db),
		Sections:                        NewRepository[model.Section](db),
		Lessons:                         NewRepository[model.Lesson](db),
		Meetings:                        NewRepository[model.Meeting](db),
		QuestionSets:                    NewRepository[model.QuestionSet](db),
		WatchHistories:                  NewRepository[model.WatchHistory](db),
		Assignments:                     NewRepository[model.Assignment](db),
		AssignmentAttachments:           NewRepository[model.AssignmentAttachment](db),
		AssignmentOptions:               NewRepository[model.AssignmentQuestionOption](db),
		AssignmentSubmissions:           NewRepository[model.AssignmentSubmission](db),
		AssignmentSubmissionAttachments: NewRepository[model.AssignmentSubmissionAttachment](db),
		Feedbacks:                       NewRepository[model.Feedback](db),
		FeedbackOptions:                 NewRepository[model.FeedbackQuestionOption](db),
		FeedbackSubmissions:             NewRepository[model.FeedbackSubmission](db),
		Certificates:                    NewRepository[model.Certificate](db),
		QuestionPools:                   NewRepository[model.QuestionPool](db),
		QuestionPoolTeachers:            NewRepository[model.QuestionPoolTeacher](db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a store bound to one database transaction.
// Every write made through tx commits together or not at all.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// For returns the repository of E bound to the store's connection.
func For[E any](s *Store) *Repository[E] {
	return NewRepository[E](s.db)
}
