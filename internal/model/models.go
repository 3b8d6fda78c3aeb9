package model

// All lists every persisted entity in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&CourseTeacher{},
		&Section{},
		&Meeting{},
		&QuestionSet{},
		&Lesson{},
		&WatchHistory{},
		&Assignment{},
		&AssignmentAttachment{},
		&AssignmentQuestionOption{},
		&AssignmentSubmission{},
		&AssignmentSubmissionAttachment{},
		&Feedback{},
		&FeedbackQuestionOption{},
		&FeedbackSubmission{},
		&Certificate{},
		&QuestionPool{},
		&QuestionPoolTeacher{},
	}
}
