// Package permission decides what a caller may see or change. Every function
// is pure: callers load the user and course before asking.
package permission

import "academy_backend/internal/model"

func IsAdmin(role model.UserRole) bool {
	return role == model.SuperAdmin || role == model.Admin
}

func IsTeacherOrAdmin(role model.UserRole) bool {
	return IsAdmin(role) || role == model.Trainer
}

// IsCourseTeacher reports whether userID created the course or is listed among
// its teachers. course.CourseTeachers must be loaded.
func IsCourseTeacher(userID string, course *model.Course) bool {
	if course == nil || userID == "" {
		return false
	}
	if course.CreatedBy == userID {
		return true
	}
	for _, t := range course.CourseTeachers {
		if t.UserID == userID {
			return true
		}
	}
	return false
}

// CanSeeGradedFields governs correctness flags and hints in responses.
func CanSeeGradedFields(caller *model.User, course *model.Course) bool {
	if caller == nil {
		return false
	}
	return IsAdmin(caller.Role) || IsCourseTeacher(caller.ID, course)
}

// CanModify reports whether caller owns entity or holds an admin role.
func CanModify(caller *model.User, entity model.Owned) bool {
	if caller == nil {
		return false
	}
	if IsAdmin(caller.Role) {
		return true
	}
	return entity != nil && entity.CreatorID() != "" && entity.CreatorID() == caller.ID
}

// CanModifyCourse allows admins and the course's teachers.
func CanModifyCourse(caller *model.User, course *model.Course) bool {
	if caller == nil || course == nil {
		return false
	}
	return IsAdmin(caller.Role) || IsCourseTeacher(caller.ID, course)
}

// CanViewCourse allows anyone once the course left draft, and modifiers before.
func CanViewCourse(caller *model.User, course *model.Course) bool {
	if course == nil {
		return false
	}
	if course.Status != model.CourseDraft {
		return true
	}
	return CanModifyCourse(caller, course)
}
