package controller

import (
	"academy_backend/internal/model"
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// AddTeacherRequest names a user by email.
type AddTeacherRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SearchCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param size query int false "size"
// @Param sortBy query string false "sort column"
// @Param sortDirection query string false "asc or desc"
// @Param search query string false "search text"
// @Param status query string false "draft, published or completed"
// @Success 200 {object} util.Response{data=service.SearchResult[model.Course]}
// @Router /courses [get]
func (c *CourseController) SearchCourses(ctx *gin.Context) {
	var criteria service.CourseSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.CourseService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /courses/{identity} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetByIdentity(ctx.Request.Context(), ctx.Param("identity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "course"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param body body service.CourseRequest true "course"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{identity} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), ctx.Param("identity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /courses/{identity} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.Delete(ctx.Request.Context(), ctx.Param("identity"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "course deleted"})
}

// ChangeStatus godoc
// @Summary 修改课程状态
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param body body StatusRequest true "status"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /courses/{identity}/status [put]
func (c *CourseController) ChangeStatus(ctx *gin.Context) {
	var req StatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	course, err := c.CourseService.ChangeStatus(ctx.Request.Context(), ctx.Param("identity"), model.CourseStatus(req.Status), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// AddTeacher godoc
// @Summary 添加课程教师
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param body body AddTeacherRequest true "teacher"
// @Success 201 {object} util.Response{data=model.CourseTeacher}
// @Router /courses/{identity}/teachers [post]
func (c *CourseController) AddTeacher(ctx *gin.Context) {
	var req AddTeacherRequest
	if !bindJSON(ctx, &req) {
		return
	}
	teacher, err := c.CourseService.AddTeacher(ctx.Request.Context(), ctx.Param("identity"), req.Email, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, teacher)
}

// RemoveTeacher godoc
// @Summary 移除课程教师
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param teacherId path string true "course teacher id"
// @Success 200 {object} util.Response
// @Router /courses/{identity}/teachers/{teacherId} [delete]
func (c *CourseController) RemoveTeacher(ctx *gin.Context) {
	if err := c.CourseService.RemoveTeacher(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("teacherId"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "teacher removed"})
}

// AddSection godoc
// @Summary 添加章节
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param body body service.SectionRequest true "section"
// @Success 201 {object} util.Response{data=model.Section}
// @Router /courses/{identity}/sections [post]
func (c *CourseController) AddSection(ctx *gin.Context) {
	var req service.SectionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	section, err := c.CourseService.AddSection(ctx.Request.Context(), ctx.Param("identity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, section)
}
