package controller

import (
	"academy_backend/internal/model"
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// SearchLessons godoc
// @Summary 课时列表
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param sectionIdentity query string false "section id or slug"
// @Param page query int false "page"
// @Param size query int false "size"
// @Param search query string false "search text"
// @Success 200 {object} util.Response{data=service.SearchResult[model.Lesson]}
// @Router /courses/{identity}/lessons [get]
func (c *LessonController) SearchLessons(ctx *gin.Context) {
	var criteria service.LessonSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CourseIdentity = ctx.Param("identity")
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.LessonService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetLesson godoc
// @Summary 课时详情
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /courses/{identity}/lessons/{lessonIdentity} [get]
func (c *LessonController) GetLesson(ctx *gin.Context) {
	lesson, err := c.LessonService.GetLesson(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// CreateLesson godoc
// @Summary 创建课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param body body service.LessonRequest true "lesson"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /courses/{identity}/lessons [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if !bindJSON(ctx, &req) {
		return
	}
	lesson, err := c.LessonService.CreateLesson(ctx.Request.Context(), ctx.Param("identity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body service.LessonRequest true "lesson"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /courses/{identity}/lessons/{lessonIdentity} [put]
func (c *LessonController) UpdateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if !bindJSON(ctx, &req) {
		return
	}
	lesson, err := c.LessonService.UpdateLesson(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("lessonIdentity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "course id or slug"
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /courses/{identity}/lessons/{lessonIdentity} [delete]
func (c *LessonController) DeleteLesson(ctx *gin.Context) {
	if err := c.LessonService.DeleteLesson(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "lesson deleted"})
}

// ChangeStatus godoc
// @Summary 修改课时状态
// @Tags 课时
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body StatusRequest true "status"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /lessons/{lessonIdentity}/status [put]
func (c *LessonController) ChangeStatus(ctx *gin.Context) {
	var req StatusRequest
	if !bindJSON(ctx, &req) {
		return
	}
	lesson, err := c.LessonService.ChangeStatus(ctx.Request.Context(), ctx.Param("lessonIdentity"), model.CourseStatus(req.Status), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// WatchHistory godoc
// @Summary 课时完成记录
// @Tags 课时
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response{data=model.WatchHistory}
// @Failure 404 {object} util.Response
// @Router /lessons/{lessonIdentity}/watch-history [get]
func (c *LessonController) WatchHistory(ctx *gin.Context) {
	history, err := c.LessonService.WatchHistory(ctx.Request.Context(), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
