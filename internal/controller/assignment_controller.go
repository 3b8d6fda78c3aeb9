package controller

import (
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// SearchAssignments godoc
// @Summary 作业题目列表
// @Description 学员只能看到自己的提交，正确答案和提示对学员隐藏
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param userId query string false "whose submissions to show"
// @Param page query int false "page"
// @Param size query int false "size"
// @Success 200 {object} util.Response{data=service.SearchResult[service.AssignmentResponse]}
// @Failure 404 {object} util.Response
// @Router /lessons/{lessonIdentity}/assignments [get]
func (c *AssignmentController) SearchAssignments(ctx *gin.Context) {
	var criteria service.AssignmentSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.LessonIdentity = ctx.Param("lessonIdentity")
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.AssignmentService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetAssignment godoc
// @Summary 作业题目详情
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "assignment id"
// @Success 200 {object} util.Response{data=service.AssignmentResponse}
// @Failure 404 {object} util.Response
// @Router /assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	resp, err := c.AssignmentService.GetAssignment(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// CreateAssignment godoc
// @Summary 创建作业题目
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body service.AssignmentRequest true "question"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /lessons/{lessonIdentity}/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req service.AssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	a, err := c.AssignmentService.CreateAssignment(ctx.Request.Context(), ctx.Param("lessonIdentity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// UpdateAssignment godoc
// @Summary 更新作业题目
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "assignment id"
// @Param body body service.AssignmentRequest true "question"
// @Success 200 {object} util.Response{data=model.Assignment}
// @Router /assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	var req service.AssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	a, err := c.AssignmentService.UpdateAssignment(ctx.Request.Context(), ctx.Param("id"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// DeleteAssignment godoc
// @Summary 删除作业题目
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "assignment id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /assignments/{id} [delete]
func (c *AssignmentController) DeleteAssignment(ctx *gin.Context) {
	if err := c.AssignmentService.Delete(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "assignment deleted"})
}

// Submit godoc
// @Summary 提交作业
// @Tags 作业
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body []service.AssignmentSubmissionRequest true "answers"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{lessonIdentity}/assignments/submissions [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	var payloads []service.AssignmentSubmissionRequest
	if !bindJSON(ctx, &payloads) {
		return
	}
	if err := c.AssignmentService.SubmitAll(ctx.Request.Context(), ctx.Param("lessonIdentity"), payloads, util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "assignment submitted"})
}

// SubmittedStudents godoc
// @Summary 已提交学员
// @Tags 作业
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response{data=[]service.SubmittedStudent}
// @Router /lessons/{lessonIdentity}/assignments/students [get]
func (c *AssignmentController) SubmittedStudents(ctx *gin.Context) {
	students, err := c.AssignmentService.SubmittedStudents(ctx.Request.Context(), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, students)
}
