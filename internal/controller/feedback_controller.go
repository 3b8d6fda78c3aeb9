package controller

import (
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	FeedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{FeedbackService: feedbackService}
}

// SearchFeedbacks godoc
// @Summary 反馈问题列表
// @Description 学员只能看到自己的回答
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param userId query string false "whose submissions to show"
// @Param page query int false "page"
// @Param size query int false "size"
// @Success 200 {object} util.Response{data=service.SearchResult[service.FeedbackResponse]}
// @Failure 404 {object} util.Response
// @Router /lessons/{lessonIdentity}/feedbacks [get]
func (c *FeedbackController) SearchFeedbacks(ctx *gin.Context) {
	var criteria service.FeedbackSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.LessonIdentity = ctx.Param("lessonIdentity")
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.FeedbackService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetFeedback godoc
// @Summary 反馈问题详情
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "feedback id"
// @Success 200 {object} util.Response{data=service.FeedbackResponse}
// @Failure 404 {object} util.Response
// @Router /feedbacks/{id} [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	resp, err := c.FeedbackService.GetFeedback(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// CreateFeedback godoc
// @Summary 创建反馈问题
// @Tags 反馈
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body service.FeedbackRequest true "question"
// @Success 201 {object} util.Response{data=model.Feedback}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /lessons/{lessonIdentity}/feedbacks [post]
func (c *FeedbackController) CreateFeedback(ctx *gin.Context) {
	var req service.FeedbackRequest
	if !bindJSON(ctx, &req) {
		return
	}
	f, err := c.FeedbackService.CreateFeedback(ctx.Request.Context(), ctx.Param("lessonIdentity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, f)
}

// UpdateFeedback godoc
// @Summary 更新反馈问题
// @Tags 反馈
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "feedback id"
// @Param body body service.FeedbackRequest true "question"
// @Success 200 {object} util.Response{data=model.Feedback}
// @Router /feedbacks/{id} [put]
func (c *FeedbackController) UpdateFeedback(ctx *gin.Context) {
	var req service.FeedbackRequest
	if !bindJSON(ctx, &req) {
		return
	}
	f, err := c.FeedbackService.UpdateFeedback(ctx.Request.Context(), ctx.Param("id"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, f)
}

// DeleteFeedback godoc
// @Summary 删除反馈问题
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "feedback id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /feedbacks/{id} [delete]
func (c *FeedbackController) DeleteFeedback(ctx *gin.Context) {
	if err := c.FeedbackService.Delete(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "feedback deleted"})
}

// Submit godoc
// @Summary 提交反馈
// @Tags 反馈
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Param body body []service.FeedbackSubmissionRequest true "answers"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /lessons/{lessonIdentity}/feedbacks/submissions [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	var payloads []service.FeedbackSubmissionRequest
	if !bindJSON(ctx, &payloads) {
		return
	}
	if err := c.FeedbackService.SubmitAll(ctx.Request.Context(), ctx.Param("lessonIdentity"), payloads, util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "feedback submitted"})
}

// SubmittedStudents godoc
// @Summary 已提交学员
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response{data=[]service.SubmittedStudent}
// @Router /lessons/{lessonIdentity}/feedbacks/students [get]
func (c *FeedbackController) SubmittedStudents(ctx *gin.Context) {
	students, err := c.FeedbackService.SubmittedStudents(ctx.Request.Context(), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// Chart godoc
// @Summary 反馈统计
// @Description 每个选项的选择次数，评分分布与主观回答
// @Tags 反馈
// @Produce json
// @Security ApiKeyAuth
// @Param lessonIdentity path string true "lesson id or slug"
// @Success 200 {object} util.Response{data=[]service.FeedbackChartItem}
// @Failure 403 {object} util.Response
// @Router /lessons/{lessonIdentity}/feedbacks/chart [get]
func (c *FeedbackController) Chart(ctx *gin.Context) {
	chart, err := c.FeedbackService.Chart(ctx.Request.Context(), ctx.Param("lessonIdentity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chart)
}
