package controller

import (
	"academy_backend/internal/model"
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionPoolController struct {
	QuestionPoolService *service.QuestionPoolService
}

func NewQuestionPoolController(questionPoolService *service.QuestionPoolService) *QuestionPoolController {
	return &QuestionPoolController{QuestionPoolService: questionPoolService}
}

// PoolRoleRequest changes a pool teacher's role.
type PoolRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=author creator"`
}

// SearchPools godoc
// @Summary 题库列表
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param size query int false "size"
// @Param search query string false "search text"
// @Success 200 {object} util.Response{data=service.SearchResult[model.QuestionPool]}
// @Router /question-pools [get]
func (c *QuestionPoolController) SearchPools(ctx *gin.Context) {
	var criteria service.BaseSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.QuestionPoolService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetPool godoc
// @Summary 题库详情
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Success 200 {object} util.Response{data=model.QuestionPool}
// @Failure 404 {object} util.Response
// @Router /question-pools/{identity} [get]
func (c *QuestionPoolController) GetPool(ctx *gin.Context) {
	pool, err := c.QuestionPoolService.GetByIdentity(ctx.Request.Context(), ctx.Param("identity"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pool)
}

// CreatePool godoc
// @Summary 创建题库
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionPoolRequest true "pool"
// @Success 201 {object} util.Response{data=model.QuestionPool}
// @Failure 403 {object} util.Response
// @Router /question-pools [post]
func (c *QuestionPoolController) CreatePool(ctx *gin.Context) {
	var req service.QuestionPoolRequest
	if !bindJSON(ctx, &req) {
		return
	}
	pool, err := c.QuestionPoolService.CreatePool(ctx.Request.Context(), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, pool)
}

// UpdatePool godoc
// @Summary 更新题库
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Param body body service.QuestionPoolRequest true "pool"
// @Success 200 {object} util.Response{data=model.QuestionPool}
// @Router /question-pools/{identity} [put]
func (c *QuestionPoolController) UpdatePool(ctx *gin.Context) {
	var req service.QuestionPoolRequest
	if !bindJSON(ctx, &req) {
		return
	}
	pool, err := c.QuestionPoolService.UpdatePool(ctx.Request.Context(), ctx.Param("identity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, pool)
}

// DeletePool godoc
// @Summary 删除题库
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Success 200 {object} util.Response
// @Router /question-pools/{identity} [delete]
func (c *QuestionPoolController) DeletePool(ctx *gin.Context) {
	if err := c.QuestionPoolService.Delete(ctx.Request.Context(), ctx.Param("identity"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "question pool deleted"})
}

// AddTeacher godoc
// @Summary 添加题库教师
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Param body body service.QuestionPoolTeacherRequest true "teacher"
// @Success 201 {object} util.Response{data=model.QuestionPoolTeacher}
// @Failure 403 {object} util.Response
// @Router /question-pools/{identity}/teachers [post]
func (c *QuestionPoolController) AddTeacher(ctx *gin.Context) {
	var req service.QuestionPoolTeacherRequest
	if !bindJSON(ctx, &req) {
		return
	}
	teacher, err := c.QuestionPoolService.AddTeacher(ctx.Request.Context(), ctx.Param("identity"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, teacher)
}

// ChangeTeacherRole godoc
// @Summary 修改题库教师角色
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Param teacherId path string true "pool teacher id"
// @Param body body PoolRoleRequest true "role"
// @Success 200 {object} util.Response{data=model.QuestionPoolTeacher}
// @Router /question-pools/{identity}/teachers/{teacherId} [put]
func (c *QuestionPoolController) ChangeTeacherRole(ctx *gin.Context) {
	var req PoolRoleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	teacher, err := c.QuestionPoolService.ChangeTeacherRole(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("teacherId"), model.PoolRole(req.Role), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, teacher)
}

// RemoveTeacher godoc
// @Summary 移除题库教师
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param identity path string true "pool id or slug"
// @Param teacherId path string true "pool teacher id"
// @Success 200 {object} util.Response
// @Router /question-pools/{identity}/teachers/{teacherId} [delete]
func (c *QuestionPoolController) RemoveTeacher(ctx *gin.Context) {
	if err := c.QuestionPoolService.RemoveTeacher(ctx.Request.Context(), ctx.Param("identity"), ctx.Param("teacherId"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "teacher removed"})
}
