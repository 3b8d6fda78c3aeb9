package controller

import (
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// SearchUsers godoc
// @Summary 用户列表
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param size query int false "size"
// @Param search query string false "name or email"
// @Param role query string false "role"
// @Param isActive query bool false "account status"
// @Success 200 {object} util.Response{data=service.SearchResult[model.User]}
// @Failure 403 {object} util.Response
// @Router /users [get]
func (c *UserController) SearchUsers(ctx *gin.Context) {
	var criteria service.UserSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.UserService.Search(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetUser godoc
// @Summary 用户详情
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "user id"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 404 {object} util.Response
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	user, err := c.UserService.GetByIdentity(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// CreateUser godoc
// @Summary 创建用户
// @Description 初始密码随机生成并通过邮件发送
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateUserRequest true "user"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.CreateUser(ctx.Request.Context(), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// UpdateUser godoc
// @Summary 更新用户
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "user id"
// @Param body body service.UpdateUserRequest true "user"
// @Success 200 {object} util.Response{data=model.User}
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.UpdateUser(ctx.Request.Context(), ctx.Param("id"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ChangeStatus godoc
// @Summary 启用或停用用户
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "user id"
// @Param body body ActiveRequest true "status"
// @Success 200 {object} util.Response{data=model.User}
// @Router /users/{id}/status [put]
func (c *UserController) ChangeStatus(ctx *gin.Context) {
	var req ActiveRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.ChangeStatus(ctx.Request.Context(), ctx.Param("id"), *req.IsActive, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary 删除用户
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "user id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	if err := c.UserService.Delete(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "user deleted"})
}
