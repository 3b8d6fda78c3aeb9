package controller

import (
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the body into obj, writing a validation response on failure.
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		util.BindError(ctx, err)
		return false
	}
	return true
}

func bindQuery(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindQuery(obj); err != nil {
		util.BindError(ctx, err)
		return false
	}
	return true
}

// StatusRequest changes a course or lesson status.
type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published completed"`
}

// ActiveRequest toggles an account.
type ActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// MessageResponse is returned by endpoints without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}
