package controller

import (
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// Upload godoc
// @Summary 上传文件
// @Description 视频文件会读取时长
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "file"
// @Param folder formData string false "target folder"
// @Success 201 {object} util.Response{data=service.MediaResponse}
// @Failure 400 {object} util.Response
// @Router /media [post]
func (c *MediaController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	media, err := c.MediaService.Upload(ctx.Request.Context(), file, ctx.PostForm("folder"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, media)
}

// Delete godoc
// @Summary 删除文件
// @Tags 文件
// @Produce json
// @Security ApiKeyAuth
// @Param key query string true "storage key"
// @Success 200 {object} util.Response
// @Router /media [delete]
func (c *MediaController) Delete(ctx *gin.Context) {
	key := ctx.Query("key")
	if key == "" {
		util.BadRequest(ctx, "key is required")
		return
	}
	if err := c.MediaService.Delete(ctx.Request.Context(), key, util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "file deleted"})
}
