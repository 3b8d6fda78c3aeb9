package controller

import (
	"academy_backend/internal/service"
	"academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// MyCertificates godoc
// @Summary 我的证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param size query int false "size"
// @Param isVerified query bool false "filter by verification"
// @Success 200 {object} util.Response{data=service.SearchResult[model.Certificate]}
// @Router /certificates [get]
func (c *CertificateController) MyCertificates(ctx *gin.Context) {
	var criteria service.CertificateSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.CertificateService.MyCertificates(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// UserCertificates godoc
// @Summary 用户已认证证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "user id"
// @Param page query int false "page"
// @Param size query int false "size"
// @Success 200 {object} util.Response{data=service.SearchResult[model.Certificate]}
// @Router /users/{id}/certificates [get]
func (c *CertificateController) UserCertificates(ctx *gin.Context) {
	var criteria service.CertificateSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.CertificateService.UserCertificates(ctx.Request.Context(), ctx.Param("id"), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ReviewList godoc
// @Summary 待审核证书
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "page"
// @Param size query int false "size"
// @Param isVerified query bool false "defaults to unverified"
// @Success 200 {object} util.Response{data=service.SearchResult[model.Certificate]}
// @Failure 403 {object} util.Response
// @Router /admin/certificates [get]
func (c *CertificateController) ReviewList(ctx *gin.Context) {
	var criteria service.CertificateSearchCriteria
	if !bindQuery(ctx, &criteria) {
		return
	}
	criteria.CurrentUserID = util.CurrentUserID(ctx)
	result, err := c.CertificateService.ReviewList(ctx.Request.Context(), &criteria)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetCertificate godoc
// @Summary 证书详情
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "certificate id"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /certificates/{id} [get]
func (c *CertificateController) GetCertificate(ctx *gin.Context) {
	cert, err := c.CertificateService.GetByIdentity(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// SaveCertificate godoc
// @Summary 上传外部证书
// @Tags 证书
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CertificateRequest true "certificate"
// @Success 201 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response
// @Router /certificates [post]
func (c *CertificateController) SaveCertificate(ctx *gin.Context) {
	var req service.CertificateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cert, err := c.CertificateService.SaveCertificate(ctx.Request.Context(), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, cert)
}

// UpdateCertificate godoc
// @Summary 更新证书
// @Tags 证书
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "certificate id"
// @Param body body service.CertificateRequest true "certificate"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /certificates/{id} [put]
func (c *CertificateController) UpdateCertificate(ctx *gin.Context) {
	var req service.CertificateRequest
	if !bindJSON(ctx, &req) {
		return
	}
	cert, err := c.CertificateService.UpdateCertificate(ctx.Request.Context(), ctx.Param("id"), req, util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// DeleteCertificate godoc
// @Summary 删除证书
// @Tags 证书
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "certificate id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /certificates/{id} [delete]
func (c *CertificateController) DeleteCertificate(ctx *gin.Context) {
	if err := c.CertificateService.Delete(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, MessageResponse{Message: "certificate deleted"})
}

// Verify godoc
// @Summary 审核证书
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "certificate id"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /admin/certificates/{id}/verify [put]
func (c *CertificateController) Verify(ctx *gin.Context) {
	cert, err := c.CertificateService.Verify(ctx.Request.Context(), ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}
