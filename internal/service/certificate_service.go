package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/permission"
	"academy_backend/internal/repository"
	"academy_backend/internal/util"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type certificateScope int

const (
	certificatesOwn certificateScope = iota
	certificatesOfUser
	certificatesForReview
)

type CertificateSearchCriteria struct {
	BaseSearchCriteria
	IsVerified *bool `form:"isVerified" json:"isVerified"`

	scope  certificateScope
	userID string
}

type CertificateRequest struct {
	Name      string `json:"name" binding:"required,max=250"`
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	ImageURL  string `json:"imageUrl" binding:"omitempty,max=500"`
	Location  string `json:"location" binding:"omitempty,max=250"`
	Institute string `json:"institute" binding:"required,max=250"`
	Duration  int    `json:"duration" binding:"gte=0"`
}

func (req CertificateRequest) apply(c *model.Certificate) error {
	start, err := time.Parse(util.DateFormat, req.StartDate)
	if err != nil {
		return apperr.Validation("invalid start date", apperr.FieldError{Field: "startDate", Message: "startDate must be a date"})
	}
	c.EndDate = nil
	if req.EndDate != "" {
		end, err := time.Parse(util.DateFormat, req.EndDate)
		if err != nil {
			return apperr.Validation("invalid end date", apperr.FieldError{Field: "endDate", Message: "endDate must be a date"})
		}
		if end.Before(start) {
			return apperr.Validation("end date is before start date", apperr.FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
		}
		d := datatypes.Date(end)
		c.EndDate = &d
	}
	c.Name = strings.TrimSpace(req.Name)
	c.StartDate = datatypes.Date(start)
	c.ImageURL = req.ImageURL
	c.Location = req.Location
	c.Institute = strings.TrimSpace(req.Institute)
	c.Duration = req.Duration
	return nil
}

type certificateHooks struct {
	BaseHooks[model.Certificate, *CertificateSearchCriteria]
}

func (certificateHooks) ConstructQueryConditions(ctx context.Context, store *repository.Store, q repository.Query, c *CertificateSearchCriteria) (repository.Query, error) {
	switch c.scope {
	case certificatesOwn:
		q = q.And(repository.Where("created_by = ?", c.CurrentUserID))
		if c.IsVerified != nil {
			q = q.And(repository.Where("is_verified = ?", *c.IsVerified))
		}
	case certificatesOfUser:
		exists, err := store.Users.Exists(ctx, repository.Where("id = ?", c.userID))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("user not found")
		}
		q = q.And(repository.Where("created_by = ? AND is_verified = ?", c.userID, true))
	case certificatesForReview:
		caller, err := loadCaller(ctx, store, c.CurrentUserID)
		if err != nil {
			return nil, err
		}
		if !permission.IsAdmin(caller.Role) {
			return nil, apperr.Forbidden("unauthorized user")
		}
		verified := false
		if c.IsVerified != nil {
			verified = *c.IsVerified
		}
		q = q.And(repository.Where("is_verified = ?", verified))
	}
	if c.Search != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(c.Search)) + "%"
		q = q.And(repository.Where("LOWER(name) LIKE ? OR LOWER(institute) LIKE ?", term, term))
	}
	return q, nil
}

// CheckReadPermissions hides unverified certificates from everyone but their
// owner and admins.
func (certificateHooks) CheckReadPermissions(ctx context.Context, store *repository.Store, c *model.Certificate, callerID string) error {
	if c.IsVerified {
		return nil
	}
	caller, err := loadCaller(ctx, store, callerID)
	if err != nil {
		return err
	}
	if !permission.CanModify(caller, c) {
		return apperr.NotFound("certificate not found")
	}
	return nil
}

func (certificateHooks) CheckUpdatePermissions(_ context.Context, _ *repository.Store, c *model.Certificate, callerID string) error {
	return requireCertificateOwner(c, callerID)
}

func (certificateHooks) CheckDeletePermissions(_ context.Context, _ *repository.Store, c *model.Certificate, callerID string) error {
	return requireCertificateOwner(c, callerID)
}

// 只有上传者本人可以修改或删除证书
func requireCertificateOwner(c *model.Certificate, callerID string) error {
	if callerID == "" || c.CreatedBy != callerID {
		return apperr.Forbidden("unauthorized user")
	}
	return nil
}

type CertificateService struct {
	*EntityService[model.Certificate, *CertificateSearchCriteria]
}

func NewCertificateService(store *repository.Store) *CertificateService {
	return &CertificateService{EntityService: NewEntityService[model.Certificate, *CertificateSearchCriteria](store, certificateHooks{}, "certificate")}
}

// SaveCertificate records a certificate awaiting admin review.
func (s *CertificateService) SaveCertificate(ctx context.Context, req CertificateRequest, callerID string) (*model.Certificate, error) {
	c := &model.Certificate{}
	if err := req.apply(c); err != nil {
		return nil, err
	}
	c.IsVerified = false
	return s.Create(ctx, c, callerID)
}

func (s *CertificateService) UpdateCertificate(ctx context.Context, id string, req CertificateRequest, callerID string) (*model.Certificate, error) {
	return s.Update(ctx, id, callerID, func(_ context.Context, _ *repository.Store, c *model.Certificate) error {
		if c.IsVerified {
			return apperr.Validation("verified certificate cannot be updated")
		}
		return req.apply(c)
	})
}

func (s *CertificateService) MyCertificates(ctx context.Context, c *CertificateSearchCriteria) (*SearchResult[model.Certificate], error) {
	c.scope = certificatesOwn
	return s.Search(ctx, c)
}

// UserCertificates lists the verified certificates of userID.
func (s *CertificateService) UserCertificates(ctx context.Context, userID string, c *CertificateSearchCriteria) (*SearchResult[model.Certificate], error) {
	c.scope = certificatesOfUser
	c.userID = userID
	return s.Search(ctx, c)
}

// ReviewList lists certificates for admins, unverified ones unless asked otherwise.
func (s *CertificateService) ReviewList(ctx context.Context, c *CertificateSearchCriteria) (*SearchResult[model.Certificate], error) {
	c.scope = certificatesForReview
	return s.Search(ctx, c)
}

func (s *CertificateService) Verify(ctx context.Context, id, callerID string) (_ *model.Certificate, err error) {
	defer guard("verify the certificate", &err, zap.String("certificate", id), zap.String("user", callerID))

	var cert *model.Certificate
	err = s.Store.Transaction(ctx, func(tx *repository.Store) error {
		caller, err := loadCaller(ctx, tx, callerID)
		if err != nil {
			return err
		}
		if !permission.IsAdmin(caller.Role) {
			return apperr.Forbidden("unauthorized user")
		}
		cert, err = tx.Certificates.FindOne(ctx, repository.Where("id = ?", id))
		if err != nil {
			return err
		}
		if cert == nil {
			return apperr.NotFound("certificate not found")
		}
		if cert.IsVerified {
			return apperr.Validation("certificate is already verified")
		}
		cert.IsVerified = true
		cert.UpdatedBy = caller.ID
		if err := tx.Certificates.Update(ctx, cert); err != nil {
			return err
		}
		return attachCreators(ctx, tx, cert)
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}
