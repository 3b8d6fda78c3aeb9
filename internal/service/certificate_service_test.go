package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/internal/model"
	"academy_backend/internal/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certificateRequest(name string) CertificateRequest {
	return CertificateRequest{Name: name, StartDate: "2024-01-10", EndDate: "2024-03-01", Institute: "Open University", Duration: 40}
}

func TestSaveCertificate(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	owner := testutil.User(t, store, model.Trainee)
	svc := NewCertificateService(store)

	cert, err := svc.SaveCertificate(ctx, certificateRequest("Kubernetes"), owner.ID)
	require.NoError(t, err)
	assert.False(t, cert.IsVerified)
	assert.Equal(t, owner.ID, cert.CreatedBy)
	require.NotNil(t, cert.EndDate)

	bad := certificateRequest("Backwards")
	bad.EndDate = "2023-12-31"
	_, err = svc.SaveCertificate(ctx, bad, owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	bad = certificateRequest("Garbled")
	bad.StartDate = "10/01/2024"
	_, err = svc.SaveCertificate(ctx, bad, owner.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCertificateOwnership(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	owner := testutil.User(t, store, model.Trainee)
	other := testutil.User(t, store, model.Trainee)
	admin := testutil.User(t, store, model.Admin)
	svc := NewCertificateService(store)
	cert, err := svc.SaveCertificate(ctx, certificateRequest("Kubernetes"), owner.ID)
	require.NoError(t, err)

	t.Run("unverified hidden from others", func(t *testing.T) {
		_, err := svc.GetByIdentity(ctx, cert.ID, other.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
		_, err = svc.GetByIdentity(ctx, cert.ID, owner.ID)
		assert.NoError(t, err)
		_, err = svc.GetByIdentity(ctx, cert.ID, admin.ID)
		assert.NoError(t, err)
	})
	t.Run("only the creator edits", func(t *testing.T) {
		_, err := svc.UpdateCertificate(ctx, cert.ID, certificateRequest("Renamed"), admin.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		err = svc.Delete(ctx, cert.ID, other.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))

		updated, err := svc.UpdateCertificate(ctx, cert.ID, certificateRequest("Renamed"), owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})
	t.Run("verification", func(t *testing.T) {
		_, err := svc.Verify(ctx, cert.ID, owner.ID)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		_, err = svc.Verify(ctx, model.GenerateUUID(), admin.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		verified, err := svc.Verify(ctx, cert.ID, admin.ID)
		require.NoError(t, err)
		assert.True(t, verified.IsVerified)
		require.NotNil(t, verified.User)
		assert.Equal(t, owner.ID, verified.User.ID)

		_, err = svc.Verify(ctx, cert.ID, admin.ID)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		_, err = svc.UpdateCertificate(ctx, cert.ID, certificateRequest("Too late"), owner.ID)
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		_, err = svc.GetByIdentity(ctx, cert.ID, other.ID)
		assert.NoError(t, err)
	})
}

func TestCertificateLists(t *testing.T) {
	ctx := context.Background()
	store := testutil.Store(t)
	owner := testutil.User(t, store, model.Trainee)
	admin := testutil.User(t, store, model.Admin)
	svc := NewCertificateService(store)
	pending, err := svc.SaveCertificate(ctx, certificateRequest("Pending"), owner.ID)
	require.NoError(t, err)
	done, err := svc.SaveCertificate(ctx, certificateRequest("Done"), owner.ID)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, done.ID, admin.ID)
	require.NoError(t, err)

	mine, err := svc.MyCertificates(ctx, &CertificateSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: owner.ID}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalCount)

	public, err := svc.UserCertificates(ctx, owner.ID, &CertificateSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: admin.ID}})
	require.NoError(t, err)
	require.Len(t, public.Items, 1)
	assert.Equal(t, done.ID, public.Items[0].ID)

	_, err = svc.UserCertificates(ctx, model.GenerateUUID(), &CertificateSearchCriteria{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.ReviewList(ctx, &CertificateSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: owner.ID}})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	review, err := svc.ReviewList(ctx, &CertificateSearchCriteria{BaseSearchCriteria: BaseSearchCriteria{CurrentUserID: admin.ID}})
	require.NoError(t, err)
	require.Len(t, review.Items, 1)
	assert.Equal(t, pending.ID, review.Items[0].ID)
	require.NotNil(t, review.Items[0].User)
	assert.Equal(t, owner.ID, review.Items[0].User.ID)
}
