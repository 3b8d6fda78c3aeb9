package service

import (
	"academy_backend/internal/apperr"
	"academy_backend/pkg/logger"

	"go.uber.org/zap"
)

// guard is deferred by every public operation. Known errors pass through;
// anything else is logged with the given fields and replaced by an opaque
// internal error. action completes "An error occurred while trying to ...".
func guard(action string, errp *error, fields ...zap.Field) {
	if errp == nil || *errp == nil {
		return
	}
	err := *errp
	if apperr.IsKnown(err) {
		if apperr.KindOf(err) != apperr.KindInternal {
			logger.Log.Debug("request rejected", append(fields, zap.String("action", action), zap.Error(err))...)
		}
		return
	}
	logger.Log.Error("An error occurred while trying to "+action, append(fields, zap.Error(err))...)
	*errp = apperr.Internal(err, "An error occurred while trying to "+action+".")
}
