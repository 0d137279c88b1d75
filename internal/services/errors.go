package services

import (
	"errors"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
)

// notFoundOr maps a missing row onto a NotFound error and anything else onto
// an infrastructure failure
func notFoundOr(err error, code, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(code, message)
	}
	return persistenceError(err)
}

// conflictOr maps a unique violation onto a Conflict error
func conflictOr(err error, code, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError(code, message)
	}
	return persistenceError(err)
}

func persistenceError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInfrastructureError(models.ErrPersistence, err)
}
