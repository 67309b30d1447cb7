package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/ratelimiter"
	"anoa.com/hostelhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// ParamUUID parses a path parameter as a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, apperror.ErrInvalidInput)
	}
	return id, nil
}

// Message writes a {message} body.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// BindError reports a request that failed binding or validation.
func BindError(c *gin.Context, err error) {
	Message(c, http.StatusBadRequest, validator.FormatValidationError(err))
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var mismatch *apperror.RoleMismatchError
	if errors.As(err, &mismatch) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":          mismatch.Error(),
			"actual_role":      mismatch.ActualRole,
			"suggested_action": mismatch.SuggestedAction(),
		})
		return
	}

	var rateLimitErr *ratelimiter.RateLimitError
	if errors.As(err, &rateLimitErr) {
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
	}

	code := apperror.MapErrorToStatus(err)
	message := err.Error()

	if code == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("internal error")
		if gin.Mode() == gin.ReleaseMode {
			message = apperror.ErrInternal.Error()
		}
	}

	Message(c, code, message)
}
