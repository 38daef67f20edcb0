package handlers

import (
	"errors"
	"net/http"

	"dating-app/internal/middleware"
	"dating-app/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.InvalidArgument, services.InvalidOperation, services.PersistenceFailure:
		return http.StatusBadRequest
	case services.Unauthorized:
		return http.StatusUnauthorized
	case services.NotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes a service error as {"error": message}. Errors that are
// not service errors become a generic 500.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if svcErr.Err != nil {
			logrus.WithError(svcErr.Err).WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"kind": svcErr.Kind.String(),
			}).Warn(svcErr.Message)
		}
		c.JSON(statusFor(svcErr.Kind), gin.H{"error": svcErr.Message})
		return
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// currentUser reads the authenticated member ID or rejects the request.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return userID, ok
}
