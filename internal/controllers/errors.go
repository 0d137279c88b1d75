package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/middleware"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError renders a service error with the status matching its kind.
// Infrastructure causes are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	appErr := models.AsAppError(err)
	if appErr.Kind == models.KindInfrastructure {
		log.WithError(appErr.Err).WithFields(log.Fields{
			"path":       c.FullPath(),
			"code":       appErr.Code,
			"request_id": c.GetString("requestID"),
		}).Error("Request failed")
	}
	c.JSON(appErr.Kind.HTTPStatus(), appErr.APIError())
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.KindValidation, models.ErrBadRequest, message))
}

// parseID reads a positive numeric path parameter, answering 400 otherwise
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

// currentUser fetches the authenticated user, answering 401 when the route
// was mounted without the authentication middleware
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.KindAuthentication, models.ErrAuthRequired, "user not authenticated"))
		return nil, false
	}
	return user, true
}
