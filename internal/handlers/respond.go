package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warbler-social/warbler/internal/authz"
	"github.com/warbler-social/warbler/internal/errs"
)

// accessUnauthorized is the single user-facing message for both gate
// outcomes; the status code keeps them distinguishable.
const accessUnauthorized = "access unauthorized"

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrCredentialInput),
		errors.Is(err, errs.ErrTextRequired),
		errors.Is(err, errs.ErrTextTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUniquenessViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondDecision translates a non-allow gate outcome. Returns true when the
// request was rejected.
func respondDecision(c *gin.Context, decision authz.Decision) bool {
	switch decision {
	case authz.RequireLogin:
		c.JSON(http.StatusUnauthorized, gin.H{"error": accessUnauthorized})
		return true
	case authz.Deny:
		c.JSON(http.StatusForbidden, gin.H{"error": accessUnauthorized})
		return true
	}
	return false
}
