package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/http/response"
)

// statusForCode maps the engine's error taxonomy onto HTTP statuses.
// graph_integrity is the journey definition's fault, not the caller's, so
// it surfaces as 422; initialization means a dependency we read from was
// unavailable or unusable, 502.
func statusForCode(code journeyerr.Code) int {
	switch code {
	case journeyerr.CodeValidation:
		return http.StatusBadRequest
	case journeyerr.CodeUnauthorized:
		return http.StatusUnauthorized
	case journeyerr.CodeNotFound:
		return http.StatusNotFound
	case journeyerr.CodeConflict:
		return http.StatusConflict
	case journeyerr.CodeGraphIntegrity, journeyerr.CodeUnknownBlock:
		return http.StatusUnprocessableEntity
	case journeyerr.CodeInitialization:
		return http.StatusBadGateway
	case journeyerr.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	code := journeyerr.CodeOf(err)
	if code == "" {
		code = journeyerr.CodeInternal
	}
	response.RespondError(c, statusForCode(code), string(code), err)
}
