package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindMalformedToken:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden,
		domain.KindInvalidSignature,
		domain.KindExpired,
		domain.KindDeviceMismatch,
		domain.KindRevoked,
		domain.KindInactive:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindFingerprintConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error","code"}. Unclassified and server-side
// failures are logged and reported without internal detail.
func respondError(c *gin.Context, err error) {
	var e *domain.Error
	if !errors.As(err, &e) {
		slog.Error("Unhandled request error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	status := statusFor(e.Kind)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "kind", e.Kind, "error", err)
	}
	c.JSON(status, dto.ErrorResponse{Error: e.Message, Code: string(e.Kind)})
}

// respondAfterBind reports a service error for a request whose body may have
// failed to decode. The service ran against a zero request, so it rejects the
// caller first and only then the input; in the latter case the decode error
// is the more useful message.
func respondAfterBind(c *gin.Context, bindErr, err error) {
	if bindErr != nil && domain.KindOf(err) == domain.KindInvalidInput {
		badRequest(c, bindErr)
		return
	}
	respondError(c, err)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: string(domain.KindInvalidInput)})
}
