package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/store"
	"github.com/gin-gonic/gin"
)

// AdminStore is the read-only view support staff get.
type AdminStore interface {
	store.Licenses
	store.Revocations
}

type AdminHandler struct {
	store AdminStore
}

func NewAdminHandler(st AdminStore) *AdminHandler {
	return &AdminHandler{store: st}
}

func (h *AdminHandler) GetLicense(ctx *gin.Context) {
	id := ctx.Param("id")

	license, err := h.store.GetLicense(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "license not found", Code: "not_found"})
			return
		}
		slog.Error("Failed to load license", "license_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	info := dto.LicenseInfo{
		ID:                license.ID,
		UserID:            license.UserID,
		Product:           license.Product,
		Plan:              license.Plan,
		Features:          license.Features,
		DeviceFingerprint: license.DeviceFingerprint,
		IssuedAt:          license.IssuedAt,
		ExpiresAt:         license.ExpiresAt,
		IsActive:          license.IsActive,
		CreatedAt:         license.CreatedAt,
	}

	rec, err := h.store.GetRevocation(ctx.Request.Context(), id)
	switch {
	case err == nil:
		info.Revocation = &dto.RevocationInfo{RevokedBy: rec.RevokedBy, Reason: rec.Reason, RevokedAt: rec.RevokedAt}
	case !errors.Is(err, store.ErrNotFound):
		slog.Error("Failed to load revocation", "license_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	ctx.JSON(http.StatusOK, info)
}
