package handler

import (
	"net/http"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/licensing"
	"github.com/gin-gonic/gin"
)

type LicenseHandler struct {
	issuance   *licensing.IssuanceService
	validation *licensing.ValidationService
	revocation *licensing.RevocationService
}

func NewLicenseHandler(issuance *licensing.IssuanceService, validation *licensing.ValidationService, revocation *licensing.RevocationService) *LicenseHandler {
	return &LicenseHandler{
		issuance:   issuance,
		validation: validation,
		revocation: revocation,
	}
}

func (h *LicenseHandler) Issue(c *gin.Context) {
	var req dto.IssueLicenseRequest
	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		req = dto.IssueLicenseRequest{}
	}

	issued, err := h.issuance.Issue(c.Request.Context(), middleware.Credential(c), licensing.IssueRequest{
		Product:           req.Product,
		Plan:              req.Plan,
		Features:          req.Features,
		DeviceFingerprint: req.DeviceFingerprint,
		ExpiresInDays:     req.ExpiresInDays,
	})
	if err != nil {
		respondAfterBind(c, bindErr, err)
		return
	}

	c.JSON(http.StatusOK, dto.IssueLicenseResponse{
		License:   issued.Token,
		LicenseID: issued.License.ID,
		ExpiresAt: issued.License.ExpiresAt,
	})
}

func (h *LicenseHandler) Validate(c *gin.Context) {
	var req dto.ValidateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	claims, err := h.validation.Validate(c.Request.Context(), licensing.ValidateRequest{
		Token:             req.LicenseJWT,
		DeviceFingerprint: req.DeviceFingerprint,
		Credential:        middleware.Credential(c),
		IPAddress:         c.GetString(middleware.ClientAddressKey),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ValidateLicenseResponse{Message: "License is valid", License: claims})
}

func (h *LicenseHandler) Revoke(c *gin.Context) {
	var req dto.RevokeLicenseRequest
	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		req = dto.RevokeLicenseRequest{}
	}

	res, err := h.revocation.Revoke(c.Request.Context(), middleware.Credential(c), req.LicenseID, req.Reason)
	if err != nil {
		respondAfterBind(c, bindErr, err)
		return
	}

	msg := "License revoked successfully"
	if res.AlreadyRevoked {
		msg = "License already revoked"
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msg})
}
