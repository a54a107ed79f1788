package handler

import (
	"net/http"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/devices"
	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	devices *devices.Service
}

func NewDeviceHandler(svc *devices.Service) *DeviceHandler {
	return &DeviceHandler{devices: svc}
}

func (h *DeviceHandler) Register(c *gin.Context) {
	var req dto.RegisterDeviceRequest
	bindErr := c.ShouldBindJSON(&req)
	if bindErr != nil {
		req = dto.RegisterDeviceRequest{}
	}

	reg, err := h.devices.Register(c.Request.Context(), middleware.Credential(c), req.Fingerprint, req.Name)
	if err != nil {
		respondAfterBind(c, bindErr, err)
		return
	}

	resp := dto.RegisterDeviceResponse{Device: dto.NewDeviceResponse(reg.Device)}
	if reg.AlreadyRegistered {
		resp.Message = "Device already registered for this user"
	}
	c.JSON(http.StatusOK, resp)
}
