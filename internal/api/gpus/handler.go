// Package gpus provides HTTP handlers for the GPU telemetry API.
package gpus

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gpuwatch-project/gpuwatch/internal/api"
	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/logger"
)

// Handler serves GPU device data from the resolved provider
type Handler struct {
	provider gpu.Provider
}

// NewHandler creates a new GPU API handler
func NewHandler(provider gpu.Provider) *Handler {
	return &Handler{provider: provider}
}

// RegisterRoutes registers the GPU routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/gpus", h.ListGPUs)
	rg.GET("/gpus/:id", h.GetGPU)
	rg.GET("/gpus/:id/memory", h.GetMemory)
	rg.GET("/gpus/:id/utilization", h.GetUtilization)
	rg.GET("/status", h.GetStatus)
}

// deviceID parses the :id path parameter. Returns false after writing a
// 400 response when the parameter is not an integer.
func deviceID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.BadRequest(c, "device id must be an integer")
		return 0, false
	}
	return id, true
}

// ListGPUs returns a snapshot of all visible devices
func (h *Handler) ListGPUs(c *gin.Context) {
	devices, partial := h.provider.ListDevices()
	if partial {
		logger.WithField("returned", len(devices)).Warn("device listing is partial, at least one device query failed")
	}

	api.Success(c, gpu.DeviceList{
		Count:   len(devices),
		GPUs:    devices,
		Partial: partial,
	})
}

// GetGPU returns a full snapshot of one device
func (h *Handler) GetGPU(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	dev, err := h.provider.GetDevice(id)
	if err != nil {
		api.ProviderError(c, err)
		return
	}
	api.Success(c, dev)
}

// GetMemory returns memory counters for one device
func (h *Handler) GetMemory(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	mem, err := h.provider.GetMemory(id)
	if err != nil {
		api.ProviderError(c, err)
		return
	}
	api.Success(c, mem)
}

// GetUtilization returns utilization rates for one device
func (h *Handler) GetUtilization(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	util, err := h.provider.GetUtilization(id)
	if err != nil {
		api.ProviderError(c, err)
		return
	}
	api.Success(c, util)
}

// GetStatus reports the active backend and device count. Never fails.
func (h *Handler) GetStatus(c *gin.Context) {
	api.Success(c, h.provider.Status())
}
