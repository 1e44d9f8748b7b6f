package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HostHandler serves the host dashboard
type HostHandler struct {
	host   *services.HostService
	logger *logrus.Logger
}

// NewHostHandler creates a new HostHandler
func NewHostHandler(host *services.HostService, logger *logrus.Logger) *HostHandler {
	return &HostHandler{host: host, logger: logger}
}

type financialsQuery struct {
	Status string `form:"status" binding:"omitempty,payment_status"`
}

func (q financialsQuery) status() *models.PaymentStatus {
	if q.Status == "" {
		return nil
	}
	s := models.PaymentStatus(q.Status)
	return &s
}

// Overview handles GET /api/v1/host/overview
func (h *HostHandler) Overview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	overview, err := h.host.Overview(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Financials handles GET /api/v1/host/financials
func (h *HostHandler) Financials(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var q financialsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	rows, err := h.host.Financials(c.Request.Context(), principal, q.status())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": rows, "count": len(rows)})
}

// ExportFinancials handles GET /api/v1/host/financials/export
// @Summary Download payment history as an Excel workbook
// @Tags Host
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Payment status filter"
// @Success 200 {file} file
// @Router /api/v1/host/financials/export [get]
func (h *HostHandler) ExportFinancials(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var q financialsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	buf, err := h.host.ExportFinancials(c.Request.Context(), principal, q.status())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("financials-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Reviews handles GET /api/v1/host/reviews
func (h *HostHandler) Reviews(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	reviews, err := h.host.Reviews(c.Request.Context(), principal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}
