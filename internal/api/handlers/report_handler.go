package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/repository"
	"github.com/recopesa/intake-backend/internal/report"
	"github.com/recopesa/intake-backend/internal/service"
)

type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Create starts a new PENDING report from the wizard's step-1 header.
func (h *ReportHandler) Create(c *gin.Context) {
	var in domain.CreateReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if userID := c.GetHeader("X-User-Id"); userID != "" {
		in.UserID = userID
	}

	created, err := h.reports.CreateReport(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns one report with items and relations.
func (h *ReportHandler) Get(c *gin.Context) {
	r, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// List returns a filtered page of reports.
func (h *ReportHandler) List(c *gin.Context) {
	page := parsePositiveIntWithDefault(c.Query("page"), 1)
	pageSize := parsePositiveIntWithDefault(c.Query("pageSize"), 20)

	pageResult, err := h.reports.List(c.Request.Context(), parseReportFilter(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResult)
}

// Summary returns the per-product dashboard roll-up.
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context(), parseReportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddItem attaches a priced line item to a pending report and returns the
// full updated report.
func (h *ReportHandler) AddItem(c *gin.Context) {
	var in domain.CreateReportItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.reports.AddItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RemoveItem deletes a line item and returns the full updated report.
func (h *ReportHandler) RemoveItem(c *gin.Context) {
	updated, err := h.reports.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Finish closes a pending report with the supplied tare weight.
func (h *ReportHandler) Finish(c *gin.Context) {
	var in domain.FinishReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.reports.Finish(c.Request.Context(), c.Param("id"), in.TareWeight)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Cancel voids a pending report.
func (h *ReportHandler) Cancel(c *gin.Context) {
	updated, err := h.reports.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ExportExcel streams the filtered reports as an XLSX workbook.
func (h *ReportHandler) ExportExcel(c *gin.Context) {
	f, err := h.exports.Excel(c.Request.Context(), parseReportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	streamFile(c, f)
}

// ExportCSV streams the filtered reports as CSV.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	f, err := h.exports.CSV(c.Request.Context(), parseReportFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	streamFile(c, f)
}

// Ticket streams the printable PDF weigh ticket for one report.
func (h *ReportHandler) Ticket(c *gin.Context) {
	f, err := h.exports.Ticket(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	streamFile(c, f)
}

func streamFile(c *gin.Context, f *service.File) {
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func parseReportFilter(c *gin.Context) *domain.ReportFilter {
	filter := &domain.ReportFilter{
		SupplierID: strings.TrimSpace(c.Query("supplierId")),
		ProductID:  strings.TrimSpace(c.Query("productId")),
		Search:     strings.TrimSpace(c.Query("search")),
		State:      strings.TrimSpace(c.Query("state")),
	}

	if t, ok := parseDate(c.Query("startDate")); ok {
		filter.StartDate = &t
	}
	if t, ok := parseDate(c.Query("endDate")); ok {
		filter.EndDate = &t
	}

	if filter.SupplierID == "" && filter.ProductID == "" && filter.Search == "" &&
		filter.State == "" && filter.StartDate == nil && filter.EndDate == nil {
		return nil
	}
	return filter
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// respondError maps domain failures onto HTTP statuses: bad input is 400,
// missing rows 404, lifecycle conflicts 409, everything else 500.
func respondError(c *gin.Context, err error) {
	switch {
	case report.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, report.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
