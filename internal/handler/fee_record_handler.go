package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/model"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/response"
	"github.com/stemsi/feedesk-backend/internal/service"
	"github.com/stemsi/feedesk-backend/internal/validator"
)

// FeeRecordHandler issues, lists and exports receipts.
type FeeRecordHandler struct {
	receiptService *service.ReceiptService
	exportService  *service.ExportService
	log            zerolog.Logger
}

// NewFeeRecordHandler creates a new FeeRecordHandler.
func NewFeeRecordHandler(receiptService *service.ReceiptService, exportService *service.ExportService, log zerolog.Logger) *FeeRecordHandler {
	return &FeeRecordHandler{
		receiptService: receiptService,
		exportService:  exportService,
		log:            log.With().Str("component", "fee_record_handler").Logger(),
	}
}

// Issue godoc
// POST /api/v1/fee-records
// Subjects may be sent as objects or as plain codes; client fees are ignored.
func (h *FeeRecordHandler) Issue(c *gin.Context) {
	var req model.IssueFeeRecordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	in := service.IssueReceiptInput{
		StudentID: req.StudentID,
		MonthYear: req.MonthYear,
	}
	for _, s := range req.Subjects {
		in.SubjectCodes = append(in.SubjectCodes, s.SubjectCode)
	}
	in.SubjectCodes = append(in.SubjectCodes, req.SubjectCodes...)

	if req.TotalAmount != nil && req.TotalAmount.String() != "" {
		expected, err := money.Parse(req.TotalAmount.String())
		if err != nil {
			respondError(c, h.log, fmt.Errorf("totalAmount: %w", err))
			return
		}
		in.ExpectedTotal = &expected
	}

	rec, err := h.receiptService.IssueReceipt(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, gin.H{"feeRecord": rec}, "Fee record saved successfully")
}

// Preview godoc
// POST /api/v1/fee-records/preview
func (h *FeeRecordHandler) Preview(c *gin.Context) {
	var req model.PreviewFeeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	total, err := h.receiptService.Preview(req.Subjects)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"total": total})
}

// List godoc
// GET /api/v1/fee-records?studentId=&monthYear=
func (h *FeeRecordHandler) List(c *gin.Context) {
	records, err := h.receiptService.ListReceipts(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feeRecords": records})
}

// Get godoc
// GET /api/v1/fee-records/:receiptNumber
func (h *FeeRecordHandler) Get(c *gin.Context) {
	rec, err := h.receiptService.GetReceipt(c.Request.Context(), c.Param("receiptNumber"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feeRecord": rec})
}

// Months godoc
// GET /api/v1/fee-records/months
func (h *FeeRecordHandler) Months(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"months": h.receiptService.AvailableMonths()})
}

// Export godoc
// GET /api/v1/fee-records/export
func (h *FeeRecordHandler) Export(c *gin.Context) {
	data, err := h.exportService.ExportXLSX(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	name := fmt.Sprintf("fee_records_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, service.XLSXContentType, data)
}

// Archive godoc
// POST /api/v1/fee-records/export/archive
func (h *FeeRecordHandler) Archive(c *gin.Context) {
	archive, err := h.exportService.Archive(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, archive)
}

func filterFromQuery(c *gin.Context) model.FeeRecordFilter {
	return model.FeeRecordFilter{
		StudentID: c.Query("studentId"),
		MonthYear: c.Query("monthYear"),
	}
}
