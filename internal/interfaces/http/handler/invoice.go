package handler

import (
	"strconv"
	"time"

	invoicingapp "github.com/TOPOSV/Fakturace/internal/application/invoicing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService    *invoicingapp.InvoiceService
	conversionService *invoicingapp.ConversionService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoiceService *invoicingapp.InvoiceService,
	conversionService *invoicingapp.ConversionService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:    invoiceService,
		conversionService: conversionService,
	}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)
		invoices.POST("/:id/issue", h.Issue)
		invoices.POST("/:id/payment", h.MarkPaid)
		invoices.POST("/:id/cancellation", h.Cancel)
		invoices.POST("/:id/conversion", h.Convert)
	}
}

// Create creates an invoice. Unless the request asks for a draft the invoice
// is numbered and issued immediately.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID retrieves a single invoice
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List lists invoices with filtering and pagination
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, err := parseInvoiceListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Update updates a draft invoice's header fields and lines
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req invoicingapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete soft-deletes an invoice. Deletion is refused while another invoice
// links to it.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Issue numbers and issues a draft invoice
func (h *InvoiceHandler) Issue(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// MarkPaid records a payment. Paying an advance triggers conversion to a
// regular invoice when auto-conversion is enabled; the result carries the
// converted invoice or a warning when the follow-up conversion failed.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req invoicingapp.MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.invoiceService.MarkInvoicePaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel cancels an issued invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req invoicingapp.CancelInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Convert converts a paid advance invoice into a regular invoice
func (h *InvoiceHandler) Convert(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.conversionService.Convert(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// parseInvoiceListFilter reads list query parameters. UUID, date and boolean
// filters are parsed explicitly so a malformed value fails the request
// instead of being silently dropped.
func parseInvoiceListFilter(c *gin.Context) (invoicingapp.InvoiceListFilter, error) {
	filter := invoicingapp.InvoiceListFilter{
		Search:       c.Query("search"),
		DocumentType: c.Query("document_type"),
		Direction:    c.Query("direction"),
		Status:       c.Query("status"),
	}

	if v := c.Query("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, err
		}
		filter.ClientID = &id
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Year = &year
	}
	if v := c.Query("issued_from"); v != "" {
		from, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		filter.IssuedFrom = &from
	}
	if v := c.Query("issued_to"); v != "" {
		to, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		filter.IssuedTo = &to
	}
	if v := c.Query("overdue"); v != "" {
		overdue, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.Overdue = &overdue
	}
	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Page = page
	}
	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.PageSize = size
	}

	return filter, nil
}

// parseDateParam accepts both plain dates and RFC 3339 timestamps
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
