package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	invoicingapp "github.com/TOPOSV/Fakturace/internal/application/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/domain/shared"
	"github.com/TOPOSV/Fakturace/internal/domain/shared/valueobject"
	"github.com/TOPOSV/Fakturace/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository implements invoicing.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) MaxSequenceInPartition(ctx context.Context, docType invoicing.DocumentType, year int) (int64, error) {
	args := m.Called(ctx, docType, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountLinkingTo(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveConversion(ctx context.Context, advance, regular *invoicing.Invoice) error {
	args := m.Called(ctx, advance, regular)
	return args.Error(0)
}

// MockClientRepository implements partner.ClientRepository for testing
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindByICO(ctx context.Context, ico string) (*partner.Client, error) {
	args := m.Called(ctx, ico)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter partner.ClientFilter) ([]partner.Client, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, filter partner.ClientFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newInvoiceTestRouter wires the invoice handler with real services on top of
// mock repositories
func newInvoiceTestRouter(invoiceRepo *MockInvoiceRepository, clientRepo *MockClientRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	sequencer := invoicing.NewNumberSequencer(invoiceRepo)
	converter := invoicingapp.NewConversionService(invoiceRepo, sequencer)
	service := invoicingapp.NewInvoiceService(invoiceRepo, clientRepo, sequencer, converter)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewInvoiceHandler(service, converter).RegisterRoutes(api)
	return engine
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func activeTestClient(t *testing.T) *partner.Client {
	t.Helper()
	client, err := partner.NewClient("Testovací klient s.r.o.", "45274649", "CZ45274649", true)
	require.NoError(t, err)
	return client
}

func issuedTestInvoice(t *testing.T, docType invoicing.DocumentType, number string) *invoicing.Invoice {
	t.Helper()

	item, err := invoicing.NewInvoiceItem("Konzultace", decimal.NewFromInt(10), decimal.NewFromInt(1500), decimal.NewFromInt(21), "hod")
	require.NoError(t, err)

	issueDate := time.Now().AddDate(0, 0, -7)
	invoice, err := invoicing.NewInvoice(
		docType,
		invoicing.DirectionIssued,
		uuid.New(),
		"Testovací klient s.r.o.",
		issueDate,
		issueDate.AddDate(0, 0, 14),
		valueobject.CZK,
		invoicing.PaymentMethodTransfer,
		false,
		true,
		[]invoicing.InvoiceItem{item},
		"",
	)
	require.NoError(t, err)
	require.NoError(t, invoice.AssignNumber(number))
	require.NoError(t, invoice.Issue())
	return invoice
}

func TestInvoiceHandler_Create(t *testing.T) {
	t.Run("creates and issues an invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		client := activeTestClient(t)
		clientRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		invoiceRepo.On("MaxSequenceInPartition", mock.Anything, invoicing.DocumentTypeRegular, time.Now().Year()).Return(int64(0), nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		body := map[string]any{
			"document_type": "REGULAR",
			"client_id":     client.ID.String(),
			"items": []map[string]any{
				{"description": "Konzultace", "quantity": "10", "unit": "hod", "unit_price": "1500", "vat_rate": "21"},
			},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/invoices", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, fmt.Sprintf("F%d-000001", time.Now().Year()), data["number"])
		assert.Equal(t, "ISSUED", data["status"])
		assert.Equal(t, "18150", data["total"])
	})

	t.Run("rejects a request without items", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		body := map[string]any{
			"document_type": "REGULAR",
			"client_id":     uuid.New().String(),
			"items":         []map[string]any{},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/invoices", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		clientRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown document type", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		body := map[string]any{
			"document_type": "PROFORMA",
			"client_id":     uuid.New().String(),
			"items": []map[string]any{
				{"description": "Konzultace", "quantity": "1", "unit_price": "100"},
			},
		}

		w := performRequest(router, http.MethodPost, "/api/v1/invoices", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_GetByID(t *testing.T) {
	t.Run("returns the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000042")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices/"+invoice.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "F2025-000042", data["number"])
	})

	t.Run("maps missing invoice to 404", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		id := uuid.New()
		invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("rejects a malformed ID", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_List(t *testing.T) {
	t.Run("returns invoices with pagination meta", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000001")
		invoiceRepo.On("FindAll", mock.Anything, mock.AnythingOfType("invoicing.InvoiceFilter")).Return([]invoicing.Invoice{*invoice}, nil)
		invoiceRepo.On("Count", mock.Anything, mock.AnythingOfType("invoicing.InvoiceFilter")).Return(int64(1), nil)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices?page=1&page_size=20", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Equal(t, 20, resp.Meta.PageSize)
	})

	t.Run("passes the overdue filter through", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoiceRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
			return f.Overdue != nil && *f.Overdue
		})).Return([]invoicing.Invoice{}, nil)
		invoiceRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices?overdue=true", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects a malformed client_id filter", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		w := performRequest(router, http.MethodGet, "/api/v1/invoices?client_id=abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_MarkPaid(t *testing.T) {
	t.Run("marks a regular invoice as paid", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000010")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/payment", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		paid := data["invoice"].(map[string]interface{})
		assert.Equal(t, "PAID", paid["status"])
		assert.Nil(t, data["converted_invoice"])
	})

	t.Run("paying an advance returns the converted invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		advance := issuedTestInvoice(t, invoicing.DocumentTypeAdvance, "ZF2025-000003")
		advance.AutoConvertOnPayment = true
		invoiceRepo.On("FindByID", mock.Anything, advance.ID).Return(advance, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, advance).Return(nil)
		invoiceRepo.On("MaxSequenceInPartition", mock.Anything, invoicing.DocumentTypeRegular, mock.AnythingOfType("int")).Return(int64(11), nil)
		invoiceRepo.On("SaveConversion", mock.Anything, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+advance.ID.String()+"/payment", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		converted := data["converted_invoice"].(map[string]interface{})
		assert.Equal(t, fmt.Sprintf("F%d-000012", time.Now().Year()), converted["number"])
		assert.Equal(t, "0", converted["total"])
	})

	t.Run("paying a draft numbers it on the spot", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		item, err := invoicing.NewInvoiceItem("Konzultace", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(21), "")
		require.NoError(t, err)
		draft, err := invoicing.NewInvoice(
			invoicing.DocumentTypeRegular, invoicing.DirectionIssued,
			uuid.New(), "Klient", time.Now(), time.Now().AddDate(0, 0, 14),
			valueobject.CZK, invoicing.PaymentMethodTransfer,
			false, true, []invoicing.InvoiceItem{item}, "",
		)
		require.NoError(t, err)
		invoiceRepo.On("FindByID", mock.Anything, draft.ID).Return(draft, nil)
		invoiceRepo.On("MaxSequenceInPartition", mock.Anything, invoicing.DocumentTypeRegular, mock.AnythingOfType("int")).Return(int64(0), nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, draft).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+draft.ID.String()+"/payment", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		paid := data["invoice"].(map[string]interface{})
		assert.Equal(t, "PAID", paid["status"])
		assert.Equal(t, fmt.Sprintf("F%d-000001", time.Now().Year()), paid["number"])
	})
}

func TestInvoiceHandler_Cancel(t *testing.T) {
	t.Run("cancels an issued invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000020")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		body := map[string]any{"reason": "Chybná fakturační adresa"}
		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/cancellation", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "CANCELLED", data["status"])
	})

	t.Run("cancelling a paid invoice returns 422", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000021")
		require.NoError(t, invoice.MarkPaid(time.Now()))
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/cancellation", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestInvoiceHandler_Delete(t *testing.T) {
	t.Run("deletes an unlinked invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000030")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("CountLinkingTo", mock.Anything, invoice.ID).Return(int64(0), nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/invoices/"+invoice.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("refuses to delete a linked invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeAdvance, "ZF2025-000005")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("CountLinkingTo", mock.Anything, invoice.ID).Return(int64(1), nil)

		w := performRequest(router, http.MethodDelete, "/api/v1/invoices/"+invoice.ID.String(), nil)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeLinkedEntity, resp.Error.Code)
	})
}

func TestInvoiceHandler_Convert(t *testing.T) {
	t.Run("converting a regular invoice is rejected", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		invoice := issuedTestInvoice(t, invoicing.DocumentTypeRegular, "F2025-000040")
		invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+invoice.ID.String()+"/conversion", nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("converts a paid advance", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		advance := issuedTestInvoice(t, invoicing.DocumentTypeAdvance, "ZF2025-000007")
		require.NoError(t, advance.MarkPaid(time.Now()))
		invoiceRepo.On("FindByID", mock.Anything, advance.ID).Return(advance, nil)
		invoiceRepo.On("MaxSequenceInPartition", mock.Anything, invoicing.DocumentTypeRegular, mock.AnythingOfType("int")).Return(int64(0), nil)
		invoiceRepo.On("SaveConversion", mock.Anything, advance, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+advance.ID.String()+"/conversion", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, fmt.Sprintf("F%d-000001", time.Now().Year()), data["number"])
		assert.Len(t, data["items"], 2)
		assert.Equal(t, "0", data["total"])
		assert.Equal(t, "PAID", data["status"])
	})

	t.Run("converting twice returns 409", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		router := newInvoiceTestRouter(invoiceRepo, clientRepo)

		advance := issuedTestInvoice(t, invoicing.DocumentTypeAdvance, "ZF2025-000008")
		require.NoError(t, advance.MarkPaid(time.Now()))
		require.NoError(t, advance.LinkInvoice(uuid.New()))
		invoiceRepo.On("FindByID", mock.Anything, advance.ID).Return(advance, nil)

		w := performRequest(router, http.MethodPost, "/api/v1/invoices/"+advance.ID.String()+"/conversion", nil)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeAlreadyConverted, resp.Error.Code)
	})
}
