// Payment-link HTTP handlers.
//
// This file exposes REST endpoints for payment-link resources:
//   - POST   /payment-links                    (create)
//   - GET    /payment-links                    (list, paginated)
//   - GET    /payment-links/status/{status}    (filter by lifecycle state)
//   - GET    /payment-links/{id}               (fetch one)
//   - POST   /payment-links/{id}/cancel        (cancel)
//   - GET    /payment-links/{id}/transactions  (payment history for one link)
//   - GET    /transactions                     (full history, paginated)
//   - GET    /transactions/stats               (aggregate report)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roseate/go-payments-backend/internal/domain"
	"github.com/roseate/go-payments-backend/internal/hotel"
	"github.com/roseate/go-payments-backend/internal/repo"
	"github.com/roseate/go-payments-backend/internal/services"
	"github.com/roseate/go-payments-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// PaymentLinkService defines the payment-link lifecycle operations consumed
// by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PaymentLinkService interface {
	// CreateLink issues a link through the gateway and persists it.
	CreateLink(ctx context.Context, in services.CreateLinkInput) (*domain.PaymentLink, error)
	// GetLink fetches a link by its gateway identifier.
	GetLink(ctx context.Context, paymentLinkID string) (*domain.PaymentLink, error)
	// ListLinks returns a page of links and the total count.
	ListLinks(ctx context.Context, page, pageSize int) ([]domain.PaymentLink, int64, error)
	// ListLinksByStatus returns all links in one lifecycle state.
	ListLinksByStatus(ctx context.Context, status string) ([]domain.PaymentLink, error)
	// CancelLink cancels an open link on the gateway and locally.
	CancelLink(ctx context.Context, paymentLinkID string) (*domain.PaymentLink, error)
	// LinkTransactions returns the payments recorded against one link.
	LinkTransactions(ctx context.Context, paymentLinkID string) ([]domain.Transaction, error)
	// ListTransactions returns a page of the transaction history.
	ListTransactions(ctx context.Context, page, pageSize int) ([]domain.Transaction, int64, error)
	// Stats summarizes the transaction history.
	Stats(ctx context.Context) (*repo.TransactionStats, error)
}

// WebhookProcessor verifies and dispatches one gateway webhook delivery.
type WebhookProcessor interface {
	Process(ctx context.Context, body []byte, signature string) (*services.WebhookResult, error)
}

// ReservationClient defines the PMS operations proxied by the reservation
// endpoints. The concrete implementation is *hotel.Client.
type ReservationClient interface {
	GetReservation(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error)
	GetDepositFolio(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error)
	GetCheckoutFolio(ctx context.Context, hotelID, reservationID string) (json.RawMessage, error)
	GetCompleteReservation(ctx context.Context, hotelID, reservationID string) (*hotel.CompleteReservation, error)
	ValidateReservation(ctx context.Context, hotelID, reservationID string) (*hotel.ReservationValidation, error)
	PostDepositPayment(ctx context.Context, r hotel.DepositPaymentRequest) (json.RawMessage, error)
	PostFolioPayment(ctx context.Context, r hotel.FolioPaymentRequest) (json.RawMessage, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for payment links, webhooks, and
// reservation proxies. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	paySvc  PaymentLinkService
	hookSvc WebhookProcessor
	pms     ReservationClient

	// defaultCurrency applies to PMS postings that omit a currency code.
	defaultCurrency string
}

// New constructs a Handlers instance bound to the given services.
func New(paySvc PaymentLinkService, hookSvc WebhookProcessor, pms ReservationClient, defaultCurrency string) *Handlers {
	return &Handlers{paySvc: paySvc, hookSvc: hookSvc, pms: pms, defaultCurrency: defaultCurrency}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPaymentLinksResponse wraps a page of links and pagination information.
type ListPaymentLinksResponse struct {
	PaymentLinks []domain.PaymentLink `json:"payment_links"`
	Pagination   Pagination           `json:"pagination"`
}

// ListTransactionsResponse wraps a page of transactions and pagination
// information.
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
	Pagination   Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationFor computes the metadata block for a page result.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// CreatePaymentLink godoc
// @ID          createPaymentLink
// @Summary     Create a payment link
// @Description Issues a hosted payment link for a reservation through the gateway and returns the stored resource.
// @Tags        PaymentLinks
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.CreateLinkInput  true  "Payment link payload"
//
// @Success     201  {object}  domain.PaymentLink
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payment-links [post]
func (h *Handlers) CreatePaymentLink(c *gin.Context) {
	var req services.CreateLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	link, err := h.paySvc.CreateLink(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingScope),
			errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrInvalidCurrency):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, link)
}

// ListPaymentLinks godoc
// @ID          listPaymentLinks
// @Summary     List payment links (paginated)
// @Description Returns a page of payment links, most recent first.
// @Tags        PaymentLinks
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListPaymentLinksResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payment-links [get]
func (h *Handlers) ListPaymentLinks(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.paySvc.ListLinks(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListPaymentLinksResponse{
		PaymentLinks: items,
		Pagination:   paginationFor(page, pageSize, total),
	})
}

// ListPaymentLinksByStatus godoc
// @ID          listPaymentLinksByStatus
// @Summary     List payment links by status
// @Description Returns all payment links in one lifecycle state (created, paid, cancelled, expired).
// @Tags        PaymentLinks
// @Produce     json
//
// @Param       status  path  string  true  "Lifecycle state"  Enums(created, paid, cancelled, expired)
//
// @Success     200  {array}   domain.PaymentLink
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown status"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payment-links/status/{status} [get]
func (h *Handlers) ListPaymentLinksByStatus(c *gin.Context) {
	items, err := h.paySvc.ListLinksByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetPaymentLink godoc
// @ID          getPaymentLink
// @Summary     Fetch one payment link
// @Description Returns a payment link by its gateway identifier (plink_*).
// @Tags        PaymentLinks
// @Produce     json
//
// @Param       id  path  string  true  "Gateway payment link id"  example(plink_NxNxNxNxNxNxNx)
//
// @Success     200  {object}  domain.PaymentLink
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payment-links/{id} [get]
func (h *Handlers) GetPaymentLink(c *gin.Context) {
	link, err := h.paySvc.GetLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "payment link not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, link)
}

// CancelPaymentLink godoc
// @ID          cancelPaymentLink
// @Summary     Cancel a payment link
// @Description Cancels an open payment link on the gateway and records the new status. Cancelling twice is a no-op.
// @Tags        PaymentLinks
// @Produce     json
//
// @Param       id  path  string  true  "Gateway payment link id"
//
// @Success     200  {object}  domain.PaymentLink
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Gateway rejected the cancellation"
// @Router      /payment-links/{id}/cancel [post]
func (h *Handlers) CancelPaymentLink(c *gin.Context) {
	link, err := h.paySvc.CancelLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "payment link not found")
			return
		}
		fail(c, http.StatusBadGateway, ErrCodeCancelFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, link)
}

// ListLinkTransactions godoc
// @ID          listLinkTransactions
// @Summary     List transactions for a payment link
// @Description Returns all payment events recorded against one link, most recent first.
// @Tags        Transactions
// @Produce     json
//
// @Param       id  path  string  true  "Gateway payment link id"
//
// @Success     200  {array}   domain.Transaction
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /payment-links/{id}/transactions [get]
func (h *Handlers) ListLinkTransactions(c *gin.Context) {
	items, err := h.paySvc.LinkTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrLinkNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "payment link not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// ListTransactions godoc
// @ID          listTransactions
// @Summary     List transaction history (paginated)
// @Description Returns a page of the full transaction history, most recent first.
// @Tags        Transactions
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListTransactionsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /transactions [get]
func (h *Handlers) ListTransactions(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.paySvc.ListTransactions(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListTransactionsResponse{
		Transactions: items,
		Pagination:   paginationFor(page, pageSize, total),
	})
}

// TransactionStats godoc
// @ID          transactionStats
// @Summary     Transaction statistics
// @Description Returns aggregate counts and the total collected amount across the transaction history.
// @Tags        Transactions
// @Produce     json
//
// @Success     200  {object}  repo.TransactionStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /transactions/stats [get]
func (h *Handlers) TransactionStats(c *gin.Context) {
	stats, err := h.paySvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
