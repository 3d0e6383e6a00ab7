// Reservation HTTP handlers.
//
// These endpoints proxy the hotel PMS for the front desk UI:
//   - GET  /reservations/{hotelId}/{reservationId}                  (reservation document)
//   - GET  /reservations/{hotelId}/{reservationId}/deposit-folio    (deposit folio)
//   - GET  /reservations/{hotelId}/{reservationId}/checkout-folio   (in-house folio windows)
//   - GET  /reservations/{hotelId}/{reservationId}/complete         (reservation + deposit folio)
//   - GET  /reservations/{hotelId}/{reservationId}/validate         (can it take payments?)
//   - POST /reservations/{hotelId}/{reservationId}/deposit-payment  (manual deposit posting)
//   - POST /reservations/{hotelId}/{reservationId}/payment          (manual folio posting)
//
// Upstream documents are passed through verbatim; the PMS response shape is
// the contract the UI already understands.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roseate/go-payments-backend/internal/hotel"
)

// upstreamFail translates a PMS error into the error envelope. Authentication
// failures map to 502 (our credentials, not the caller's); other upstream
// statuses pass through.
func upstreamFail(c *gin.Context, err error) {
	if errors.Is(err, hotel.ErrAuthentication) {
		fail(c, http.StatusBadGateway, ErrCodeUpstreamError, "hotel api authentication failed")
		return
	}
	var ue *hotel.UpstreamError
	if errors.As(err, &ue) {
		status := ue.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		fail(c, status, ErrCodeUpstreamError, ue.Message)
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}

// scope pulls the hotel/reservation path params.
func scope(c *gin.Context) (hotelID, reservationID string) {
	return c.Param("hotelId"), c.Param("reservationId")
}

// rawJSON writes an upstream document verbatim.
func rawJSON(c *gin.Context, body []byte) {
	c.Data(http.StatusOK, "application/json", body)
}

// GetReservation godoc
// @ID          getReservation
// @Summary     Fetch a reservation
// @Description Returns the PMS reservation document for a hotel/reservation pair.
// @Tags        Reservations
// @Produce     json
//
// @Param       hotelId        path  string  true  "Hotel code"
// @Param       reservationId  path  string  true  "Reservation id"
//
// @Success     200  {object}  object                  "PMS reservation document"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId} [get]
func (h *Handlers) GetReservation(c *gin.Context) {
	hotelID, reservationID := scope(c)
	raw, err := h.pms.GetReservation(c.Request.Context(), hotelID, reservationID)
	if err != nil {
		upstreamFail(c, err)
		return
	}
	rawJSON(c, raw)
}

// GetDepositFolio godoc
// @ID          getDepositFolio
// @Summary     Fetch the deposit folio
// @Description Returns the reservation's deposit folio with projected revenue.
// @Tags        Reservations
// @Produce     json
//
// @Param       hotelId        path  string  true  "Hotel code"
// @Param       reservationId  path  string  true  "Reservation id"
//
// @Success     200  {object}  object                  "PMS deposit folio document"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/deposit-folio [get]
func (h *Handlers) GetDepositFolio(c *gin.Context) {
	hotelID, reservationID := scope(c)
	raw, err := h.pms.GetDepositFolio(c.Request.Context(), hotelID, reservationID)
	if err != nil {
		upstreamFail(c, err)
		return
	}
	rawJSON(c, raw)
}

// GetCheckoutFolio godoc
// @ID          getCheckoutFolio
// @Summary     Fetch the checkout folio
// @Description Returns the in-house folio windows with postings and balances.
// @Tags        Reservations
// @Produce     json
//
// @Param       hotelId        path  string  true  "Hotel code"
// @Param       reservationId  path  string  true  "Reservation id"
//
// @Success     200  {object}  object                  "PMS folio document"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/checkout-folio [get]
func (h *Handlers) GetCheckoutFolio(c *gin.Context) {
	hotelID, reservationID := scope(c)
	raw, err := h.pms.GetCheckoutFolio(c.Request.Context(), hotelID, reservationID)
	if err != nil {
		upstreamFail(c, err)
		return
	}
	rawJSON(c, raw)
}

// GetCompleteReservation godoc
// @ID          getCompleteReservation
// @Summary     Fetch a reservation with its deposit folio
// @Description Returns the reservation document and its deposit folio, fetched in parallel.
// @Tags        Reservations
// @Produce     json
//
// @Param       hotelId        path  string  true  "Hotel code"
// @Param       reservationId  path  string  true  "Reservation id"
//
// @Success     200  {object}  hotel.CompleteReservation
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/complete [get]
func (h *Handlers) GetCompleteReservation(c *gin.Context) {
	hotelID, reservationID := scope(c)
	out, err := h.pms.GetCompleteReservation(c.Request.Context(), hotelID, reservationID)
	if err != nil {
		upstreamFail(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// ValidateReservation godoc
// @ID          validateReservation
// @Summary     Validate a reservation for payment
// @Description Reports whether the reservation exists and is not cancelled. Always 200 with a valid flag; only upstream failures error.
// @Tags        Reservations
// @Produce     json
//
// @Param       hotelId        path  string  true  "Hotel code"
// @Param       reservationId  path  string  true  "Reservation id"
//
// @Success     200  {object}  hotel.ReservationValidation
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/validate [get]
func (h *Handlers) ValidateReservation(c *gin.Context) {
	hotelID, reservationID := scope(c)
	v, err := h.pms.ValidateReservation(c.Request.Context(), hotelID, reservationID)
	if err != nil {
		upstreamFail(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// PostingRequest is the JSON payload for manual deposit/folio postings.
type PostingRequest struct {
	// Amount in major currency units.
	Amount float64 `json:"amount" binding:"required,gt=0" example:"500"`
	// Currency defaults to the configured currency when empty.
	Currency string `json:"currency,omitempty" example:"INR"`
	// PolicyID targets one policy schedule (deposit postings only).
	PolicyID string `json:"policyId,omitempty"`
	// FolioWindowNo targets a folio window; defaults to "1".
	FolioWindowNo string `json:"folioWindowNo,omitempty" example:"1"`
	// Comment lands on the PMS posting, typically the gateway payment id.
	Comment string `json:"comment,omitempty" example:"pay_NxNxNxNxNxNxNx"`
}

// normalize applies the handler defaults to a posting request.
func (r *PostingRequest) normalize(defaultCurrency string) {
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	if r.FolioWindowNo == "" {
		r.FolioWindowNo = "1"
	}
}

// PostDepositPayment godoc
// @ID          postDepositPayment
// @Summary     Post a deposit payment
// @Description Posts a deposit onto the reservation's deposit folio, optionally against one policy schedule.
// @Tags        Reservations
// @Accept      json
// @Produce     json
//
// @Param       hotelId        path  string                    true  "Hotel code"
// @Param       reservationId  path  string                    true  "Reservation id"
// @Param       body           body  handlers.PostingRequest  true  "Posting payload"
//
// @Success     200  {object}  object                  "PMS posting response"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/deposit-payment [post]
func (h *Handlers) PostDepositPayment(c *gin.Context) {
	hotelID, reservationID := scope(c)

	var req PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amount must be a positive number")
		return
	}
	req.normalize(h.defaultCurrency)

	raw, err := h.pms.PostDepositPayment(c.Request.Context(), hotel.DepositPaymentRequest{
		HotelID:         hotelID,
		ReservationID:   reservationID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		PaymentMethod:   "RZ",
		FolioWindowNo:   req.FolioWindowNo,
		DepositPolicyID: req.PolicyID,
		Comment:         req.Comment,
	})
	if err != nil {
		upstreamFail(c, err)
		return
	}
	rawJSON(c, raw)
}

// PostFolioPayment godoc
// @ID          postFolioPayment
// @Summary     Post a folio payment
// @Description Posts a payment against one folio window of a checked-in reservation.
// @Tags        Reservations
// @Accept      json
// @Produce     json
//
// @Param       hotelId        path  string                    true  "Hotel code"
// @Param       reservationId  path  string                    true  "Reservation id"
// @Param       body           body  handlers.PostingRequest  true  "Posting payload"
//
// @Success     200  {object}  object                  "PMS posting response"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "Upstream failure"
// @Router      /reservations/{hotelId}/{reservationId}/payment [post]
func (h *Handlers) PostFolioPayment(c *gin.Context) {
	hotelID, reservationID := scope(c)

	var req PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amount must be a positive number")
		return
	}
	req.normalize(h.defaultCurrency)

	raw, err := h.pms.PostFolioPayment(c.Request.Context(), hotel.FolioPaymentRequest{
		HotelID:       hotelID,
		ReservationID: reservationID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: "RZ",
		FolioWindowNo: req.FolioWindowNo,
		Comment:       req.Comment,
	})
	if err != nil {
		upstreamFail(c, err)
		return
	}
	rawJSON(c, raw)
}
