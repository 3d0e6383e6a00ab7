package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/roseate/go-payments-backend/internal/hotel"
)

func TestGetReservation_PassesUpstreamDocumentThrough(t *testing.T) {
	doc := json.RawMessage(`{"reservations":{"reservation":[{"reservationStatus":"Reserved"}]}}`)
	pms := &stubPMS{raw: doc}
	r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, pms)

	w := doJSON(r, http.MethodGet, "/reservations/HOTEL1/12345", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Body.String() != string(doc) {
		t.Fatalf("document altered in transit: %s", w.Body.String())
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"authentication failure", hotel.ErrAuthentication, http.StatusBadGateway},
		{"upstream 404 passes through", &hotel.UpstreamError{Status: 404, Message: "reservation not found"}, http.StatusNotFound},
		{"out-of-range status clamps", &hotel.UpstreamError{Status: 302, Message: "odd redirect"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pms := &stubPMS{err: tc.err}
			r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, pms)
			w := doJSON(r, http.MethodGet, "/reservations/HOTEL1/12345", nil)
			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d want=%d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestValidateReservation_OK(t *testing.T) {
	pms := &stubPMS{valid: &hotel.ReservationValidation{Valid: false, Status: "Canceled", Message: "reservation is cancelled"}}
	r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, pms)

	w := doJSON(r, http.MethodGet, "/reservations/HOTEL1/12345/validate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d; validation outcomes ride a 200", w.Code)
	}
	var out hotel.ReservationValidation
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Valid || out.Status != "Canceled" {
		t.Fatalf("validation: %+v", out)
	}
}

func TestPostDepositPayment_BuildsRequestWithDefaults(t *testing.T) {
	pms := &stubPMS{raw: json.RawMessage(`{"posted":true}`)}
	r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, pms)

	body := []byte(`{"amount":500,"policyId":"POL1","comment":"pay_1"}`)
	w := doJSON(r, http.MethodPost, "/reservations/HOTEL1/12345/deposit-payment", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	got := pms.lastDeposit
	if got.HotelID != "HOTEL1" || got.ReservationID != "12345" {
		t.Fatalf("scope: %+v", got)
	}
	if got.Amount != 500 || got.Currency != "INR" || got.FolioWindowNo != "1" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.PaymentMethod != "RZ" || got.DepositPolicyID != "POL1" || got.Comment != "pay_1" {
		t.Fatalf("posting fields: %+v", got)
	}
}

func TestPostDepositPayment_RejectsNonPositiveAmount(t *testing.T) {
	r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, &stubPMS{})

	for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":-5}`} {
		w := doJSON(r, http.MethodPost, "/reservations/HOTEL1/12345/deposit-payment", []byte(body))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status=%d want=400", body, w.Code)
		}
	}
}

func TestPostFolioPayment_TargetsRequestedWindow(t *testing.T) {
	pms := &stubPMS{raw: json.RawMessage(`{"posted":true}`)}
	r := newHandlerRouter(&stubPaySvc{}, &stubHookSvc{}, pms)

	body := []byte(`{"amount":120.50,"currency":"EUR","folioWindowNo":"3"}`)
	w := doJSON(r, http.MethodPost, "/reservations/HOTEL1/12345/payment", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	got := pms.lastFolio
	if got.Amount != 120.50 || got.Currency != "EUR" || got.FolioWindowNo != "3" {
		t.Fatalf("folio posting: %+v", got)
	}
	if got.PaymentMethod != "RZ" {
		t.Fatalf("payment method: %q", got.PaymentMethod)
	}
}
