package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/model"
)

type fakeReserver struct {
	res *booking.Result
	err error

	gotReq booking.Request
}

func (f *fakeReserver) Reserve(_ context.Context, req booking.Request) (*booking.Result, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeUsers struct{}

func (fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	return model.User{ID: id, Email: "alice@example.com", Role: model.RoleUser}, nil
}

func postBooking(t *testing.T, h *BookingHandler, userID any, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	require.NoError(t, h.Create(c))
	return rec
}

func TestCreateBookingSuccess(t *testing.T) {
	svc := &fakeReserver{res: &booking.Result{
		Booking: model.Booking{ID: 7, Reference: "ref-1", Seats: "A1,A2", NumSeats: 2, TotalPriceCents: 200, Status: model.StatusConfirmed},
		Event:   model.Event{ID: 3, Title: "Dune"},
	}}
	h := &BookingHandler{Service: svc, Users: fakeUsers{}}

	rec := postBooking(t, h, float64(42), `{"event_id":3,"seats":["a1","A2"]}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(42), svc.gotReq.UserID)
	assert.Equal(t, "alice@example.com", svc.gotReq.UserEmail)
	assert.Equal(t, []string{"a1", "A2"}, svc.gotReq.Seats)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Dune", body["event_title"])
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	h := &BookingHandler{Service: &fakeReserver{}, Users: fakeUsers{}}
	rec := postBooking(t, h, nil, `{"event_id":3,"seats":["A1"]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateBookingValidatesBody(t *testing.T) {
	h := &BookingHandler{Service: &fakeReserver{}, Users: fakeUsers{}}
	rec := postBooking(t, h, float64(1), `{"event_id":0,"seats":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid seat", &model.InvalidSeatError{Label: "Z99", Reason: "row out of range"}, http.StatusBadRequest},
		{"event not found", model.ErrEventNotFound, http.StatusNotFound},
		{"not enough capacity", model.ErrNotEnoughCapacity, http.StatusBadRequest},
		{"seats unavailable", &model.SeatsUnavailableError{Labels: []string{"A1"}}, http.StatusConflict},
		{"seat locked", &model.SeatLockedError{Label: "B2"}, http.StatusConflict},
		{"store down", model.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"locks down", model.ErrLockManagerUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &BookingHandler{Service: &fakeReserver{err: tc.err}, Users: fakeUsers{}}
			rec := postBooking(t, h, float64(1), `{"event_id":3,"seats":["A1"]}`)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestCreateBookingConflictBodyListsSeats(t *testing.T) {
	h := &BookingHandler{
		Service: &fakeReserver{err: &model.SeatsUnavailableError{Labels: []string{"A1", "B2"}}},
		Users:   fakeUsers{},
	}
	rec := postBooking(t, h, float64(1), `{"event_id":3,"seats":["A1","B2"]}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body struct {
		Unavailable []string `json:"unavailable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"A1", "B2"}, body.Unavailable)
}
