package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context, p domain.Principal, filter repository.FlightFilter) ([]flights.FlightView, error) {
	args := m.Called(ctx, p, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, p domain.Principal, id int64) (*flights.FlightView, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, p domain.Principal, input flights.FlightInput) (*flights.FlightView, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, p domain.Principal, id int64, input flights.FlightInput) (*flights.FlightView, error) {
	args := m.Called(ctx, p, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flights.FlightView), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, p domain.Principal, id int64) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

var (
	testAdmin = domain.Principal{ID: 1, Role: domain.RoleAdmin}
	testUser  = domain.Principal{ID: 2}
)

func ptr[T any](v T) *T { return &v }

// newTestContext builds a gin context for method/target carrying body as
// JSON and p as the authenticated caller.
func newTestContext(method, target string, body any, p domain.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(principalKey, p)
	return c, w
}

func sampleFlightView() flights.FlightView {
	departs := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	return flights.FlightView{
		Flight: domain.Flight{
			ID: 1, CompanyID: 3, Name: "ZAG-SPU",
			DepartsAt: departs, ArrivesAt: departs.Add(time.Hour),
			BasePrice: 100, NoOfSeats: 10,
		},
		CurrentPrice: 133,
	}
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("GET", "/api/flights?company_id=3", nil, testUser)

	mockService.On("List", c.Request.Context(), testUser, repository.FlightFilter{CompanyID: 3}).
		Return([]flights.FlightView{sampleFlightView()}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "ZAG-SPU", response[0].Name)
	assert.Equal(t, int64(133), response[0].CurrentPrice)
	assert.Equal(t, int64(100), response[0].BasePrice)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_list_badCompanyID(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("GET", "/api/flights?company_id=abc", nil, testUser)

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("GET", "/api/flights/1", nil, testUser)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	view := sampleFlightView()
	mockService.On("GetByID", c.Request.Context(), testUser, int64(1)).Return(&view, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_notFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("GET", "/api/flights/9", nil, testUser)
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mockService.On("GetByID", c.Request.Context(), testUser, int64(9)).Return(nil, domain.NotFound("flight"))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"couldn't find flight"}`, w.Body.String())
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	view := sampleFlightView()
	body := map[string]any{
		"company_id":  3,
		"name":        "ZAG-SPU",
		"departs_at":  view.DepartsAt,
		"arrives_at":  view.ArrivesAt,
		"base_price":  100,
		"no_of_seats": 10,
	}
	c, w := newTestContext("POST", "/api/flights", body, testAdmin)

	input := flights.FlightInput{
		CompanyID: ptr(int64(3)),
		Name:      ptr("ZAG-SPU"),
		DepartsAt: ptr(view.DepartsAt),
		ArrivesAt: ptr(view.ArrivesAt),
		BasePrice: ptr(int64(100)),
		NoOfSeats: ptr(10),
	}
	mockService.On("Create", c.Request.Context(), testAdmin, input).Return(&view, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response flightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.ID)
	assert.Equal(t, int64(133), response.CurrentPrice)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_create_forbidden(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("POST", "/api/flights", map[string]any{"name": "X"}, testUser)

	mockService.On("Create", c.Request.Context(), testUser, mock.Anything).Return(nil, domain.Forbidden(domain.ReasonForbidden))

	handler.create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFlightHandler_update_overlap(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("PATCH", "/api/flights/1", map[string]any{"name": "ZAG-DBV"}, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	fields := domain.FieldErrors{"departs_at": {"overlaps with another flight of the same company"}}
	mockService.On("Update", c.Request.Context(), testAdmin, int64(1), flights.FlightInput{Name: ptr("ZAG-DBV")}).
		Return(nil, domain.Invalid(fields))

	handler.update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":{"departs_at":["overlaps with another flight of the same company"]}}`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestFlightHandler_delete(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("DELETE", "/api/flights/1", nil, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	mockService.On("Delete", c.Request.Context(), testAdmin, int64(1)).Return(nil)

	handler.delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Empty(t, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestFlightHandler_delete_badID(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, logging.Discard())

	c, w := newTestContext("DELETE", "/api/flights/x", nil, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "x"}}

	handler.delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
