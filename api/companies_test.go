package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/service/companies"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCompanyUseCase struct {
	mock.Mock
}

func (m *MockCompanyUseCase) List(ctx context.Context, p domain.Principal, activeOnly bool) ([]companies.CompanyView, error) {
	args := m.Called(ctx, p, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]companies.CompanyView), args.Error(1)
}

func (m *MockCompanyUseCase) GetByID(ctx context.Context, p domain.Principal, id int64) (*companies.CompanyView, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*companies.CompanyView), args.Error(1)
}

func (m *MockCompanyUseCase) Create(ctx context.Context, p domain.Principal, name string) (*domain.Company, error) {
	args := m.Called(ctx, p, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyUseCase) Update(ctx context.Context, p domain.Principal, id int64, name string) (*domain.Company, error) {
	args := m.Called(ctx, p, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyUseCase) Delete(ctx context.Context, p domain.Principal, id int64) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

func TestCompanyHandler_list_active(t *testing.T) {
	mockService := &MockCompanyUseCase{}
	handler := NewCompanyHandler(mockService, logging.Discard())

	c, w := newTestContext("GET", "/api/companies?filter=active", nil, testUser)

	views := []companies.CompanyView{{Company: domain.Company{ID: 3, Name: "Croatia Airlines"}, NoOfActiveFlights: 2}}
	mockService.On("List", c.Request.Context(), testUser, true).Return(views, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":3,"name":"Croatia Airlines","no_of_active_flights":2}]`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestCompanyHandler_create_taken(t *testing.T) {
	mockService := &MockCompanyUseCase{}
	handler := NewCompanyHandler(mockService, logging.Discard())

	c, w := newTestContext("POST", "/api/companies", map[string]any{"name": "croatia airlines"}, testAdmin)

	mockService.On("Create", c.Request.Context(), testAdmin, "croatia airlines").Return(nil, domain.Conflict("name", nil))

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"errors":{"name":["has already been taken"]}}`, w.Body.String())
}

func TestCompanyHandler_create(t *testing.T) {
	mockService := &MockCompanyUseCase{}
	handler := NewCompanyHandler(mockService, logging.Discard())

	c, w := newTestContext("POST", "/api/companies", map[string]any{"name": "Trade Air"}, testAdmin)

	mockService.On("Create", c.Request.Context(), testAdmin, "Trade Air").Return(&domain.Company{ID: 4, Name: "Trade Air"}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response companyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(4), response.ID)
	assert.Zero(t, response.NoOfActiveFlights)
}

func TestCompanyHandler_update(t *testing.T) {
	mockService := &MockCompanyUseCase{}
	handler := NewCompanyHandler(mockService, logging.Discard())

	c, w := newTestContext("PATCH", "/api/companies/3", map[string]any{"name": "CTN"}, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "3"}}

	mockService.On("Update", c.Request.Context(), testAdmin, int64(3), "CTN").Return(&domain.Company{ID: 3, Name: "CTN"}, nil)
	mockService.On("GetByID", c.Request.Context(), testAdmin, int64(3)).
		Return(&companies.CompanyView{Company: domain.Company{ID: 3, Name: "CTN"}, NoOfActiveFlights: 1}, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"name":"CTN","no_of_active_flights":1}`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestCompanyHandler_delete_missing(t *testing.T) {
	mockService := &MockCompanyUseCase{}
	handler := NewCompanyHandler(mockService, logging.Discard())

	c, w := newTestContext("DELETE", "/api/companies/9", nil, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	mockService.On("Delete", c.Request.Context(), testAdmin, int64(9)).Return(domain.NotFound("company"))

	handler.delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
