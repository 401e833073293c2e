package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/nmoskvitin/skyfare/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id int64, input flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightUseCase) Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func newFlightRouter(service flights.FlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
	router := gin.New()
	public := router.Group("/flights")
	protected := router.Group("/flights")
	NewFlightHandler(service).Register(public, protected)
	return router
}

func sampleFlight() *domain.Flight {
	departure := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Flight{
		ID:               1,
		FlightNumber:     "AA1",
		FlightName:       "Skyfare 101",
		DepartureAirport: "JFK",
		ArrivalAirport:   "LAX",
		DepartureTime:    departure,
		ArrivalTime:      departure.Add(3 * time.Hour),
		Price:            200,
		AvailableSeats:   10,
		ClassType:        "Economy",
	}
}

func TestFlightHandler_List(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	mockService.On("List", mock.Anything).Return([]domain.Flight{*sampleFlight()}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "AA1", resp[0]["flightNumber"])
	assert.Equal(t, "2025-01-01T10:00:00Z", resp[0]["departureTime"])
}

func TestFlightHandler_Get_InvalidID(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/flights/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetByID")
}

func TestFlightHandler_Get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	mockService.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_Create_Success(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	mockService.On("Create", mock.Anything, mock.AnythingOfType("flights.FlightInput")).
		Return(sampleFlight(), nil).Once()

	body := `{
		"flightNumber": "AA1",
		"flightName": "Skyfare 101",
		"departureAirport": "JFK",
		"arrivalAirport": "LAX",
		"departureTime": "2025-01-01T10:00:00Z",
		"arrivalTime": "2025-01-01T13:00:00Z",
		"price": 200,
		"availableSeats": 10,
		"classType": "Economy"
	}`
	req := httptest.NewRequest(http.MethodPost, "/flights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_Create_UnknownClassType(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	body := `{
		"flightNumber": "AA1",
		"flightName": "Skyfare 101",
		"departureAirport": "JFK",
		"arrivalAirport": "LAX",
		"departureTime": "2025-01-01T10:00:00Z",
		"arrivalTime": "2025-01-01T13:00:00Z",
		"price": 200,
		"classType": "Luxury"
	}`
	req := httptest.NewRequest(http.MethodPost, "/flights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create")
}

func TestFlightHandler_Create_BadDepartureTime(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	body := `{
		"flightNumber": "AA1",
		"flightName": "Skyfare 101",
		"departureAirport": "JFK",
		"arrivalAirport": "LAX",
		"departureTime": "next tuesday",
		"arrivalTime": "2025-01-01T13:00:00Z",
		"price": 200,
		"classType": "Economy"
	}`
	req := httptest.NewRequest(http.MethodPost, "/flights", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create")
}

func TestFlightHandler_Filter(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	departure := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expected := repository.FlightFilter{
		DepartureAirport: "JFK",
		ArrivalAirport:   "LAX",
		DepartureTime:    &departure,
	}
	mockService.On("Filter", mock.Anything, expected).Return([]domain.Flight{*sampleFlight()}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/flights/filter?departureAirport=JFK&arrivalAirport=LAX&departureTime=2025-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_Filter_BadTime(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/flights/search?departureTime=tomorrow", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Filter")
}

func TestFlightHandler_Delete(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newFlightRouter(mockService)

	mockService.On("Delete", mock.Anything, int64(4)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/flights/4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
