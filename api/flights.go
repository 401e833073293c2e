package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/nmoskvitin/skyfare/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// RegisterValidators hooks the class-type check into gin's binding engine.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("classtype", func(fl validator.FieldLevel) bool {
			return domain.ValidClassType(fl.Field().String())
		})
	}
}

func (h *FlightHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("", h.list)
	public.GET("/filter", h.filter)
	public.GET("/search", h.filter)
	public.GET("/:id", h.get)
	protected.POST("", h.create)
	protected.PUT("/:id", h.update)
	protected.DELETE("/:id", h.delete)
}

type flightRequest struct {
	FlightNumber     string  `json:"flightNumber" binding:"required"`
	FlightName       string  `json:"flightName" binding:"required"`
	DepartureAirport string  `json:"departureAirport" binding:"required"`
	ArrivalAirport   string  `json:"arrivalAirport" binding:"required"`
	DepartureTime    string  `json:"departureTime" binding:"required"`
	ArrivalTime      string  `json:"arrivalTime" binding:"required"`
	Price            float64 `json:"price" binding:"required"`
	AvailableSeats   int     `json:"availableSeats"`
	ClassType        string  `json:"classType" binding:"required,classtype"`
}

type flightResponse struct {
	ID               int64   `json:"id"`
	FlightNumber     string  `json:"flightNumber"`
	FlightName       string  `json:"flightName"`
	DepartureAirport string  `json:"departureAirport"`
	ArrivalAirport   string  `json:"arrivalAirport"`
	DepartureTime    string  `json:"departureTime"`
	ArrivalTime      string  `json:"arrivalTime"`
	Price            float64 `json:"price"`
	AvailableSeats   int     `json:"availableSeats"`
	ClassType        string  `json:"classType"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:               f.ID,
		FlightNumber:     f.FlightNumber,
		FlightName:       f.FlightName,
		DepartureAirport: f.DepartureAirport,
		ArrivalAirport:   f.ArrivalAirport,
		DepartureTime:    f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:      f.ArrivalTime.Format(time.RFC3339),
		Price:            f.Price,
		AvailableSeats:   f.AvailableSeats,
		ClassType:        f.ClassType,
	}
}

func toFlightResponses(list []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(list))
	for i := range list {
		out = append(out, toFlightResponse(&list[i]))
	}
	return out
}

func (req flightRequest) toInput(c *gin.Context) (flights.FlightInput, bool) {
	departure, err := parseTime(req.DepartureTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid departureTime", "error": err.Error()})
		return flights.FlightInput{}, false
	}
	arrival, err := parseTime(req.ArrivalTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid arrivalTime", "error": err.Error()})
		return flights.FlightInput{}, false
	}
	return flights.FlightInput{
		FlightNumber:     req.FlightNumber,
		FlightName:       req.FlightName,
		DepartureAirport: req.DepartureAirport,
		ArrivalAirport:   req.ArrivalAirport,
		DepartureTime:    departure,
		ArrivalTime:      arrival,
		Price:            req.Price,
		AvailableSeats:   req.AvailableSeats,
		ClassType:        req.ClassType,
	}, true
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}

	flight, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "flight deleted"})
}

func (h *FlightHandler) filter(c *gin.Context) {
	filter := repository.FlightFilter{
		DepartureAirport: c.Query("departureAirport"),
		ArrivalAirport:   c.Query("arrivalAirport"),
	}
	if v := c.Query("departureTime"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid departureTime", "error": err.Error()})
			return
		}
		filter.DepartureTime = &t
	}
	if v := c.Query("arrivalTime"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid arrivalTime", "error": err.Error()})
			return
		}
		filter.ArrivalTime = &t
	}

	list, err := h.service.Filter(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}
