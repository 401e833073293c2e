package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nmoskvitin/skyfare/internal/auth"
	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/receipt"
	"github.com/nmoskvitin/skyfare/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/user", h.listMine)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.cancel)
	router.POST("/:id/payment", h.payment)
	router.POST("/:id/confirm", h.confirm)
	router.GET("/:id/receipt", h.receipt)
}

type createBookingRequest struct {
	FlightID       int64   `json:"flightId" binding:"required"`
	PassengerName  string  `json:"passengerName" binding:"required"`
	PassengerEmail string  `json:"passengerEmail" binding:"required,email"`
	NumberOfSeats  int     `json:"numberOfSeats" binding:"required"`
	TotalPrice     float64 `json:"totalPrice" binding:"required"`
	ClassType      string  `json:"classType"`
}

type updateBookingRequest struct {
	PassengerName  *string  `json:"passengerName"`
	PassengerEmail *string  `json:"passengerEmail"`
	NumberOfSeats  *int     `json:"numberOfSeats"`
	TotalPrice     *float64 `json:"totalPrice"`
	ClassType      *string  `json:"classType"`
}

type paymentRequest struct {
	TotalPrice float64 `json:"totalPrice" binding:"required"`
}

type bookingResponse struct {
	ID             int64   `json:"id"`
	FlightID       int64   `json:"flightId"`
	PassengerName  string  `json:"passengerName"`
	PassengerEmail string  `json:"passengerEmail"`
	NumberOfSeats  int     `json:"numberOfSeats"`
	TotalPrice     float64 `json:"totalPrice"`
	Status         string  `json:"status"`
	ClassType      string  `json:"classType"`
	FlightName     string  `json:"flightName"`
	CreatedAt      string  `json:"createdAt"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:             b.ID,
		FlightID:       b.FlightID,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		NumberOfSeats:  b.NumberOfSeats,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		ClassType:      b.ClassType,
		FlightName:     b.FlightName,
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
}

func toBookingResponses(list []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	return out
}

func callerID(c *gin.Context) (int64, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
	}
	return id, ok
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), userID, booking.CreateBookingInput{
		FlightID:       req.FlightID,
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		NumberOfSeats:  req.NumberOfSeats,
		TotalPrice:     req.TotalPrice,
		ClassType:      req.ClassType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	list, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.service.ListUserBookings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	updated, err := h.service.UpdateBooking(c.Request.Context(), userID, id, booking.UpdateBookingInput{
		PassengerName:  req.PassengerName,
		PassengerEmail: req.PassengerEmail,
		NumberOfSeats:  req.NumberOfSeats,
		TotalPrice:     req.TotalPrice,
		ClassType:      req.ClassType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) payment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	result, err := h.service.ProcessPayment(c.Request.Context(), userID, id, req.TotalPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clientSecret": result.ClientSecret,
		"booking":      toBookingResponse(result.Booking),
	})
}

func (h *BookingHandler) confirm(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	confirmed, err := h.service.ConfirmBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) receipt(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if found.Status != domain.BookingStatusConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"message": "receipt is only available for confirmed bookings"})
		return
	}

	pdf, err := receipt.Generate(found)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%d.pdf"`, found.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
