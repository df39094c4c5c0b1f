package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roamly/internal/app/commands"
	"roamly/internal/app/dto"
	bookingapp "roamly/internal/app/handlers/booking"
	"roamly/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type commitBookingRequest struct {
	UnitID   string    `json:"unit_id"`
	GuestID  string    `json:"guest_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Quantity int       `json:"quantity"`
	Guests   int       `json:"guests"`
	Extras   []string  `json:"extras"`
}

func (h BookingHandler) Commit(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req commitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CommitBookingCommand{
		CommandID:       generateCommandID(),
		UnitID:          req.UnitID,
		GuestID:         req.GuestID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Quantity:        req.Quantity,
		Guests:          req.Guests,
		Extras:          req.Extras,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CommitBookingCommand, *bookingapp.CommitBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	query := bookingapp.GetBookingQuery{Reference: c.Param("reference")}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
