package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"roamly/internal/app/dto"
	availabilityapp "roamly/internal/app/handlers/availability"
	"roamly/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	checkIn, err := parseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in date"})
		return
	}
	checkOut, err := parseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out date"})
		return
	}
	quantity, _ := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	query := availabilityapp.CheckAvailabilityQuery{
		UnitID:    c.Param("id"),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Quantity:  quantity,
		AllowPast: c.Query("include_past") == "true",
	}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Alternatives(c *gin.Context) {
	checkIn, err := parseDate(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in date"})
		return
	}
	checkOut, err := parseDate(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out date"})
		return
	}
	quantity, _ := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	windowDays, _ := strconv.Atoi(c.Query("window_days"))
	maxResults, _ := strconv.Atoi(c.Query("max_results"))
	query := availabilityapp.SuggestAlternativesQuery{
		UnitID:         c.Param("id"),
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Quantity:       quantity,
		WindowDays:     windowDays,
		MaxSuggestions: maxResults,
		IncludeEarlier: c.Query("include_earlier") == "true",
	}
	result, err := queries.Ask[availabilityapp.SuggestAlternativesQuery, dto.Alternatives](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
