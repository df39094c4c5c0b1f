package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"roamly/internal/app/dto"
	pricingapp "roamly/internal/app/handlers/pricing"
	"roamly/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
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
	guests, _ := strconv.Atoi(c.DefaultQuery("guests", "1"))
	var extras []string
	if raw := c.Query("extras"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				extras = append(extras, name)
			}
		}
	}
	query := pricingapp.QuoteQuery{
		UnitID:   c.Param("id"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   guests,
		Extras:   extras,
	}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.PriceBreakdown](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
