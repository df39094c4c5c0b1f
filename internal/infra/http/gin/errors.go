package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"roamly/internal/app/dto"
	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
	domainpricing "roamly/internal/domain/pricing"
	domainrange "roamly/internal/domain/shared/daterange"
)

// respondError translates domain errors into HTTP responses. Lost-race
// commit conflicts carry a structured body so clients can offer
// alternatives without another availability call.
func respondError(c *gin.Context, err error) {
	if conflict, ok := domainbooking.AsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":    conflict.Error(),
			"conflict": dto.MapCommitConflict(conflict),
		})
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domaininventory.ErrUnitNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrPastDate),
		errors.Is(err, domainavailability.ErrInvalidQuantity),
		errors.Is(err, domainavailability.ErrCapacityExceeded),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrInvalidQuantity),
		errors.Is(err, domainpricing.ErrInvalidGuests):
		status = http.StatusBadRequest
	case errors.Is(err, domainavailability.ErrStoreTimeout),
		errors.Is(err, uow.ErrLockTimeout):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseDate accepts calendar dates and full timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
