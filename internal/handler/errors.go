package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/prepaid-kiosk/internal/kiosk"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
)

// formError writes a failed form action together with the form's state,
// so the display can render the message next to unchanged inputs.
func formError(c echo.Context, err error, session any) error {
	var (
		verr *ledger.ValidationError
		serr *ledger.SubmissionError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": verr.Message, "field": verr.Field, "session": session})
	case errors.As(err, &serr) && serr.Rejected:
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": serr.Message, "session": session})
	case errors.As(err, &serr):
		c.Logger().Errorf("ledger call failed: %v", serr.Err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": serr.Message, "session": session})
	case errors.Is(err, kiosk.ErrBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "session": session})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func sessionNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": kiosk.ErrSessionNotFound.Error()})
}
