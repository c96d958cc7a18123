package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fastlab/regain-api/internal/infrastructure/datastore"
)

// Health answers the root path with a timestamped greeting, as the web
// app's startup probe expects.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, fmt.Sprintf("Hello world. The time is %s", datastore.NowISO()))
}
