package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Hanyshennawy/moe-scorm-lms/core"
)

var (
	orderingParam = "ordering"
	limitParam    = "limit"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = core.CleanString(field, true /* lower */)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindLimit returns the `limit` query param, or 0 when absent or invalid.
func bindLimit(ctx echo.Context) int {
	n, err := strconv.Atoi(ctx.QueryParam(limitParam))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
