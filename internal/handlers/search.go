package handlers

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	authmw "github.com/okoval/contacts_api/internal/middleware/auth"
	"github.com/okoval/contacts_api/internal/service/search"
	"github.com/okoval/contacts_api/internal/transport"
	"github.com/okoval/contacts_api/internal/util"
)

type SearchHandler struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSearchHandler(es *elasticsearch.Client, index string) *SearchHandler {
	return &SearchHandler{
		ES:    es,
		Index: index,
	}
}

func (h *SearchHandler) Handler(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	user := authmw.CurrentUser(c)
	from, size := util.Calculate(
		parseIntDefault(c.QueryParam("skip"), 0),
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
	)

	ctx := c.Request().Context()

	total, contacts, err := search.Search(ctx, h.ES, h.Index, q, user.ID, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "contacts": transport.NewContactResponses(contacts)})
}
