package echoapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core"
)

var (
	orderingParam = "ordering"

	errInvalidType = "invalid type"
)

// strictBinder binds query params on reads and JSON bodies on writes.
// Bodies with unknown fields or mistyped values are rejected.
type strictBinder struct {
	echo.DefaultBinder
}

func (b *strictBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	switch req.Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		return b.BindQueryParams(ctx, i)
	}
	if req.ContentLength == 0 {
		return nil
	}
	if ctype := req.Header.Get(echo.HeaderContentType); !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		return echo.ErrUnsupportedMediaType
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(i)
	if err == nil || err == io.EOF {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return core.NewValidationError(err, core.FieldError{Field: typeErr.Field, Error: errInvalidType})
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

type SuccessResponse struct {
	Success string `json:"success"`
}
