package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultTake = 100
	MaxTake     = 1000
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Skip int
	Take int
}

// Default is used when the request carries no paging parameters.
func Default() Params {
	return Params{Skip: 0, Take: DefaultTake}
}

// FromContext reads skip and take from the query string. Missing values fall
// back to the defaults; malformed, negative skip, or non-positive take values
// are reported as errors. Take above MaxTake is clamped.
func FromContext(c echo.Context) (Params, error) {
	p := Default()

	if raw := c.QueryParam("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("skip must be an integer")
		}
		if skip < 0 {
			return p, fmt.Errorf("skip must not be negative")
		}
		p.Skip = skip
	}

	if raw := c.QueryParam("take"); raw != "" {
		take, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("take must be an integer")
		}
		if take <= 0 {
			return p, fmt.Errorf("take must be positive")
		}
		if take > MaxTake {
			take = MaxTake
		}
		p.Take = take
	}

	return p, nil
}

// Response wraps a paginated API response.
type Response struct {
	Data  interface{} `json:"data"`
	Skip  int         `json:"skip"`
	Take  int         `json:"take"`
	Count int         `json:"count"`
}

func NewResponse(data interface{}, count int, p Params) *Response {
	return &Response{
		Data:  data,
		Skip:  p.Skip,
		Take:  p.Take,
		Count: count,
	}
}

// Full reports whether a page of count items filled the requested window,
// meaning a following page may exist.
func (p Params) Full(count int) bool {
	return count >= p.Take
}

// Next returns the parameters for the page after this one.
func (p Params) Next() Params {
	return Params{Skip: p.Skip + p.Take, Take: p.Take}
}
