package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

// AreaParams are the query parameters of GET /v1/area.
type AreaParams struct {
	Town     string `form:"town" json:"town"`
	Page     *int   `form:"page,omitempty" json:"page,omitempty"`
	Distance *int   `form:"distance,omitempty" json:"distance,omitempty"`
}

// InvalidParamFormatError reports a query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

func bindAreaParams(r *http.Request) (AreaParams, error) {
	var params AreaParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "town", query, &params.Town); err != nil {
		return params, &InvalidParamFormatError{ParamName: "town", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		return params, &InvalidParamFormatError{ParamName: "page", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "distance", query, &params.Distance); err != nil {
		return params, &InvalidParamFormatError{ParamName: "distance", Err: err}
	}
	return params, nil
}

// pageOrDefault clamps page to >= 1.
func (p AreaParams) pageOrDefault() int {
	if p.Page == nil || *p.Page < 1 {
		return 1
	}
	return *p.Page
}

// distanceOrAuto clamps an explicit distance to >= 1; 0 selects the escalation plan.
func (p AreaParams) distanceOrAuto() int {
	if p.Distance == nil {
		return 0
	}
	return max(1, *p.Distance)
}
