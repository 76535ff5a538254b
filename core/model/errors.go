package model

import "errors"

var (
	// ErrMalformedParcel marks parcels whose static definition cannot be
	// planned (inverted soil bounds, missing crop coefficients, bad area).
	ErrMalformedParcel = errors.New("malformed parcel")

	// ErrIncompleteForecast marks parcels whose forecast is missing or
	// shorter than the planning horizon.
	ErrIncompleteForecast = errors.New("incomplete forecast")
)
