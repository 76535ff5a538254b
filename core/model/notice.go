package model

// NoticeCode classifies the non-fatal conditions a planning run can raise.
type NoticeCode int

const (
	NoticeMalformedParcel NoticeCode = iota
	NoticeIncompleteForecast
	NoticeInfeasibleParcel
	NoticeDidNotConverge
	NoticeCapacityRoundingLoss
)

// String returns a human-readable representation of the notice code.
func (c NoticeCode) String() string {
	switch c {
	case NoticeMalformedParcel:
		return "malformed_parcel"
	case NoticeIncompleteForecast:
		return "incomplete_forecast"
	case NoticeInfeasibleParcel:
		return "infeasible_parcel"
	case NoticeDidNotConverge:
		return "did_not_converge"
	case NoticeCapacityRoundingLoss:
		return "capacity_rounding_loss"
	default:
		return "unknown"
	}
}

// Notice records one diagnostic condition attached to a schedule. Day is -1
// when the condition is not tied to a specific day.
type Notice struct {
	Code     NoticeCode
	ParcelID string // empty for run-level notices
	Day      int
	Detail   string
}
