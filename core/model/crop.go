package model

// CropType identifies the crop grown on a parcel.
type CropType int

const (
	CropCorn CropType = iota
	CropWheat
	CropSoybeans
	CropCotton
	CropRice
)

// String returns a human-readable representation of the crop type.
func (t CropType) String() string {
	switch t {
	case CropCorn:
		return "corn"
	case CropWheat:
		return "wheat"
	case CropSoybeans:
		return "soybeans"
	case CropCotton:
		return "cotton"
	case CropRice:
		return "rice"
	default:
		return "unknown"
	}
}

// CropTypeFromString parses a crop name as used in plan files. Unknown names
// map to CropCorn so callers should validate inputs beforehand when the
// distinction matters.
func CropTypeFromString(name string) (CropType, bool) {
	switch name {
	case "corn":
		return CropCorn, true
	case "wheat":
		return CropWheat, true
	case "soybeans":
		return CropSoybeans, true
	case "cotton":
		return CropCotton, true
	case "rice":
		return CropRice, true
	default:
		return CropCorn, false
	}
}
