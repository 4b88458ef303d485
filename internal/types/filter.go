package types

const (
	FilterDefaultLimit = 50
	FilterMaxLimit     = 200
)

// Filter is a basic pagination filter for list queries
type Filter struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func NewDefaultFilter() Filter {
	return Filter{
		Limit:  FilterDefaultLimit,
		Offset: 0,
	}
}

// Sanitize clamps the filter to safe bounds
func (f *Filter) Sanitize() {
	if f.Limit <= 0 {
		f.Limit = FilterDefaultLimit
	}
	if f.Limit > FilterMaxLimit {
		f.Limit = FilterMaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
