package model

// Summary holds the sums over a set of weekly records
type Summary struct {
	Rows   int   `json:"rows"`
	Total  int64 `json:"total"`
	MRSA   int64 `json:"mrsa"`
	VRSA   int64 `json:"vrsa"`
	Wild   int64 `json:"wild"`
	Others int64 `json:"others"`
}

// Aggregate sums every count over records. No records yields a zero Summary.
func Aggregate(records []WeeklyRecord) Summary {
	var s Summary
	for _, r := range records {
		s.Rows++
		s.Total += r.Total
		s.MRSA += r.MRSA
		s.VRSA += r.VRSA
		s.Wild += r.Wild
		s.Others += r.Others
	}
	return s
}

// Add returns the element-wise sum of two summaries
func (s Summary) Add(other Summary) Summary {
	return Summary{
		Rows:   s.Rows + other.Rows,
		Total:  s.Total + other.Total,
		MRSA:   s.MRSA + other.MRSA,
		VRSA:   s.VRSA + other.VRSA,
		Wild:   s.Wild + other.Wild,
		Others: s.Others + other.Others,
	}
}
