package models

// MetricNames is the fixed catalog of evaluation dimensions. Analysis
// responses are validated against this set; anything else the model invents
// gets dropped before persistence.
var MetricNames = []string{
	"Technical Knowledge",
	"Problem Solving",
	"Communication",
	"Code Quality",
	"Industry Awareness",
	"Confidence",
}

// IsKnownMetric reports whether name is part of the fixed metric catalog.
func IsKnownMetric(name string) bool {
	for _, m := range MetricNames {
		if m == name {
			return true
		}
	}
	return false
}
