package pitch

import "fmt"

// ErrorMetric measures the dissimilarity of two samples
type ErrorMetric func(a, b Sample) Error

// MetricType names a built-in ErrorMetric
type MetricType string

const (
	MetricAbsolute MetricType = "absolute"
	MetricSquared  MetricType = "squared"
)

// AbsoluteDifference returns |a - b|. Both operands are promoted to int
// before subtracting so the int8 range can never overflow.
func AbsoluteDifference(a, b Sample) Error {
	if a > b {
		return Error(int(a) - int(b))
	}
	return Error(int(b) - int(a))
}

// SquaredDifference returns (a - b)^2
func SquaredDifference(a, b Sample) Error {
	d := int(a) - int(b)
	return Error(d * d)
}

// MetricFor resolves a MetricType to its function
func MetricFor(metricType MetricType) (ErrorMetric, error) {
	switch metricType {
	case MetricAbsolute, "":
		return AbsoluteDifference, nil
	case MetricSquared:
		return SquaredDifference, nil
	default:
		return nil, NewPitchError(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown error metric: %s", metricType), nil)
	}
}

// maxSampleError is the largest value a metric can return for one pair
func maxSampleError(metricType MetricType) Error {
	if metricType == MetricSquared {
		return 255 * 255
	}
	return 255
}
