package mathx

import "math"

// Round округляет x до places знаков после запятой (половины от нуля)
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
