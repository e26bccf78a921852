package health

import "math"

const (
	cmPerInch = 2.54
	kgPerLb   = 0.45359237
	mlPerFlOz = 29.5735295625
)

func CmToInches(cm float64) float64 { return cm / cmPerInch }

func InchesToCm(in float64) float64 { return in * cmPerInch }

func KgToLbs(kg float64) float64 { return kg / kgPerLb }

func LbsToKg(lbs float64) float64 { return lbs * kgPerLb }

func MlToFlOz(ml float64) float64 { return ml / mlPerFlOz }

func FlOzToMl(oz float64) float64 { return oz * mlPerFlOz }

// CmToFeetInches splits a height into whole feet and inches rounded to one decimal.
func CmToFeetInches(cm float64) (feet int, inches float64) {
	total := CmToInches(cm)
	feet = int(total / 12)
	inches = math.Round((total-float64(feet)*12)*10) / 10
	if inches >= 12 {
		feet++
		inches -= 12
	}
	return feet, inches
}

func FeetInchesToCm(feet int, inches float64) float64 {
	return InchesToCm(float64(feet)*12 + inches)
}

// Imperial is a height and weight for display in feet, inches and pounds.
type Imperial struct {
	HeightFeet   int     `json:"height_ft"`
	HeightInches float64 `json:"height_in"`
	WeightLbs    float64 `json:"weight_lbs"`
}

func ToImperial(heightCm, weightKg float64) Imperial {
	feet, inches := CmToFeetInches(heightCm)
	return Imperial{HeightFeet: feet, HeightInches: inches, WeightLbs: round1(KgToLbs(weightKg))}
}
