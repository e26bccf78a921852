// Package health holds the closed-form body metrics shown on profiles and the
// metric/imperial conversions the clients use for input.
package health

import (
	"errors"
	"math"
	"strings"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

var (
	ErrMissingMeasurements = errors.New("height and weight are required")
	ErrInvalidMeasurement  = errors.New("measurements must be positive")
	ErrUnknownGender       = errors.New("gender must be male or female")
)

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

// ActivityMultiplier returns the TDEE factor for level, defaulting to sedentary.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return activityMultipliers["sedentary"]
}

// BMI is weight (kg) over height (m) squared.
func BMI(weightKg, heightCm float64) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ErrInvalidMeasurement
	}
	m := heightCm / 100
	return round1(weightKg / (m * m)), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(weightKg, heightCm float64, age int, gender string) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 || age <= 0 {
		return 0, ErrInvalidMeasurement
	}
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch strings.ToLower(gender) {
	case "male", "m":
		return round1(base + 5), nil
	case "female", "f":
		return round1(base - 161), nil
	}
	return 0, ErrUnknownGender
}

func TDEE(bmr float64, activityLevel string) float64 {
	return round1(bmr * ActivityMultiplier(activityLevel))
}

// BodyFatNavy estimates body fat percentage with the U.S. Navy method. hipCm
// is only used for women.
func BodyFatNavy(gender string, heightCm, waistCm, neckCm, hipCm float64) (float64, error) {
	if heightCm <= 0 || waistCm <= 0 || neckCm <= 0 {
		return 0, ErrInvalidMeasurement
	}
	switch strings.ToLower(gender) {
	case "male", "m":
		if waistCm <= neckCm {
			return 0, ErrInvalidMeasurement
		}
		v := 495/(1.0324-0.19077*math.Log10(waistCm-neckCm)+0.15456*math.Log10(heightCm)) - 450
		return round1(v), nil
	case "female", "f":
		if hipCm <= 0 || waistCm+hipCm <= neckCm {
			return 0, ErrInvalidMeasurement
		}
		v := 495/(1.29579-0.35004*math.Log10(waistCm+hipCm-neckCm)+0.22100*math.Log10(heightCm)) - 450
		return round1(v), nil
	}
	return 0, ErrUnknownGender
}

// Metrics is the derived set for a profile. Fields stay nil when the inputs
// for them are missing.
type Metrics struct {
	BMI         *float64 `json:"bmi,omitempty"`
	BMICategory string   `json:"bmi_category,omitempty"`
	BMR         *float64 `json:"bmr,omitempty"`
	TDEE        *float64 `json:"tdee,omitempty"`
	BodyFat     *float64 `json:"body_fat,omitempty"`
	Imperial    Imperial `json:"imperial"`
}

// Circumferences are optional tape measurements in centimetres.
type Circumferences struct {
	WaistCm float64
	NeckCm  float64
	HipCm   float64
}

func (c Circumferences) empty() bool {
	return c.WaistCm == 0 && c.NeckCm == 0 && c.HipCm == 0
}

func ComputeMetrics(u models.User) (Metrics, error) {
	return ComputeMetricsWith(u, Circumferences{})
}

// ComputeMetricsWith also estimates body fat when circumferences are given.
// Invalid circumferences are reported as an error since the caller supplied them.
func ComputeMetricsWith(u models.User, c Circumferences) (Metrics, error) {
	if u.Height == nil || u.Weight == nil {
		return Metrics{}, ErrMissingMeasurements
	}
	var m Metrics
	bmi, err := BMI(*u.Weight, *u.Height)
	if err != nil {
		return Metrics{}, err
	}
	m.BMI = &bmi
	m.BMICategory = BMICategory(bmi)
	m.Imperial = ToImperial(*u.Height, *u.Weight)

	if !c.empty() {
		fat, err := BodyFatNavy(u.Gender, *u.Height, c.WaistCm, c.NeckCm, c.HipCm)
		if err != nil {
			return Metrics{}, err
		}
		m.BodyFat = &fat
	}

	if u.Age == nil || u.Gender == "" {
		return m, nil
	}
	bmr, err := BMR(*u.Weight, *u.Height, *u.Age, u.Gender)
	if err != nil {
		return m, nil
	}
	tdee := TDEE(bmr, u.ActivityLevel)
	m.BMR = &bmr
	m.TDEE = &tdee
	return m, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
