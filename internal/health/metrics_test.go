package health

import (
	"errors"
	"math"
	"testing"

	"github.com/kyoolapp/lifestyle-sub000/internal/models"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestBMI(t *testing.T) {
	got, err := BMI(70, 175)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 22.9 {
		t.Fatalf("expected 22.9, got %v", got)
	}
	if BMICategory(got) != "normal" {
		t.Fatalf("unexpected category %q", BMICategory(got))
	}
	if _, err := BMI(0, 175); !errors.Is(err, ErrInvalidMeasurement) {
		t.Fatalf("expected ErrInvalidMeasurement, got %v", err)
	}
}

func TestBMICategoryBoundaries(t *testing.T) {
	cases := map[float64]string{18.4: "underweight", 18.5: "normal", 25: "overweight", 30: "obese"}
	for bmi, want := range cases {
		if got := BMICategory(bmi); got != want {
			t.Errorf("BMICategory(%v) = %q, want %q", bmi, got, want)
		}
	}
}

func TestBMR(t *testing.T) {
	male, err := BMR(70, 175, 30, "male")
	if err != nil || male != 1648.8 {
		t.Fatalf("expected 1648.8, got %v (%v)", male, err)
	}
	female, err := BMR(60, 165, 25, "Female")
	if err != nil || female != 1345.3 {
		t.Fatalf("expected 1345.3, got %v (%v)", female, err)
	}
	if _, err := BMR(70, 175, 30, "other"); !errors.Is(err, ErrUnknownGender) {
		t.Fatalf("expected ErrUnknownGender, got %v", err)
	}
}

func TestTDEE(t *testing.T) {
	if got := TDEE(1600, "moderately_active"); got != 2480 {
		t.Fatalf("expected 2480, got %v", got)
	}
	if got := TDEE(1600, "unknown"); got != 1920 {
		t.Fatalf("expected sedentary default 1920, got %v", got)
	}
}

func TestBodyFatNavy(t *testing.T) {
	male, err := BodyFatNavy("male", 178, 85, 38, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(male, 16.4, 0.5) {
		t.Fatalf("expected about 16.4, got %v", male)
	}
	if _, err := BodyFatNavy("female", 165, 70, 32, 0); !errors.Is(err, ErrInvalidMeasurement) {
		t.Fatalf("expected hip requirement error, got %v", err)
	}
	if _, err := BodyFatNavy("male", 178, 30, 38, 0); !errors.Is(err, ErrInvalidMeasurement) {
		t.Fatalf("expected waist>neck error, got %v", err)
	}
}

func TestComputeMetrics(t *testing.T) {
	h, w, age := 175.0, 70.0, 30
	m, err := ComputeMetrics(models.User{Height: &h, Weight: &w, Age: &age, Gender: "male", ActivityLevel: "sedentary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.BMI == nil || *m.BMI != 22.9 {
		t.Fatalf("unexpected bmi %+v", m.BMI)
	}
	if m.BMR == nil || m.TDEE == nil || *m.TDEE != 1978.6 {
		t.Fatalf("unexpected bmr/tdee %+v %+v", m.BMR, m.TDEE)
	}

	partial, err := ComputeMetrics(models.User{Height: &h, Weight: &w})
	if err != nil || partial.BMR != nil {
		t.Fatalf("expected bmi-only metrics, got %+v %v", partial, err)
	}

	if _, err := ComputeMetrics(models.User{}); !errors.Is(err, ErrMissingMeasurements) {
		t.Fatalf("expected ErrMissingMeasurements, got %v", err)
	}
}

func TestUnitConversions(t *testing.T) {
	if !approx(LbsToKg(KgToLbs(80)), 80, 1e-9) {
		t.Fatal("kg/lbs roundtrip drifted")
	}
	if !approx(InchesToCm(10), 25.4, 1e-9) {
		t.Fatal("inches to cm wrong")
	}
	if !approx(FlOzToMl(1), 29.5735, 1e-3) {
		t.Fatal("fl oz to ml wrong")
	}
	feet, inches := CmToFeetInches(180)
	if feet != 5 || inches != 10.9 {
		t.Fatalf("expected 5ft 10.9in, got %d ft %v in", feet, inches)
	}
	if !approx(FeetInchesToCm(6, 0), 182.88, 1e-9) {
		t.Fatal("feet/inches to cm wrong")
	}
	if !approx(MlToFlOz(FlOzToMl(8)), 8, 1e-9) {
		t.Fatal("ml/floz roundtrip drifted")
	}
}

func TestComputeMetricsWith_BodyFatAndImperial(t *testing.T) {
	h, w := 178.0, 80.0
	u := models.User{Height: &h, Weight: &w, Gender: "male"}

	m, err := ComputeMetricsWith(u, Circumferences{WaistCm: 85, NeckCm: 38})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.BodyFat == nil || !approx(*m.BodyFat, 16.4, 0.5) {
		t.Fatalf("expected body fat about 16.4, got %+v", m.BodyFat)
	}
	if m.Imperial.HeightFeet != 5 || m.Imperial.WeightLbs != 176.4 {
		t.Fatalf("unexpected imperial %+v", m.Imperial)
	}

	plain, err := ComputeMetrics(u)
	if err != nil || plain.BodyFat != nil {
		t.Fatalf("expected no body fat without circumferences, got %+v (%v)", plain.BodyFat, err)
	}

	if _, err := ComputeMetricsWith(u, Circumferences{WaistCm: 30, NeckCm: 38}); !errors.Is(err, ErrInvalidMeasurement) {
		t.Fatalf("expected ErrInvalidMeasurement, got %v", err)
	}
}
