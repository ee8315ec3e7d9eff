package ml

import (
	"errors"
	"math"
	"testing"
)

func scenarioFeatures() FeatureVector {
	return FeatureVector{
		BatteryPower: 2000,
		ClockSpeed:   1.5,
		FrontCamera:  5,
		IntMemory:    64,
		MobileDepth:  0.5,
		MobileWeight: 150,
		Cores:        4,
		PrimaryCam:   12,
		PxHeight:     1000,
		PxWidth:      2000,
		RAM:          4096,
		ScreenHeight: 12,
		ScreenWidth:  7,
		TalkTime:     12,
	}
}

func TestFeatureNamesOrder(t *testing.T) {
	names := FeatureNames()
	if len(names) != NumFeatures {
		t.Fatalf("expected %d features, got %d", NumFeatures, len(names))
	}
	want := []string{
		"battery_power", "blue", "clock_speed", "dual_sim", "fc",
		"four_g", "int_memory", "m_dep", "mobile_wt", "n_cores",
		"pc", "px_height", "px_width", "ram", "sc_h",
		"sc_w", "talk_time", "three_g", "touch_screen", "wifi",
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("feature %d: expected %s, got %s", i, want[i], names[i])
		}
	}
	if err := CheckSchema(SchemaVersion, names); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVectorFollowsFeatureNames(t *testing.T) {
	values := make(map[string]float64)
	for i, name := range FeatureNames() {
		values[name] = float64(i + 1)
	}
	features, err := FeatureVectorFromMap(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, value := range features.Vector() {
		if value != float64(i+1) {
			t.Fatalf("position %d holds %v, expected %v", i, value, float64(i+1))
		}
	}
	if features.RAM != 14 || features.BatteryPower != 1 || features.WiFi != 20 {
		t.Fatalf("fields assigned to the wrong columns: %+v", features)
	}
}

func TestFeatureVectorFromMapRejectsBadInput(t *testing.T) {
	base := scenarioFeatures().Values()

	missing := copyValues(base)
	delete(missing, "ram")
	if _, err := FeatureVectorFromMap(missing); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for missing column, got %v", err)
	}

	unknown := copyValues(base)
	unknown["price"] = 1
	if _, err := FeatureVectorFromMap(unknown); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for unknown column, got %v", err)
	}

	fractional := copyValues(base)
	fractional["ram"] = 2048.5
	if _, err := FeatureVectorFromMap(fractional); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for fractional integer, got %v", err)
	}
}

func TestValidateBounds(t *testing.T) {
	if err := scenarioFeatures().Validate(); err != nil {
		t.Fatalf("scenario should be valid: %v", err)
	}
	for _, spec := range FeatureSpecs() {
		for _, tc := range []struct {
			value float64
			valid bool
		}{
			{spec.Min, true},
			{spec.Max, true},
			{spec.Min - 1, false},
			{spec.Max + 1, false},
		} {
			values := scenarioFeatures().Values()
			values[spec.Name] = tc.value
			features, err := FeatureVectorFromMap(values)
			if err != nil {
				t.Fatalf("%s=%v: unexpected error: %v", spec.Name, tc.value, err)
			}
			err = features.Validate()
			if tc.valid && err != nil {
				t.Fatalf("%s=%v: expected valid, got %v", spec.Name, tc.value, err)
			}
			if !tc.valid && !errors.Is(err, ErrFeatureOutOfRange) {
				t.Fatalf("%s=%v: expected out of range, got %v", spec.Name, tc.value, err)
			}
		}
	}
}

func TestClamp(t *testing.T) {
	features := FeatureVector{BatteryPower: 100000, ClockSpeed: 9, RAM: 1, Bluetooth: 5}
	clamped := features.Clamp()
	if err := clamped.Validate(); err != nil {
		t.Fatalf("clamped vector should be valid: %v", err)
	}
	if clamped.BatteryPower != 6000 || clamped.RAM != 256 || clamped.Bluetooth != 1 {
		t.Fatalf("unexpected clamp result: %+v", clamped)
	}
	if clamped.ClockSpeed != 4 || clamped.MobileDepth != 0.1 {
		t.Fatalf("unexpected float clamp result: %+v", clamped)
	}
}

func TestClampLeavesNaNForValidate(t *testing.T) {
	features := scenarioFeatures()
	features.ClockSpeed = math.NaN()
	clamped := features.Clamp()
	if !math.IsNaN(clamped.ClockSpeed) {
		t.Fatalf("expected NaN clock speed to be left alone, got %v", clamped.ClockSpeed)
	}
	if clamped.RAM != features.RAM {
		t.Fatalf("expected other fields untouched, got %+v", clamped)
	}
	if err := clamped.Validate(); !errors.Is(err, ErrFeatureOutOfRange) {
		t.Fatalf("expected ErrFeatureOutOfRange, got %v", err)
	}

	features.ClockSpeed = math.Inf(1)
	clamped = features.Clamp()
	if clamped.ClockSpeed != 4 {
		t.Fatalf("expected +Inf clamped to the maximum, got %v", clamped.ClockSpeed)
	}
	if err := features.Validate(); !errors.Is(err, ErrFeatureOutOfRange) {
		t.Fatalf("expected ErrFeatureOutOfRange for +Inf, got %v", err)
	}
}

func TestCheckSchemaRejectsOtherLayouts(t *testing.T) {
	legacy := []string{
		"battery_power", "blue", "clock_speed", "dual_sim", "fc",
		"four_g", "int_memory", "mobile_wt", "pc", "px_height",
		"px_width", "ram", "talk_time", "three_g", "touch_screen", "wifi",
	}
	if err := CheckSchema("v1", legacy); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for v1 layout, got %v", err)
	}
	if err := CheckSchema(SchemaVersion, legacy); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for short layout, got %v", err)
	}
	swapped := FeatureNames()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if err := CheckSchema(SchemaVersion, swapped); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for reordered layout, got %v", err)
	}
}

func copyValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
