package ml

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SchemaVersion identifies the column layout below. Model artifacts carry the
// same string and are rejected at load time when it differs.
const SchemaVersion = "v2"

// NumFeatures is the length of an assembled feature vector.
const NumFeatures = 20

// FeatureKind describes how a feature is entered and stored.
type FeatureKind string

const (
	KindInteger FeatureKind = "integer"
	KindFloat   FeatureKind = "float"
	KindFlag    FeatureKind = "flag"
)

// FeatureSpec describes one input column: its wire name, display label and
// the bounds the input widget enforces.
type FeatureSpec struct {
	Name  string      `json:"name"`
	Label string      `json:"label"`
	Unit  string      `json:"unit,omitempty"`
	Kind  FeatureKind `json:"kind"`
	Min   float64     `json:"min"`
	Max   float64     `json:"max"`
	Step  float64     `json:"step"`
}

// FeatureVector is the full set of hardware specifications for one phone.
// The validate tags mirror the bounds in FeatureSpecs.
type FeatureVector struct {
	BatteryPower int     `json:"battery_power" validate:"min=500,max=6000"`
	// "blue" is the dataset's column name for Bluetooth support.
	Bluetooth    int     `json:"blue" validate:"oneof=0 1"`
	ClockSpeed   float64 `json:"clock_speed" validate:"min=0.5,max=4"`
	DualSim      int     `json:"dual_sim" validate:"oneof=0 1"`
	FrontCamera  int     `json:"fc" validate:"min=0,max=64"`
	FourG        int     `json:"four_g" validate:"oneof=0 1"`
	IntMemory    int     `json:"int_memory" validate:"min=2,max=512"`
	MobileDepth  float64 `json:"m_dep" validate:"min=0.1,max=1"`
	MobileWeight int     `json:"mobile_wt" validate:"min=80,max=300"`
	Cores        int     `json:"n_cores" validate:"min=1,max=8"`
	PrimaryCam   int     `json:"pc" validate:"min=0,max=200"`
	PxHeight     int     `json:"px_height" validate:"min=0,max=3000"`
	PxWidth      int     `json:"px_width" validate:"min=0,max=4000"`
	RAM          int     `json:"ram" validate:"min=256,max=16000"`
	ScreenHeight int     `json:"sc_h" validate:"min=5,max=20"`
	ScreenWidth  int     `json:"sc_w" validate:"min=0,max=18"`
	TalkTime     int     `json:"talk_time" validate:"min=1,max=24"`
	ThreeG       int     `json:"three_g" validate:"oneof=0 1"`
	TouchScreen  int     `json:"touch_screen" validate:"oneof=0 1"`
	WiFi         int     `json:"wifi" validate:"oneof=0 1"`
}

type column struct {
	spec FeatureSpec
	get  func(*FeatureVector) float64
	set  func(*FeatureVector, float64) error
}

func intColumn(spec FeatureSpec, field func(*FeatureVector) *int) column {
	return column{
		spec: spec,
		get:  func(v *FeatureVector) float64 { return float64(*field(v)) },
		set: func(v *FeatureVector, x float64) error {
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s must be an integer, got %v", ErrSchemaMismatch, spec.Name, x)
			}
			*field(v) = int(x)
			return nil
		},
	}
}

func floatColumn(spec FeatureSpec, field func(*FeatureVector) *float64) column {
	return column{
		spec: spec,
		get:  func(v *FeatureVector) float64 { return *field(v) },
		set: func(v *FeatureVector, x float64) error {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s must be finite", ErrSchemaMismatch, spec.Name)
			}
			*field(v) = x
			return nil
		},
	}
}

func flagSpec(name, label string) FeatureSpec {
	return FeatureSpec{Name: name, Label: label, Kind: KindFlag, Min: 0, Max: 1, Step: 1}
}

// columns is the training column order. Vector, FeatureNames and
// FeatureVectorFromMap all read it; nothing else encodes the order.
var columns = []column{
	intColumn(FeatureSpec{Name: "battery_power", Label: "Battery Power", Unit: "mAh", Kind: KindInteger, Min: 500, Max: 6000, Step: 100},
		func(v *FeatureVector) *int { return &v.BatteryPower }),
	intColumn(flagSpec("blue", "Bluetooth"), func(v *FeatureVector) *int { return &v.Bluetooth }),
	floatColumn(FeatureSpec{Name: "clock_speed", Label: "Clock Speed", Unit: "GHz", Kind: KindFloat, Min: 0.5, Max: 4, Step: 0.1},
		func(v *FeatureVector) *float64 { return &v.ClockSpeed }),
	intColumn(flagSpec("dual_sim", "Dual SIM"), func(v *FeatureVector) *int { return &v.DualSim }),
	intColumn(FeatureSpec{Name: "fc", Label: "Front Camera", Unit: "MP", Kind: KindInteger, Min: 0, Max: 64, Step: 1},
		func(v *FeatureVector) *int { return &v.FrontCamera }),
	intColumn(flagSpec("four_g", "4G"), func(v *FeatureVector) *int { return &v.FourG }),
	intColumn(FeatureSpec{Name: "int_memory", Label: "Internal Memory", Unit: "GB", Kind: KindInteger, Min: 2, Max: 512, Step: 1},
		func(v *FeatureVector) *int { return &v.IntMemory }),
	floatColumn(FeatureSpec{Name: "m_dep", Label: "Mobile Depth", Unit: "cm", Kind: KindFloat, Min: 0.1, Max: 1, Step: 0.1},
		func(v *FeatureVector) *float64 { return &v.MobileDepth }),
	intColumn(FeatureSpec{Name: "mobile_wt", Label: "Mobile Weight", Unit: "g", Kind: KindInteger, Min: 80, Max: 300, Step: 1},
		func(v *FeatureVector) *int { return &v.MobileWeight }),
	intColumn(FeatureSpec{Name: "n_cores", Label: "Processor Cores", Kind: KindInteger, Min: 1, Max: 8, Step: 1},
		func(v *FeatureVector) *int { return &v.Cores }),
	intColumn(FeatureSpec{Name: "pc", Label: "Primary Camera", Unit: "MP", Kind: KindInteger, Min: 0, Max: 200, Step: 1},
		func(v *FeatureVector) *int { return &v.PrimaryCam }),
	intColumn(FeatureSpec{Name: "px_height", Label: "Pixel Height", Kind: KindInteger, Min: 0, Max: 3000, Step: 1},
		func(v *FeatureVector) *int { return &v.PxHeight }),
	intColumn(FeatureSpec{Name: "px_width", Label: "Pixel Width", Kind: KindInteger, Min: 0, Max: 4000, Step: 1},
		func(v *FeatureVector) *int { return &v.PxWidth }),
	intColumn(FeatureSpec{Name: "ram", Label: "RAM", Unit: "MB", Kind: KindInteger, Min: 256, Max: 16000, Step: 256},
		func(v *FeatureVector) *int { return &v.RAM }),
	intColumn(FeatureSpec{Name: "sc_h", Label: "Screen Height", Unit: "cm", Kind: KindInteger, Min: 5, Max: 20, Step: 1},
		func(v *FeatureVector) *int { return &v.ScreenHeight }),
	intColumn(FeatureSpec{Name: "sc_w", Label: "Screen Width", Unit: "cm", Kind: KindInteger, Min: 0, Max: 18, Step: 1},
		func(v *FeatureVector) *int { return &v.ScreenWidth }),
	intColumn(FeatureSpec{Name: "talk_time", Label: "Talk Time", Unit: "hours", Kind: KindInteger, Min: 1, Max: 24, Step: 1},
		func(v *FeatureVector) *int { return &v.TalkTime }),
	intColumn(flagSpec("three_g", "3G"), func(v *FeatureVector) *int { return &v.ThreeG }),
	intColumn(flagSpec("touch_screen", "Touch Screen"), func(v *FeatureVector) *int { return &v.TouchScreen }),
	intColumn(flagSpec("wifi", "WiFi"), func(v *FeatureVector) *int { return &v.WiFi }),
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	return v
}

// FeatureNames returns the column names in training order.
func FeatureNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.spec.Name
	}
	return names
}

// FeatureSpecs returns the column descriptions in training order.
func FeatureSpecs() []FeatureSpec {
	specs := make([]FeatureSpec, len(columns))
	for i, c := range columns {
		specs[i] = c.spec
	}
	return specs
}

// Vector assembles the values in training order.
func (v FeatureVector) Vector() []float64 {
	vector := make([]float64, len(columns))
	for i, c := range columns {
		vector[i] = c.get(&v)
	}
	return vector
}

// Values returns the features keyed by column name.
func (v FeatureVector) Values() map[string]float64 {
	values := make(map[string]float64, len(columns))
	for _, c := range columns {
		values[c.spec.Name] = c.get(&v)
	}
	return values
}

// FeatureVectorFromMap builds a vector from named values. Every column must
// be present exactly once and no other names are accepted.
func FeatureVectorFromMap(values map[string]float64) (FeatureVector, error) {
	var v FeatureVector
	var missing []string
	for _, c := range columns {
		x, ok := values[c.spec.Name]
		if !ok {
			missing = append(missing, c.spec.Name)
			continue
		}
		if err := c.set(&v, x); err != nil {
			return FeatureVector{}, err
		}
	}
	if len(missing) > 0 {
		return FeatureVector{}, fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	if len(values) != len(columns) {
		known := make(map[string]bool, len(columns))
		for _, c := range columns {
			known[c.spec.Name] = true
		}
		var unknown []string
		for name := range values {
			if !known[name] {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		return FeatureVector{}, fmt.Errorf("%w: unknown %s", ErrSchemaMismatch, strings.Join(unknown, ", "))
	}
	return v, nil
}

// Validate checks every feature against its widget bounds. NaN compares
// false against both bounds, so non-finite values are rejected up front.
func (v FeatureVector) Validate() error {
	var fields []string
	for _, c := range columns {
		if x := c.get(&v); math.IsNaN(x) || math.IsInf(x, 0) {
			fields = append(fields, c.spec.Name)
		}
	}
	if len(fields) > 0 {
		return fmt.Errorf("%w: %s not finite", ErrFeatureOutOfRange, strings.Join(fields, ", "))
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrFeatureOutOfRange, strings.Join(fields, ", "))
}

// Clamp pulls every feature into its bounds. NaN has no nearest bound and is
// left as is for Validate to reject.
func (v FeatureVector) Clamp() FeatureVector {
	out := v
	for _, c := range columns {
		x := c.get(&out)
		if math.IsNaN(x) {
			continue
		}
		x = math.Min(math.Max(x, c.spec.Min), c.spec.Max)
		if c.spec.Kind != KindFloat {
			x = math.Round(x)
		}
		if err := c.set(&out, x); err != nil {
			// Unreachable: x is finite and integral where required.
			continue
		}
	}
	return out
}

// CheckSchema reports whether an artifact was fit on this column layout.
func CheckSchema(version string, names []string) error {
	if version != SchemaVersion {
		return fmt.Errorf("%w: artifact schema %q, want %q", ErrSchemaMismatch, version, SchemaVersion)
	}
	if len(names) != len(columns) {
		return fmt.Errorf("%w: artifact has %d features, want %d", ErrSchemaMismatch, len(names), len(columns))
	}
	for i, c := range columns {
		if names[i] != c.spec.Name {
			return fmt.Errorf("%w: feature %d is %q, want %q", ErrSchemaMismatch, i, names[i], c.spec.Name)
		}
	}
	return nil
}
