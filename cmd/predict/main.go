package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"phoneprice/config"
	"phoneprice/logger"
	"phoneprice/ml"
)

// Defaults describe a mid-range handset so a bare invocation predicts something.
var defaults = map[string]float64{
	"battery_power": 2000,
	"clock_speed":   1.5,
	"fc":            5,
	"int_memory":    64,
	"m_dep":         0.5,
	"mobile_wt":     150,
	"n_cores":       4,
	"pc":            12,
	"px_height":     1000,
	"px_width":      2000,
	"ram":           4096,
	"sc_h":          12,
	"sc_w":          7,
	"talk_time":     12,
}

func main() {
	modelPath := flag.String("model", "models/price_tree.json", "model artifact path")
	clamp := flag.Bool("clamp", false, "clamp out-of-range values instead of failing")
	verbose := flag.Bool("v", false, "log at debug level")

	values := make(map[string]*float64)
	for _, spec := range ml.FeatureSpecs() {
		usage := fmt.Sprintf("%s (%v-%v)", spec.Label, spec.Min, spec.Max)
		values[spec.Name] = flag.Float64(spec.Name, defaults[spec.Name], usage)
	}
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(config.LogConfig{Level: level, Development: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*modelPath, values, *clamp, log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(modelPath string, flags map[string]*float64, clamp bool, log *zap.Logger) error {
	model, err := ml.LoadModel(modelPath)
	if err != nil {
		return err
	}
	predictor, err := ml.NewPredictor(ml.StaticSource{Model: model}, ml.WithCacheSize(0), ml.WithLogger(log))
	if err != nil {
		return err
	}

	values := make(map[string]float64, len(flags))
	for name, value := range flags {
		values[name] = *value
	}
	features, err := ml.FeatureVectorFromMap(values)
	if err != nil {
		return err
	}
	if clamp {
		features = features.Clamp()
	}

	prediction, err := predictor.Predict(context.Background(), features)
	if err != nil {
		return err
	}
	fmt.Printf("Predicted Price Range: %s %s\n", prediction.Label, prediction.Label.Emoji())
	return nil
}
