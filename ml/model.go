package ml

// Model is a trained classifier over the columns returned by FeatureNames.
// Implementations must be safe for concurrent Predict calls.
type Model interface {
	Predict(features []float64) (int, float64, error)
	FeatureNames() []string
}

// ModelSource hands out the model currently in service together with its
// generation. The generation changes whenever a different model is served;
// models themselves need not be comparable.
type ModelSource interface {
	Current() (Model, uint64, error)
}
