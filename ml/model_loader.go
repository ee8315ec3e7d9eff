package ml

// LoadModel reads a decision-tree artifact and checks that it was fit on the
// compiled feature schema.
func LoadModel(path string) (Model, error) {
	model := &DecisionTree{}
	if err := model.Load(path); err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	if err := CheckSchema(model.SchemaVersion(), model.FeatureNames()); err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	return model, nil
}
