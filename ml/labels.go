package ml

import "fmt"

// PredictedClass is the raw class index produced by a model.
type PredictedClass int

// PriceLabel is the display name of a price tier.
type PriceLabel string

const (
	LowCost      PriceLabel = "Low Cost"
	MediumCost   PriceLabel = "Medium Cost"
	HighCost     PriceLabel = "High Cost"
	VeryHighCost PriceLabel = "Very High Cost"
)

var priceLabels = [...]PriceLabel{LowCost, MediumCost, HighCost, VeryHighCost}

var labelEmoji = map[PriceLabel]string{
	LowCost:      "📉",
	MediumCost:   "📊",
	HighCost:     "📈",
	VeryHighCost: "💎",
}

// LabelFor maps a class index to its price tier.
func LabelFor(class PredictedClass) (PriceLabel, error) {
	if class < 0 || int(class) >= len(priceLabels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownClass, class)
	}
	return priceLabels[class], nil
}

// PriceLabels lists every tier in class order.
func PriceLabels() []PriceLabel {
	return append([]PriceLabel(nil), priceLabels[:]...)
}

func (l PriceLabel) Emoji() string {
	return labelEmoji[l]
}
