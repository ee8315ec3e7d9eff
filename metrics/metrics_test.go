package metrics

import (
	"testing"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}
