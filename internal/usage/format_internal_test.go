package usage

import (
	"math"
	"testing"
)

func TestFormatScaledBeyondZettaStaysInYotta(t *testing.T) {
	yotta := math.Pow(1024, 8)
	if got := formatScaled(yotta); got != "1.00YB" {
		t.Fatalf("formatScaled(1024^8) = %q", got)
	}
	if got := formatScaled(yotta * 2048); got != "2048.00YB" {
		t.Fatalf("formatScaled(2048 YiB) = %q", got)
	}
	if got := formatScaled(math.Pow(1024, 7)); got != "1.00ZB" {
		t.Fatalf("formatScaled(1024^7) = %q", got)
	}
}
