package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestJoin(t *testing.T) {
	if Join("1.2.3.4", "ua", "2025-03-01") != Sum([]byte("1.2.3.4|ua|2025-03-01")) {
		t.Error("Join should hash parts separated by |")
	}
	if Join("a", "b") == Join("a", "c") {
		t.Error("different inputs should differ")
	}
}
