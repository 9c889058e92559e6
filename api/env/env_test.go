package env

import "testing"

func Test_GetIntOr(t *testing.T) {
	Set("pool.test.size", "25")
	if v := GetIntOr("pool.test.size", 10); v != 25 {
		t.Errorf("expected 25, got %d", v)
	}

	if v := GetIntOr("pool.test.missing", 10); v != 10 {
		t.Errorf("expected default 10, got %d", v)
	}

	// an explicit zero falls back to the default as well
	Set("pool.test.zero", "0")
	if v := GetIntOr("pool.test.zero", 10); v != 10 {
		t.Errorf("expected default 10, got %d", v)
	}
}
