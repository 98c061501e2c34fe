package util

import "testing"

func TestGetEnvInt(t *testing.T) {
	t.Setenv("GRAFO_TEST_INT", "42")
	if got := GetEnvInt("GRAFO_TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt() = %d, want 42", got)
	}

	t.Setenv("GRAFO_TEST_INT", "4.5")
	if got := GetEnvInt("GRAFO_TEST_INT", 7); got != 7 {
		t.Errorf("GetEnvInt() = %d, want the default for a fractional value", got)
	}

	if got := GetEnvInt("GRAFO_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("GetEnvInt() = %d, want the default when unset", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("GRAFO_TEST_BOOL", "true")
	if !GetEnvBool("GRAFO_TEST_BOOL", false) {
		t.Error("GetEnvBool() = false, want true")
	}

	t.Setenv("GRAFO_TEST_BOOL", "yes")
	if GetEnvBool("GRAFO_TEST_BOOL", false) {
		t.Error("GetEnvBool() = true, want the default for a non-boolean value")
	}
}
