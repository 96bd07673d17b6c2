package common

import "testing"

func TestMakeOpaqueToken(t *testing.T) {
	t.Parallel()

	a := MakeOpaqueToken()
	b := MakeOpaqueToken()

	if len(a) != 32 {
		t.Fatalf("unexpected token length: got %d want 32", len(a))
	}
	if a == b {
		t.Fatalf("two generated tokens are identical")
	}
}

func TestWipeByteArray(t *testing.T) {
	t.Parallel()

	b := []byte{1, 2, 3}
	WipeByteArray(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not wiped: %d", i, v)
		}
	}

	// nil must not panic
	WipeByteArray(nil)
}
