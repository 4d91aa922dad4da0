package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	for _, sentinel := range []error{ErrMissingArgument, ErrTokenExpired, ErrSelfSend, ErrorAlreadyExists} {
		wrapped := fmt.Errorf("outer: %w", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Fatalf("errors.Is failed for %v", sentinel)
		}
	}
	if errors.Is(ErrInvalidToken, ErrTokenExpired) {
		t.Fatal("invalid and expired tokens must stay distinguishable")
	}
}
