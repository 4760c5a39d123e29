package logging

import "testing"

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New("debug", format)
		if err != nil {
			t.Fatalf("New(debug, %s): %v", format, err)
		}
		if !log.Core().Enabled(-1) {
			t.Fatalf("debug level not enabled for %s", format)
		}
	}
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
