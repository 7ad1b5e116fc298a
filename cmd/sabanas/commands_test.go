package main

import (
	"strings"
	"testing"

	"github.com/phantoooomCam/sabanas-server/internal/models"
)

func TestStateColorContainsStateName(t *testing.T) {
	for _, s := range []models.FileState{
		models.StateUploaded, models.StateQueued, models.StateProcessing,
		models.StateProcessed, models.StateError,
	} {
		got := stateColor(s)
		if !strings.Contains(got, string(s)) {
			t.Errorf("stateColor(%q) = %q, want it to contain %q", s, got, s)
		}
	}
}
