package accel

import "testing"

func TestDetect_ScalarBuildReportsNoWideRegister(t *testing.T) {
	c := Detect()
	if c.Wide() {
		t.Error("default build (no -tags wide) should never report a wide-register path")
	}
}

func TestEligibleForFastWrite_NotRequired(t *testing.T) {
	c := Detect()
	if !c.EligibleForFastWrite(false) {
		t.Error("a stage mix that doesn't require wide registers is always eligible")
	}
}

func TestEligibleForFastWrite_RequiredButUnavailable(t *testing.T) {
	c := Detect()
	if c.EligibleForFastWrite(true) != c.Wide() {
		t.Error("requiring wide registers should track Wide() exactly")
	}
}

func TestTeardown_DoesNotPanic(t *testing.T) {
	c := Detect()
	c.Teardown()
}
