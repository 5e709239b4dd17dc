package core

import "testing"

func TestCaseStatus(t *testing.T) {
	if StatusRunning.IsTerminal() {
		t.Error("running must not be terminal")
	}
	for _, s := range []CaseStatus{StatusPassed, StatusFailed, StatusBroken, StatusSkipped} {
		if !s.IsTerminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	if !StatusPassed.IsSuccess() || !StatusSkipped.IsSuccess() {
		t.Error("passed and skipped count as success")
	}
	if StatusFailed.IsSuccess() || StatusBroken.IsSuccess() {
		t.Error("failed and broken must not count as success")
	}
}

func TestRunResult_ComputeSummary(t *testing.T) {
	r := RunResult{Cases: []CaseResult{
		{Name: "a", Status: StatusPassed},
		{Name: "b", Status: StatusPassed, Flaky: true},
		{Name: "c", Status: StatusFailed},
		{Name: "d", Status: StatusBroken},
		{Name: "e", Status: StatusSkipped},
	}}
	r.ComputeSummary()

	if r.Total != 5 {
		t.Errorf("Total = %d, want 5", r.Total)
	}
	if r.Passed != 2 || r.Failed != 1 || r.Broken != 1 || r.Skipped != 1 {
		t.Errorf("summary = %d/%d/%d/%d, want 2/1/1/1",
			r.Passed, r.Failed, r.Broken, r.Skipped)
	}
	if r.Flaky != 1 {
		t.Errorf("Flaky = %d, want 1", r.Flaky)
	}
	if r.Success() {
		t.Error("run with failures must not be a success")
	}
}

func TestRunResult_Success(t *testing.T) {
	r := RunResult{Cases: []CaseResult{
		{Status: StatusPassed},
		{Status: StatusSkipped},
	}}
	if !r.Success() {
		t.Error("all passed/skipped should be a success")
	}

	empty := RunResult{}
	if !empty.Success() {
		t.Error("empty run counts as success")
	}
}

func TestDevice_Prop(t *testing.T) {
	d := Device{ID: "emulator-5554", Props: map[string]string{"model": "Pixel 6"}}
	if got := d.Prop("model"); got != "Pixel 6" {
		t.Errorf("Prop(model) = %q", got)
	}
	if got := d.Prop("missing"); got != "" {
		t.Errorf("Prop(missing) = %q, want empty", got)
	}

	var nilProps Device
	if got := nilProps.Prop("model"); got != "" {
		t.Errorf("Prop on nil map = %q, want empty", got)
	}
}
