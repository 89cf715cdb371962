package logic

import "testing"

func TestNewThresholderStartsAtFloor(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)
	if th.Threshold != ThresholdFloor {
		t.Errorf("expected threshold %v, got %v", float64(ThresholdFloor), th.Threshold)
	}
	if th.SampleCount != 0 || th.Baseline != 0 {
		t.Errorf("expected empty baseline, got %v over %d samples", th.Baseline, th.SampleCount)
	}
}

func TestThresholderIncrementalMean(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)

	if th.Observe(100) {
		t.Error("100 should not be pressed")
	}
	if th.Observe(200) {
		t.Error("200 should not be pressed")
	}

	if th.Baseline != 150 {
		t.Errorf("expected baseline 150, got %v", th.Baseline)
	}
	if th.SampleCount != 2 {
		t.Errorf("expected 2 samples, got %d", th.SampleCount)
	}
	// 150 * 1.2 = 180, below the floor
	if th.Threshold != ThresholdFloor {
		t.Errorf("expected threshold at floor, got %v", th.Threshold)
	}
}

func TestThresholderRisesAboveFloor(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)
	for i := 0; i < 50; i++ {
		th.Observe(280)
	}

	want := 280 * CalibrationFactor
	if diff := th.Threshold - want; diff > 0.001 || diff < -0.001 {
		t.Errorf("expected threshold %v, got %v", want, th.Threshold)
	}

	// Above the floor but below the adapted threshold
	if th.Observe(320) {
		t.Error("320 should be below the adapted threshold")
	}
	if !th.Observe(400) {
		t.Error("400 should be pressed")
	}
}

func TestThresholderNeverBelowFloor(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)
	samples := []int{0, 5, 299, 12, 0, 150, 4000, 250, 1, 0, 299, 80}
	for i, s := range samples {
		th.Observe(s)
		if th.Threshold < ThresholdFloor {
			t.Fatalf("sample %d (%d): threshold %v fell below floor", i, s, th.Threshold)
		}
	}
}

func TestThresholderFreezesWhilePressed(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)
	for i := 0; i < 20; i++ {
		th.Observe(200)
	}

	// The rising-edge sample is folded because the previous one was not pressed.
	if !th.Observe(4500) {
		t.Fatal("4500 should be pressed")
	}
	baseline, count, threshold := th.Baseline, th.SampleCount, th.Threshold
	if count != 21 {
		t.Errorf("expected rising-edge sample folded, got %d samples", count)
	}

	for i := 0; i < 100; i++ {
		if !th.Observe(4500) {
			t.Fatalf("iteration %d: sustained force should stay pressed", i)
		}
	}

	if th.Baseline != baseline {
		t.Errorf("baseline drifted during hold: %v -> %v", baseline, th.Baseline)
	}
	if th.SampleCount != count {
		t.Errorf("sample count changed during hold: %d -> %d", count, th.SampleCount)
	}
	if th.Threshold != threshold {
		t.Errorf("threshold changed during hold: %v -> %v", threshold, th.Threshold)
	}

	// The first release sample follows a pressed one and is not folded either.
	if th.Observe(200) {
		t.Error("200 should release")
	}
	if th.SampleCount != count {
		t.Errorf("release sample folded: %d -> %d", count, th.SampleCount)
	}
	th.Observe(200)
	if th.SampleCount != count+1 {
		t.Errorf("expected folding to resume after release, got %d samples", th.SampleCount)
	}
}

func TestThresholderMeetsThresholdInclusive(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)
	th.pressed = true
	if !th.Observe(ThresholdFloor) {
		t.Error("a sample equal to the threshold should be pressed")
	}
}

func TestThresholderColdStartAboveFloor(t *testing.T) {
	th := NewThresholder(CalibrationFactor, ThresholdFloor)

	for i := 0; i < 200; i++ {
		if th.Observe(400) {
			t.Fatalf("sample %d: resting level 400 latched pressed", i)
		}
	}
	if th.Baseline != 400 {
		t.Errorf("expected baseline 400, got %v", th.Baseline)
	}
	if diff := th.Threshold - 480; diff > 0.001 || diff < -0.001 {
		t.Errorf("expected threshold 480, got %v", th.Threshold)
	}

	if !th.Observe(4500) {
		t.Error("4500 should press over a 400 baseline")
	}
	if th.Observe(400) {
		t.Error("returning to 400 should release")
	}
}
