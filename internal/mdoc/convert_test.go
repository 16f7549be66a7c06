package mdoc

import (
	"math"
	"strings"
	"testing"
)

func TestTiltSeries_FromSample(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleMdoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ts := f.TiltSeries("")
	if ts.TsID != "20211130_PKV_tomo_01" {
		t.Errorf("TsID = %q, want image file base", ts.TsID)
	}
	if len(ts.Images) != 3 {
		t.Fatalf("images = %d, want 3", len(ts.Images))
	}

	// Images come back angle-sorted with Index renumbered.
	wantAngles := []float64{-10, -0.01, 10}
	for i, im := range ts.Images {
		if im.TiltAngle != wantAngles[i] {
			t.Errorf("image %d angle = %v, want %v", i, im.TiltAngle, wantAngles[i])
		}
		if im.Index != i+1 {
			t.Errorf("image %d Index = %d, want %d", i, im.Index, i+1)
		}
	}

	// Dose accumulates in acquisition order: Z0 (3.2), Z2 (3.1), Z1 (3.2).
	for _, im := range ts.Images {
		if im.TiltAngle == -10 && math.Abs(im.AccumDose-9.5) > 1e-9 {
			t.Errorf("last-acquired tilt AccumDose = %v, want 9.5", im.AccumDose)
		}
		if im.TiltAngle == 10 && math.Abs(im.AccumDose-6.3) > 1e-9 {
			t.Errorf("second-acquired tilt AccumDose = %v, want 6.3", im.AccumDose)
		}
	}
}

func TestAcquisition_FromSample(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleMdoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	acq := f.Acquisition()
	if acq.Voltage != 200 || acq.SamplingRate != 3.64 {
		t.Errorf("acquisition globals = %+v", acq)
	}
	if acq.TiltAxisAngle != -91.81 {
		t.Errorf("TiltAxisAngle = %v", acq.TiltAxisAngle)
	}
	if acq.AngleMin != -10 || acq.AngleMax != 10 {
		t.Errorf("angle range = %v..%v", acq.AngleMin, acq.AngleMax)
	}
	if math.Abs(acq.AccumDose-9.5) > 1e-9 {
		t.Errorf("AccumDose = %v, want 9.5", acq.AccumDose)
	}
	if math.Abs(acq.Step-10) > 1e-9 {
		t.Errorf("Step = %v, want 10", acq.Step)
	}
}
