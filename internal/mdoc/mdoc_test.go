package mdoc

import (
	"math"
	"strings"
	"testing"
)

const sampleMdoc = `DataMode = 6
ImageSize = 4096 4096
ImageFile = 20211130_PKV_tomo_01.mrc
PixelSpacing = 3.64
Voltage = 200.00
Magnification = 42000

[T = Tomography: TALOS-D3558    30-Nov-21  17:42:06]
[T =   TiltAxisAngle = -91.81  Binning = 1  SpotSize = 7]

[ZValue = 0]
TiltAngle = -0.01
ExposureDose = 3.2
DateTime = 30-Nov-21  17:42:30
SubFramePath = X:\DoseFractions\tomo_01\frames_000.tif

[ZValue = 1]
TiltAngle = -10.00
ExposureDose = 3.2
DateTime = 30-Nov-21  17:45:12
SubFramePath = X:\DoseFractions\tomo_01\frames_001.tif

[ZValue = 2]
TiltAngle = 10.00
ExposureDose = 3.1
DateTime = 30-Nov-21  17:43:05
SubFramePath = X:\DoseFractions\tomo_01\frames_002.tif
`

func TestParse_GlobalsAndHeader(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleMdoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Voltage != 200 {
		t.Errorf("Voltage = %v, want 200", f.Voltage)
	}
	if f.PixelSpacing != 3.64 {
		t.Errorf("PixelSpacing = %v", f.PixelSpacing)
	}
	if f.Magnification != 42000 {
		t.Errorf("Magnification = %v", f.Magnification)
	}
	if f.ImageFile != "20211130_PKV_tomo_01.mrc" {
		t.Errorf("ImageFile = %q", f.ImageFile)
	}
	if f.TiltAxisAngle != -91.81 {
		t.Errorf("TiltAxisAngle = %v, want -91.81", f.TiltAxisAngle)
	}
}

func TestParse_TiltsSortedByTimestamp(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleMdoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Tilts) != 3 {
		t.Fatalf("tilts = %d, want 3", len(f.Tilts))
	}

	// ZValue 2 was acquired before ZValue 1; timestamp order wins.
	wantZ := []int{0, 2, 1}
	for i, tilt := range f.Tilts {
		if tilt.ZValue != wantZ[i] {
			t.Errorf("tilt %d ZValue = %d, want %d", i, tilt.ZValue, wantZ[i])
		}
	}

	if f.Tilts[0].TiltAngle != -0.01 {
		t.Errorf("first tilt angle = %v", f.Tilts[0].TiltAngle)
	}
	if f.Tilts[0].SubFramePath != "frames_000.tif" {
		t.Errorf("SubFramePath = %q, want base name", f.Tilts[0].SubFramePath)
	}
}

func TestParse_DoseAndAngles(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleMdoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if dose := f.AccumulatedDose(); math.Abs(dose-9.5) > 1e-9 {
		t.Errorf("AccumulatedDose = %v, want 9.5", dose)
	}
	min, max := f.AngleRange()
	if min != -10 || max != 10 {
		t.Errorf("AngleRange = %v, %v", min, max)
	}
}

func TestParse_NoTimestampsKeepsDocumentOrder(t *testing.T) {
	src := `Voltage = 300

[ZValue = 0]
TiltAngle = 30.0

[ZValue = 1]
TiltAngle = -30.0
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Tilts[0].ZValue != 0 || f.Tilts[1].ZValue != 1 {
		t.Errorf("order changed without timestamps: %+v", f.Tilts)
	}
}

func TestParse_MalformedSection(t *testing.T) {
	if _, err := Parse(strings.NewReader("[ZValue = x]\n")); err == nil {
		t.Error("bad ZValue should fail")
	}
	if _, err := Parse(strings.NewReader("[ZValue = 0\n")); err == nil {
		t.Error("unterminated header should fail")
	}
}
