package mdoc

import (
	"strings"

	"github.com/me/tomoflow/pkg/emdata"
)

// Acquisition maps the file's global values onto an acquisition record. The
// dose fields accumulate over the parsed tilts; values the format does not
// carry (spherical aberration, amplitude contrast) stay zero for the import
// step's own parameters to fill.
func (f *File) Acquisition() emdata.Acquisition {
	acq := emdata.Acquisition{
		Voltage:       f.Voltage,
		Magnification: f.Magnification,
		SamplingRate:  f.PixelSpacing,
		TiltAxisAngle: f.TiltAxisAngle,
		AccumDose:     f.AccumulatedDose(),
	}
	acq.AngleMin, acq.AngleMax = f.AngleRange()
	if len(f.Tilts) > 0 {
		acq.DosePerFrame = acq.AccumDose / float64(len(f.Tilts))
	}
	if len(f.Tilts) > 1 {
		acq.Step = (acq.AngleMax - acq.AngleMin) / float64(len(f.Tilts)-1)
	}
	return acq
}

// TiltSeries converts the parsed file into a tilt series: images in
// acquisition order with accumulated dose, then sorted by angle as the
// downstream tools expect. The series id defaults to the image file's base
// name when tsID is empty.
func (f *File) TiltSeries(tsID string) *emdata.TiltSeries {
	if tsID == "" {
		tsID = strings.TrimSuffix(f.ImageFile, ".mrc")
		tsID = strings.TrimSuffix(tsID, ".st")
	}

	ts := &emdata.TiltSeries{
		TsID:        tsID,
		Path:        f.ImageFile,
		Acquisition: f.Acquisition(),
	}

	var dose float64
	for i, t := range f.Tilts {
		dose += t.ExposureDose
		ts.Images = append(ts.Images, emdata.TiltImage{
			TsID:         tsID,
			Index:        t.ZValue + 1,
			TiltAngle:    t.TiltAngle,
			AcqOrder:     i + 1,
			AccumDose:    dose,
			Path:         t.SubFramePath,
			SamplingRate: f.PixelSpacing,
		})
	}
	ts.SortByAngle()
	return ts
}
