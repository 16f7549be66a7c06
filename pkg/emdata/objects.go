// Package emdata holds the cryo-electron-tomography data objects that flow
// between workflow steps: tilt series, tomograms, 3D coordinates,
// subtomograms, and their acquisition and CTF metadata. These are metadata
// records only; the image data itself lives in files owned by the external
// tools.
package emdata

import (
	"fmt"
	"sort"
)

// Acquisition describes how a tilt series was collected at the microscope.
type Acquisition struct {
	Voltage           float64 `json:"voltage"`            // kV
	SphericalAberr    float64 `json:"spherical_aberr"`    // mm
	Magnification     float64 `json:"magnification"`      // nominal
	SamplingRate      float64 `json:"sampling_rate"`      // Angstrom/pixel
	AmplitudeContrast float64 `json:"amplitude_contrast"` //
	DosePerFrame      float64 `json:"dose_per_frame"`     // e-/A^2
	AccumDose         float64 `json:"accum_dose"`         // e-/A^2 over the series
	TiltAxisAngle     float64 `json:"tilt_axis_angle"`    // degrees
	AngleMin          float64 `json:"angle_min"`          // degrees
	AngleMax          float64 `json:"angle_max"`          // degrees
	Step              float64 `json:"step"`               // degrees between tilts
}

// TiltImage is one projection image of a tilt series.
type TiltImage struct {
	TsID         string  `json:"ts_id"`
	Index        int     `json:"index"`      // slice index in the stack, from 1
	TiltAngle    float64 `json:"tilt_angle"` // degrees
	AcqOrder     int     `json:"acq_order"`  // order the image was collected in
	AccumDose    float64 `json:"accum_dose"` // e-/A^2 up to and including this tilt
	Path         string  `json:"path,omitempty"`
	SamplingRate float64 `json:"sampling_rate,omitempty"`
}

// TiltSeries is an ordered stack of tilt images sharing one tsId.
type TiltSeries struct {
	TsID        string      `json:"ts_id"`
	Path        string      `json:"path,omitempty"`
	Acquisition Acquisition `json:"acquisition"`
	Images      []TiltImage `json:"images"`
}

// SortByAngle orders the images by ascending tilt angle, the convention the
// reconstruction tools expect, renumbering Index from 1.
func (ts *TiltSeries) SortByAngle() {
	sort.SliceStable(ts.Images, func(i, j int) bool {
		return ts.Images[i].TiltAngle < ts.Images[j].TiltAngle
	})
	for i := range ts.Images {
		ts.Images[i].Index = i + 1
	}
}

// AngleRange returns the minimum and maximum tilt angle of the series.
func (ts *TiltSeries) AngleRange() (min, max float64) {
	if len(ts.Images) == 0 {
		return 0, 0
	}
	min, max = ts.Images[0].TiltAngle, ts.Images[0].TiltAngle
	for _, im := range ts.Images[1:] {
		if im.TiltAngle < min {
			min = im.TiltAngle
		}
		if im.TiltAngle > max {
			max = im.TiltAngle
		}
	}
	return min, max
}

// Tomogram is a reconstructed 3D volume for one tilt series.
type Tomogram struct {
	TsID         string     `json:"ts_id"`
	Path         string     `json:"path,omitempty"`
	Dim          [3]int     `json:"dim"`    // x, y, z in voxels
	Origin       [3]float64 `json:"origin"` // Angstrom offset of the volume origin
	SamplingRate float64    `json:"sampling_rate"`
}

// Coordinate3D is a picked position inside a tomogram, in voxels relative to
// the tomogram origin, with an orientation for subtomogram extraction.
type Coordinate3D struct {
	TomoID    string    `json:"tomo_id"`
	X, Y, Z   float64   `json:"-"`
	GroupID   int       `json:"group_id,omitempty"` // picking class or mesh the point belongs to
	BoxSize   int       `json:"box_size,omitempty"`
	Score     float64   `json:"score,omitempty"`
	Transform Transform `json:"transform"`
}

// Position returns the coordinate as a point.
func (c *Coordinate3D) Position() [3]float64 {
	return [3]float64{c.X, c.Y, c.Z}
}

// SubTomogram is a particle volume extracted at a coordinate.
type SubTomogram struct {
	Path         string        `json:"path,omitempty"`
	Coordinate   *Coordinate3D `json:"coordinate,omitempty"`
	TsID         string        `json:"ts_id"`
	SamplingRate float64       `json:"sampling_rate"`
	ClassID      int           `json:"class_id,omitempty"`
}

// CTFTomo is the CTF estimate for one tilt image.
type CTFTomo struct {
	Index        int     `json:"index"`                // tilt image index, from 1
	DefocusU     float64 `json:"defocus_u"`            // Angstrom
	DefocusV     float64 `json:"defocus_v"`            // Angstrom
	DefocusAngle float64 `json:"defocus_angle"`        // degrees
	Resolution   float64 `json:"resolution,omitempty"` // Angstrom
	FitQuality   float64 `json:"fit_quality,omitempty"`
}

// IsDefocusAstigmatic reports whether the estimate carries astigmatism.
func (c *CTFTomo) IsDefocusAstigmatic() bool {
	return c.DefocusU != c.DefocusV
}

// CTFTomoSeries holds the per-tilt CTF estimates of one tilt series.
type CTFTomoSeries struct {
	TsID               string    `json:"ts_id"`
	Estimates          []CTFTomo `json:"estimates"`
	IsDefocusUDeviated bool      `json:"is_defocus_u_deviated,omitempty"`
}

// Transform is a 4x4 homogeneous transform: rotation plus shift, as produced
// by alignment and used when extracting or averaging subtomograms.
type Transform struct {
	M [4][4]float64 `json:"m"`
}

// IdentityTransform returns the identity transform.
func IdentityTransform() Transform {
	var t Transform
	for i := 0; i < 4; i++ {
		t.M[i][i] = 1
	}
	return t
}

// TranslationTransform returns a pure shift.
func TranslationTransform(dx, dy, dz float64) Transform {
	t := IdentityTransform()
	t.M[0][3] = dx
	t.M[1][3] = dy
	t.M[2][3] = dz
	return t
}

// Shifts returns the translation component.
func (t Transform) Shifts() (dx, dy, dz float64) {
	return t.M[0][3], t.M[1][3], t.M[2][3]
}

// Compose returns t applied after u (matrix product t*u).
func (t Transform) Compose(u Transform) Transform {
	var out Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += t.M[i][k] * u.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// Apply transforms a point.
func (t Transform) Apply(p [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = t.M[i][0]*p[0] + t.M[i][1]*p[1] + t.M[i][2]*p[2] + t.M[i][3]
	}
	return out
}

// String implements fmt.Stringer for log output.
func (t Transform) String() string {
	dx, dy, dz := t.Shifts()
	return fmt.Sprintf("Transform(shift=%.2f,%.2f,%.2f)", dx, dy, dz)
}
