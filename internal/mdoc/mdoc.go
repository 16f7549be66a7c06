// Package mdoc reads SerialEM "autodoc" metadata files (.mdoc): key-value
// pairs organized into bracketed sections. Global values describe the whole
// tilt series; each [ZValue = n] section describes one tilt image. Import
// steps use this to recover acquisition parameters the template leaves
// unset.
package mdoc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Section and key names used by SerialEM.
const (
	keyTiltAngle     = "TiltAngle"
	keyExposureDose  = "ExposureDose"
	keyDateTime      = "DateTime"
	keySubFramePath  = "SubFramePath"
	keyVoltage       = "Voltage"
	keyPixelSpacing  = "PixelSpacing"
	keyMagnification = "Magnification"
	keyImageFile     = "ImageFile"
	keyTiltAxisAngle = "TiltAxisAngle"
)

// Tilt is the metadata of one [ZValue] section.
type Tilt struct {
	ZValue       int
	TiltAngle    float64
	ExposureDose float64
	Timestamp    time.Time // zero when the section has no DateTime
	SubFramePath string    // base name of the movie file, if any
}

// File is a parsed mdoc document.
type File struct {
	Voltage       float64 // kV
	PixelSpacing  float64 // Angstrom/pixel
	Magnification float64
	ImageFile     string
	TiltAxisAngle float64 // from the [T = ...] header lines
	Tilts         []Tilt  // sorted by timestamp when timestamps exist
}

// AccumulatedDose returns the dose summed over all tilts.
func (f *File) AccumulatedDose() float64 {
	var sum float64
	for _, t := range f.Tilts {
		sum += t.ExposureDose
	}
	return sum
}

// AngleRange returns the minimum and maximum tilt angle.
func (f *File) AngleRange() (min, max float64) {
	if len(f.Tilts) == 0 {
		return 0, 0
	}
	min, max = f.Tilts[0].TiltAngle, f.Tilts[0].TiltAngle
	for _, t := range f.Tilts[1:] {
		if t.TiltAngle < min {
			min = t.TiltAngle
		}
		if t.TiltAngle > max {
			max = t.TiltAngle
		}
	}
	return min, max
}

// ParseFile reads and parses an mdoc file from disk.
func ParseFile(name string) (*File, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open mdoc: %w", err)
	}
	defer fh.Close()
	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return f, nil
}

// Parse reads an mdoc document.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	var cur *Tilt

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, fmt.Errorf("line %d: unterminated section header %q", line, text)
			}
			header := strings.TrimSpace(text[1 : len(text)-1])
			if err := f.section(header, &cur); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}

		key, value, ok := splitPair(text)
		if !ok {
			continue // comments and free text between sections
		}
		if cur != nil {
			cur.set(key, value)
		} else {
			f.setGlobal(key, value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	f.sortTilts()
	return f, nil
}

func (f *File) section(header string, cur **Tilt) error {
	key, value, ok := splitPair(header)
	if !ok {
		return fmt.Errorf("malformed section header [%s]", header)
	}

	switch key {
	case "ZValue":
		z, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("bad ZValue %q: %w", value, err)
		}
		f.Tilts = append(f.Tilts, Tilt{ZValue: z})
		*cur = &f.Tilts[len(f.Tilts)-1]
	case "T":
		// Title lines carry extra acquisition values, notably the tilt
		// axis angle: [T =   TiltAxisAngle = -91.81  Binning = 1 ...]
		if i := strings.Index(value, keyTiltAxisAngle); i >= 0 {
			rest := strings.TrimSpace(value[i+len(keyTiltAxisAngle):])
			rest = strings.TrimPrefix(rest, "=")
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				if angle, err := strconv.ParseFloat(fields[0], 64); err == nil {
					f.TiltAxisAngle = angle
				}
			}
		}
		*cur = nil
	default:
		*cur = nil
	}
	return nil
}

func (f *File) setGlobal(key, value string) {
	switch key {
	case keyVoltage:
		f.Voltage, _ = strconv.ParseFloat(value, 64)
	case keyPixelSpacing:
		f.PixelSpacing, _ = strconv.ParseFloat(value, 64)
	case keyMagnification:
		f.Magnification, _ = strconv.ParseFloat(value, 64)
	case keyImageFile:
		f.ImageFile = value
	}
}

func (t *Tilt) set(key, value string) {
	switch key {
	case keyTiltAngle:
		t.TiltAngle, _ = strconv.ParseFloat(value, 64)
	case keyExposureDose:
		t.ExposureDose, _ = strconv.ParseFloat(value, 64)
	case keyDateTime:
		t.Timestamp = parseTimestamp(value)
	case keySubFramePath:
		// Often a Windows path from the acquisition PC.
		t.SubFramePath = path.Base(strings.ReplaceAll(value, `\`, "/"))
	}
}

// sortTilts orders tilts by acquisition time when every section has a
// timestamp; otherwise document order stands.
func (f *File) sortTilts() {
	for _, t := range f.Tilts {
		if t.Timestamp.IsZero() {
			return
		}
	}
	sort.SliceStable(f.Tilts, func(i, j int) bool {
		return f.Tilts[i].Timestamp.Before(f.Tilts[j].Timestamp)
	})
}

// timestampLayouts covers the DateTime spellings SerialEM has used:
// two- and four-digit years, dashed month names, and slashed dates.
var timestampLayouts = []string{
	"02-Jan-06 15:04:05",
	"02-Jan-2006 15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// splitPair splits "key = value" lines.
func splitPair(s string) (key, value string, ok bool) {
	i := strings.Index(s, "=")
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(s[:i])
	value = strings.TrimSpace(s[i+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
