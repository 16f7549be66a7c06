package parser

import "testing"

func TestSplitReference(t *testing.T) {
	tests := []struct {
		in         string
		producerID string
		outputName string
		ok         bool
	}{
		{"83.TiltSeries", "83", "TiltSeries", true},
		{"83.TiltSeries_2", "83", "TiltSeries_2", true},
		{"83.outputTiltSeries.1", "83", "outputTiltSeries.1", true},
		{"2.CTFs", "2", "CTFs", true},
		{"83.", "83", "", true}, // whole-step dependency

		{"83", "", "", false},          // no dot: plain literal
		{"3.5", "", "", false},         // number containing a dot
		{"1e3.foo", "", "", false},     // prefix not all digits
		{"TS_01.mrc", "", "", false},   // file name
		{"a.b", "", "", false},         // prefix not an id
		{".TiltSeries", "", "", false}, // empty prefix
		{"", "", "", false},
		{"83.Tilt Series", "", "", false}, // spaces disqualify the socket
		{"83.2series", "", "", false},     // socket cannot start with a digit
	}

	for _, tt := range tests {
		producerID, outputName, ok := SplitReference(tt.in)
		if ok != tt.ok || producerID != tt.producerID || outputName != tt.outputName {
			t.Errorf("SplitReference(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.in, producerID, outputName, ok, tt.producerID, tt.outputName, tt.ok)
		}
	}
}

func TestItemBase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"TiltSeries", "TiltSeries"},
		{"outputTiltSeries.1", "outputTiltSeries"},
		{"TiltSeries_2", "TiltSeries_2"},
		{"a.b", "a.b"}, // non-numeric suffix stays
	}
	for _, tt := range tests {
		if got := itemBase(tt.in); got != tt.want {
			t.Errorf("itemBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
