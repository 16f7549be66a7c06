package template

import (
	"strings"
	"testing"
)

const sampleTemplate = `[
    {
        "object.className": "ProtImportTs",
        "object.id": "83",
        "object.label": "import tilt-series",
        "object.comment": "",
        "filesPath": "/data/tomo/session1",
        "filesPattern": "TS_{TS}.mrc",
        "voltage": 300,
        "sphericalAberration": 2.7,
        "dosePerFrame": 3.0,
        "_prerequisites": ""
    },
    {
        "object.className": "ProtTsAlign",
        "object.id": "85",
        "object.label": "align",
        "object.comment": "coarse then fine",
        "inputSetOfTiltSeries": "83.TiltSeries",
        "binning": 4,
        "maxShift": Infinity,
        "_prerequisites": "83"
    }
]`

func TestDecode_RecordOrderAndIdentity(t *testing.T) {
	doc, err := Decode([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(doc.Records))
	}

	imp := doc.Records[0]
	if imp.ClassName != "ProtImportTs" || imp.ID != "83" {
		t.Errorf("record 0 = %s/%s, want ProtImportTs/83", imp.ClassName, imp.ID)
	}
	if imp.Label != "import tilt-series" {
		t.Errorf("label = %q", imp.Label)
	}

	// Parameter order follows the document.
	wantOrder := []string{"filesPath", "filesPattern", "voltage", "sphericalAberration", "dosePerFrame", "_prerequisites"}
	if len(imp.Params) != len(wantOrder) {
		t.Fatalf("params = %d, want %d", len(imp.Params), len(wantOrder))
	}
	for i, name := range wantOrder {
		if imp.Params[i].Name != name {
			t.Errorf("param[%d] = %q, want %q", i, imp.Params[i].Name, name)
		}
	}
}

func TestDecode_ScalarKinds(t *testing.T) {
	doc, err := Decode([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	rec := doc.Records[0]

	if v, _ := rec.Param("voltage"); v.Kind != KindInt || v.Int != 300 {
		t.Errorf("voltage = %v (%s), want int 300", v, v.Kind)
	}
	if v, _ := rec.Param("sphericalAberration"); v.Kind != KindFloat || v.Float != 2.7 {
		t.Errorf("sphericalAberration = %v (%s), want float 2.7", v, v.Kind)
	}
	if v, _ := rec.Param("filesPath"); v.Kind != KindString || v.Str != "/data/tomo/session1" {
		t.Errorf("filesPath = %v (%s)", v, v.Kind)
	}
}

func TestDecode_UnboundedSentinel(t *testing.T) {
	doc, err := Decode([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	v, ok := doc.Records[1].Param("maxShift")
	if !ok {
		t.Fatal("maxShift missing")
	}
	if v.Kind != KindInfinite {
		t.Fatalf("maxShift kind = %s, want infinite", v.Kind)
	}
	if !v.GreaterThan(1e300) {
		t.Error("sentinel must exceed every finite value")
	}
	if v.Raw() != "Infinity" {
		t.Errorf("raw = %q, want Infinity", v.Raw())
	}

	// A quoted "Infinity" is an ordinary string, not the sentinel.
	doc2, err := Decode([]byte(`[{"object.className": "P", "object.id": "1", "note": "Infinity"}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, _ := doc2.Records[0].Param("note"); v.Kind != KindString {
		t.Errorf("quoted Infinity kind = %s, want string", v.Kind)
	}
}

func TestDecode_YAMLInfinity(t *testing.T) {
	doc, err := Decode([]byte("- object.className: P\n  object.id: \"1\"\n  rangeEnd: .inf\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, _ := doc.Records[0].Param("rangeEnd"); v.Kind != KindInfinite {
		t.Errorf("rangeEnd kind = %s, want infinite", v.Kind)
	}
}

func TestDecode_FloatOverflowIsInfinite(t *testing.T) {
	doc, err := Decode([]byte(`[{"object.className": "P", "object.id": "1", "maxShift": 1e999}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	v, _ := doc.Records[0].Param("maxShift")
	if v.Kind != KindInfinite {
		t.Fatalf("maxShift kind = %s, want infinite", v.Kind)
	}
	if v.Raw() != "1e999" {
		t.Errorf("raw = %q, want the original literal", v.Raw())
	}
}

func TestRecord_Prerequisites(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			"comma string",
			`[{"object.className": "P", "object.id": "9", "_prerequisites": "2, 3"}]`,
			[]string{"2", "3"},
		},
		{
			"empty string",
			`[{"object.className": "P", "object.id": "9", "_prerequisites": ""}]`,
			nil,
		},
		{
			"list form",
			`[{"object.className": "P", "object.id": "9", "_prerequisites": ["2", 3]}]`,
			[]string{"2", "3"},
		},
		{
			"absent",
			`[{"object.className": "P", "object.id": "9"}]`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			got := doc.Records[0].Prerequisites()
			if len(got) != len(tt.want) {
				t.Fatalf("prerequisites = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("prerequisites = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEncodeJSON_LiteralRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	out := string(doc.EncodeJSON())

	// Literal scalar tokens survive byte-identical, including number
	// formatting and the unbounded sentinel.
	for _, token := range []string{
		`"voltage": 300`,
		`"sphericalAberration": 2.7`,
		`"dosePerFrame": 3.0`,
		`"maxShift": Infinity`,
		`"filesPattern": "TS_{TS}.mrc"`,
		`"inputSetOfTiltSeries": "83.TiltSeries"`,
	} {
		if !strings.Contains(out, token) {
			t.Errorf("re-serialized document missing %q\n%s", token, out)
		}
	}

	// A second decode of the output parses to the same records.
	doc2, err := Decode([]byte(out))
	if err != nil {
		t.Fatalf("Decode round-trip: %v", err)
	}
	if len(doc2.Records) != len(doc.Records) {
		t.Fatalf("round-trip records = %d, want %d", len(doc2.Records), len(doc.Records))
	}
	for i := range doc.Records {
		a, b := doc.Records[i], doc2.Records[i]
		if a.ID != b.ID || a.ClassName != b.ClassName || len(a.Params) != len(b.Params) {
			t.Errorf("record %d changed across round trip", i)
		}
		for j := range a.Params {
			if a.Params[j].Value.Raw() != b.Params[j].Value.Raw() {
				t.Errorf("record %d param %s raw %q != %q", i, a.Params[j].Name, a.Params[j].Value.Raw(), b.Params[j].Value.Raw())
			}
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode([]byte(`{"object.id": "1"}`)); err == nil {
		t.Error("non-list top level should fail")
	}
	if _, err := Decode([]byte(`[{"object.id": "1"}]`)); err == nil {
		t.Error("record without className should fail")
	}
	if _, err := Decode([]byte(`[{"object.className": "P"}]`)); err == nil {
		t.Error("record without id should fail")
	}
}
