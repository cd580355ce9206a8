package weather

import (
	"errors"
	"testing"
)

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(seattleBody))
	if err != nil {
		t.Fatalf("DecodeSnapshot failed: %v", err)
	}
	want := Snapshot{LocationName: "Seattle", TemperatureF: 55.5, Conditions: "Clouds", IconID: "04d"}
	if snap != want {
		t.Fatalf("expected %+v, got %+v", want, snap)
	}
}

func TestDecodeSnapshotAcceptsZeroValues(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"name":"","main":{"temp":0},"weather":[{"main":"Clear","icon":"01n"},{"main":"Mist","icon":"50n"}]}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot failed: %v", err)
	}
	if snap.TemperatureF != 0 || snap.Conditions != "Clear" || snap.IconID != "01n" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestDecodeSnapshotFailures(t *testing.T) {
	cases := map[string]string{
		"malformed json":    `{"name":`,
		"not an object":     `[1,2,3]`,
		"null body":         `null`,
		"empty body":        ``,
		"missing name":      `{"main":{"temp":55.5},"weather":[{"main":"Clouds","icon":"04d"}]}`,
		"missing main":      `{"name":"Seattle","weather":[{"main":"Clouds","icon":"04d"}]}`,
		"missing temp":      `{"name":"Seattle","main":{},"weather":[{"main":"Clouds","icon":"04d"}]}`,
		"missing weather":   `{"name":"Seattle","main":{"temp":55.5}}`,
		"empty weather":     `{"name":"Seattle","main":{"temp":55.5},"weather":[]}`,
		"missing condition": `{"name":"Seattle","main":{"temp":55.5},"weather":[{"icon":"04d"}]}`,
		"missing icon":      `{"name":"Seattle","main":{"temp":55.5},"weather":[{"main":"Clouds"}]}`,
		"null element":      `{"name":"Seattle","main":{"temp":55.5},"weather":[null]}`,
		"string temp":       `{"name":"Seattle","main":{"temp":"55.5"},"weather":[{"main":"Clouds","icon":"04d"}]}`,
		"numeric name":      `{"name":42,"main":{"temp":55.5},"weather":[{"main":"Clouds","icon":"04d"}]}`,
		"weather object":    `{"name":"Seattle","main":{"temp":55.5},"weather":{"main":"Clouds","icon":"04d"}}`,
		"numeric icon":      `{"name":"Seattle","main":{"temp":55.5},"weather":[{"main":"Clouds","icon":4}]}`,
		"only main":         `{"main":{"temp":55.5}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			snap, err := DecodeSnapshot([]byte(body))
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
			if snap != (Snapshot{}) {
				t.Fatalf("expected zero snapshot, got %+v", snap)
			}
		})
	}
}
