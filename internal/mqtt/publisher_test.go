package mqtt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alexb2611/enviroplus/internal/sensor"
)

// Feed consumers key on null vs number to tell a failed sensor from a zero
// reading, so the wire shape is pinned here.
func TestReadingPayloadShape(t *testing.T) {
	r := sensor.Reading{
		Timestamp:   time.Date(2026, 8, 12, 14, 30, 0, 0, time.UTC),
		Temperature: sensor.Float(21.5),
		Errors: sensor.ErrorList{
			{Sensor: sensor.NameGas, Reason: "read timeout"},
		},
	}

	payload, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(payload)

	for _, want := range []string{
		`"temperature":21.5`,
		`"oxidised":null`,
		`"cpu_temp":null`,
		`"errors":[{"sensor":"MICS6814","reason":"read timeout"}]`,
		`"timestamp":"2026-08-12T14:30:00Z"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("payload missing %s\n%s", want, out)
		}
	}
}
