package weather

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so decode errors match the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// currentPayload is the subset of the OpenWeatherMap current weather
// response we read. Pointers distinguish a missing field from a zero value.
type currentPayload struct {
	Name *string `json:"name" validate:"required"`
	Main *struct {
		Temp *float64 `json:"temp" validate:"required"`
	} `json:"main" validate:"required"`
	Weather []conditionPayload `json:"weather" validate:"required,min=1,dive"`
}

type conditionPayload struct {
	Main *string `json:"main" validate:"required"`
	Icon *string `json:"icon" validate:"required"`
}

// DecodeSnapshot parses a current weather response body. It either returns a
// complete Snapshot or an error wrapping ErrDecode; it never returns a
// partially populated snapshot.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := validate.Struct(payload); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	first := payload.Weather[0]
	return Snapshot{
		LocationName: *payload.Name,
		TemperatureF: *payload.Main.Temp,
		Conditions:   *first.Main,
		IconID:       *first.Icon,
	}, nil
}
