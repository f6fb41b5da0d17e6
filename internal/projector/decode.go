package projector

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// parentFields holds the decoded scalar fields of a parent payload. Pointers
// distinguish "absent" from "zero", which PATCH needs.
type parentFields struct {
	Title     *string    `mapstructure:"title"`
	IsPublic  *bool      `mapstructure:"isPublic"`
	Source    *string    `mapstructure:"source"`
	CreatedAt *time.Time `mapstructure:"createdAt"`
}

type childFields struct {
	Front     *string    `mapstructure:"front"`
	Back      *string    `mapstructure:"back"`
	Hint      *string    `mapstructure:"hint"`
	Order     *int       `mapstructure:"order"`
	CreatedAt *time.Time `mapstructure:"createdAt"`
}

// decodePayload maps a change's data into out. Unknown keys (cardCount,
// updatedAt, deleted) are ignored; type mismatches are malformed.
func decodePayload(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.DecodeHookFuncType(wholeNumberHook),
		),
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("error creating payload decoder: %w", err)
	}

	if err = decoder.Decode(data); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedChange, err)
	}

	return nil
}

// wholeNumberHook stops mapstructure from truncating a fractional JSON number
// into an integer field.
func wholeNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	var f float64
	switch n := data.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return data, nil
	}

	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	return data, nil
}
