package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/admissions/internal/logging"
	"github.com/dmitrijs2005/admissions/internal/server/models"
)

// Fields is a decoded JSON object of application values keyed by column
// name. Values are whatever encoding/json produced: string, float64 or
// json.Number, bool, nil, maps and slices.
type Fields map[string]any

// applyFields copies every descriptive field present in fields onto app and
// returns how many were applied. Bookkeeping keys (id, user_id, timestamps)
// and unknown keys are skipped and logged at debug level. A final_percentage
// that cannot be read as a number is logged and left as it was.
func applyFields(ctx context.Context, log logging.Logger, app *models.Application, fields Fields) int {
	applied := 0
	var ignored []string
	for name, v := range fields {
		if !models.IsApplicationField(name) {
			ignored = append(ignored, name)
			continue
		}

		if name == models.FieldFinalPercentage {
			pct, err := toPercentage(v)
			if err != nil {
				log.Warn(ctx, "final_percentage ignored", "error", err)
				continue
			}
			app.FinalPercentage = pct
			applied++
			continue
		}

		*app.TextField(name) = toText(v)
		applied++
	}

	if len(ignored) > 0 {
		sort.Strings(ignored)
		log.Debug(ctx, "fields ignored", "keys", ignored)
	}
	return applied
}

// toText renders a JSON value for a text column. Structured values are kept
// as their JSON encoding.
func toText(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	}
	return &s
}

// toPercentage coerces v to a number. nil and the empty string clear it.
func toPercentage(v any) (*float64, error) {
	var (
		f   float64
		err error
	)
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = fmt.Errorf("%v is not a finite number", f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: final_percentage: %v", errCoercion, err)
	}
	return &f, nil
}
