package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// ScoreSource says which payload shape the scores were read from.
type ScoreSource string

const (
	SourceStructuredOutputs ScoreSource = "structured-outputs"
	SourceAnalysis          ScoreSource = "analysis"
	SourceEmpty             ScoreSource = "empty"
)

// Scores is the scoring data of one report, resolved from exactly one source.
// Nil fields were absent from the payload.
type Scores struct {
	Source ScoreSource `mapstructure:"-"`

	Overall *float64 `mapstructure:"overall"`
	S1      *float64 `mapstructure:"s1"`
	S2      *float64 `mapstructure:"s2"`
	S3      *float64 `mapstructure:"s3"`
	S4      *float64 `mapstructure:"s4"`
	S5      *float64 `mapstructure:"s5"`

	Recommendation *string `mapstructure:"rec"`
	Strength1      *string `mapstructure:"str1"`
	Strength2      *string `mapstructure:"str2"`
	Strength3      *string `mapstructure:"str3"`
	Improvement1   *string `mapstructure:"imp1"`
	Improvement2   *string `mapstructure:"imp2"`
}

type scoreStrategy struct {
	source  ScoreSource
	extract func(*Event) (map[string]any, bool)
}

// Strategies are tried in order; the first one that yields data wins.
var scoreStrategies = []scoreStrategy{
	{source: SourceStructuredOutputs, extract: fromStructuredOutputs},
	{source: SourceAnalysis, extract: fromAnalysis},
}

// ExtractScores resolves the event's scoring data. The returned error lists
// fields whose values could not be read as the expected type; those fields
// stay nil and the rest of the scores are still usable.
func ExtractScores(ev *Event) (Scores, error) {
	for _, st := range scoreStrategies {
		data, ok := st.extract(ev)
		if !ok {
			continue
		}
		scores := Scores{Source: st.source}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &scores,
		})
		if err != nil {
			return Scores{Source: st.source}, err
		}
		if err := dec.Decode(data); err != nil {
			return scores, fmt.Errorf("decode %s scores: %w", st.source, err)
		}
		return scores, nil
	}
	return Scores{Source: SourceEmpty}, nil
}

// fromStructuredOutputs reads the result object of the first structured
// output. The collection may be an object keyed by output id (first member in
// document order) or an array.
func fromStructuredOutputs(ev *Event) (map[string]any, bool) {
	first, ok := firstMember(ev.StructuredOutputs)
	if !ok {
		return nil, false
	}
	var output struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(first, &output); err != nil {
		return map[string]any{}, true
	}
	result, ok := decodeObject(output.Result)
	if !ok {
		result = map[string]any{}
	}
	return result, true
}

func fromAnalysis(ev *Event) (map[string]any, bool) {
	return decodeObject(ev.StructuredData)
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func firstMember(raw json.RawMessage) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, false
	}
	switch delim {
	case '{':
		if !dec.More() {
			return nil, false
		}
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
	case '[':
		if !dec.More() {
			return nil, false
		}
	default:
		return nil, false
	}
	var first json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return nil, false
	}
	return first, true
}

// MaxScore caps every score; unreadable and negative values become 0.
const MaxScore = 10

func scoreInt(v *float64) int {
	return int(scoreFloat(v))
}

func scoreFloat(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return 0
	}
	return math.Min(*v, MaxScore)
}

// overallScore is the reported overall score; a missing one counts as 0
// like any other missing numeric field.
func (s Scores) overallScore() float64 {
	return scoreFloat(s.Overall)
}
