package strategy

import "encoding/json"

// Shape classifies a parameter object for selection and fallback rules.
type Shape struct {
	HasArrays  bool
	HasNumbers bool
	HasComplex bool
	ParamCount int
}

// Classify inspects the parameter values.
// Objects, and arrays whose elements are not plain strings, count as complex.
func Classify(params map[string]any) Shape {
	s := Shape{ParamCount: len(params)}
	for _, v := range params {
		switch t := v.(type) {
		case []any:
			s.HasArrays = true
			for _, item := range t {
				if _, ok := item.(string); !ok {
					s.HasComplex = true
					break
				}
			}
		case []string:
			s.HasArrays = true
		case map[string]any:
			s.HasComplex = true
		case float32, float64, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, json.Number:
			s.HasNumbers = true
		}
	}
	return s
}
