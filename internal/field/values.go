package field

// Values is the live attribute mapping of one unit. Scalars are int,
// float64 or string; indexed fields grow a []any; tables store []Values.
type Values map[string]any

// Has reports whether the attribute holds a non-nil value.
func (v Values) Has(attr string) bool {
	x, ok := v[attr]
	return ok && x != nil
}

// Int returns an integer attribute. Floats holding whole numbers are
// accepted.
func (v Values) Int(attr string) (int, bool) {
	switch x := v[attr].(type) {
	case int:
		return x, true
	case float64:
		if x == float64(int(x)) {
			return int(x), true
		}
	}
	return 0, false
}

// Float returns a numeric attribute as float64.
func (v Values) Float(attr string) (float64, bool) {
	switch x := v[attr].(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// String returns a string attribute, or "" when absent.
func (v Values) String(attr string) string {
	s, _ := v[attr].(string)
	return s
}

// Strings returns an indexed string attribute. Absent entries are "".
func (v Values) Strings(attr string) []string {
	switch x := v[attr].(type) {
	case []string:
		return x
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			out[i], _ = e.(string)
		}
		return out
	}
	return nil
}

// Table returns the rows of a table attribute.
func (v Values) Table(attr string) []Values {
	rows, _ := v[attr].([]Values)
	return rows
}
