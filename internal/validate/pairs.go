package validate

// Pair is a flag and the value that follows it on the command line.
type Pair struct {
	Flag  string
	Value string
}

// FlagPairs validates an ordered list of [flag, value] pairs against a
// closed set of allowed flags. The normalized value is a []Pair in the
// caller's order. A flag outside the set is a hard failure.
type FlagPairs struct {
	Allowed OneOf
}

// Validate checks every pair in order and stops at the first failure.
func (f FlagPairs) Validate(raw any) (any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, reject("must be a list of [flag, value] pairs, got %s", typeName(raw))
	}

	pairs := make([]Pair, 0, len(list))
	for i, item := range list {
		tuple, ok := item.([]any)
		if !ok || len(tuple) != 2 {
			return nil, reject("entry %d must be a [flag, value] pair", i)
		}
		flag, ok := tuple[0].(string)
		if !ok {
			return nil, reject("entry %d: flag must be a string", i)
		}
		if !f.Allowed.Contains(flag) {
			return nil, reject("disallowed flag %q", flag)
		}
		value, err := FlagValue(tuple[1])
		if err != nil {
			return nil, reject("flag %q: %s", flag, reason(err))
		}
		pairs = append(pairs, Pair{Flag: flag, Value: value})
	}
	return pairs, nil
}

// KeyValues validates an ordered object of configuration keys against a
// closed set of allowed keys. The normalized value is a []Pair whose Flag
// is the bare key; the command builder adds the "--" prefix. The object
// must be non-empty.
type KeyValues struct {
	Allowed OneOf
}

// Validate checks every member in wire order and stops at the first failure.
func (k KeyValues) Validate(raw any) (any, error) {
	obj, ok := raw.(Object)
	if !ok {
		return nil, reject("must be an object of key/value pairs, got %s", typeName(raw))
	}
	if len(obj) == 0 {
		return nil, reject("must not be empty")
	}

	pairs := make([]Pair, 0, len(obj))
	for _, m := range obj {
		if !k.Allowed.Contains(m.Key) {
			return nil, reject("disallowed key %q", m.Key)
		}
		value, err := FlagValue(m.Value)
		if err != nil {
			return nil, reject("key %q: %s", m.Key, reason(err))
		}
		pairs = append(pairs, Pair{Flag: m.Key, Value: value})
	}
	return pairs, nil
}

// reason extracts the bare reason from a validation error.
func reason(err error) string {
	if ve, ok := err.(*Error); ok {
		return ve.Reason
	}
	return err.Error()
}
