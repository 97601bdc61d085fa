// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidJSON is wrapped by every error returned from ParseJSON.
var ErrInvalidJSON = errors.New("invalid JSON env file")

// ParseJSON parses a flat JSON object whose values are all strings.
// Any other shape (non-object top level, nested objects, arrays, numbers,
// booleans, null values, empty keys, trailing data) is an error wrapping
// ErrInvalidJSON. Values are never coerced to strings. A duplicated key keeps
// its last value.
func ParseJSON(content []byte) (Mapping, error) {
	content = bytes.TrimPrefix(content, []byte(byteOrderMark))

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, jsonError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object, got %s", ErrInvalidJSON, describeToken(tok))
	}

	env := make(Mapping)
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, jsonError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected object key %v", ErrInvalidJSON, tok)
		}
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidJSON)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, jsonError(err)
		}
		value, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value of %q must be a string, got %s", ErrInvalidJSON, key, describeToken(tok))
		}
		env[key] = value
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, jsonError(err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after top-level object", ErrInvalidJSON)
	}

	return env, nil
}

func jsonError(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
}

// describeToken names the JSON type of a decoder token for error messages.
func describeToken(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return "object"
		case '[':
			return "array"
		default:
			return fmt.Sprintf("%q", string(v))
		}
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	case string:
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}
