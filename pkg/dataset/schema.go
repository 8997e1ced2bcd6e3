package dataset

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// maxPayloadBytes caps how much of an override body is read.
const maxPayloadBytes = 4 << 20

// ErrInvalidPayload is returned when an override does not have the shape of
// the dataset table.
var ErrInvalidPayload = errors.New("invalid dataset payload")

//go:embed schema/payload.json
var payloadSchema []byte

// Schema returns the JSON Schema that override payloads must satisfy.
func Schema() []byte { return slices.Clone(payloadSchema) }

// ValidationError lists every problem found in a payload.
// It matches ErrInvalidPayload with errors.Is.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPayload, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidPayload.
func (e *ValidationError) Unwrap() error { return ErrInvalidPayload }

// DecodePayload reads a JSON override, validates it and returns the typed
// payload. Any violation rejects the whole payload.
func DecodePayload(r io.Reader) (Payload, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	if len(raw) > maxPayloadBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidPayload, maxPayloadBytes)
	}

	return ParsePayload(raw)
}

// ParsePayload validates raw JSON and decodes it into a Payload.
func ParsePayload(raw []byte) (Payload, error) {
	validateErr := Validate(raw)
	if validateErr != nil {
		return nil, validateErr
	}

	var p Payload

	unmarshalErr := json.Unmarshal(raw, &p)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, unmarshalErr)
	}

	mismatch := lengthProblems(p)
	if len(mismatch) > 0 {
		return nil, &ValidationError{Problems: mismatch}
	}

	return p, nil
}

// Validate checks raw JSON against the payload schema. It returns nil, a
// *ValidationError, or an error wrapping ErrInvalidPayload for input that is
// not JSON at all.
func Validate(raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidPayload)
	}

	schemaLoader := gojsonschema.NewBytesLoader(payloadSchema)
	inputLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, inputLoader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &ValidationError{Problems: problems}
}

func lengthProblems(p Payload) []string {
	var problems []string

	for _, country := range p.Countries() {
		years := make([]int, 0, len(p[country]))
		for y := range p[country] {
			years = append(years, y)
		}

		slices.Sort(years)

		for _, y := range years {
			s := p[country][y]
			if len(s.Labels) != len(s.Values) {
				problems = append(problems, fmt.Sprintf("%s.%d: %d labels but %d values",
					country, y, len(s.Labels), len(s.Values)))
			}
		}
	}

	return problems
}
