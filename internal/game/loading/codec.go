package loading

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaVersion is the version written by Encode.
const SchemaVersion = 1

var (
	// ErrUnknownKind is returned when a record names no known marker kind.
	ErrUnknownKind = errors.New("loading: unknown marker kind")
	// ErrUnsupportedVersion is returned for records written by a newer schema.
	ErrUnsupportedVersion = errors.New("loading: unsupported marker version")
)

//go:embed schema/marker.schema.json
var markerSchemaJSON string

const markerSchemaURL = "https://rangedcombat.local/schema/marker.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func markerSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(markerSchemaURL, markerSchemaJSON)
	})
	return schema, schemaErr
}

type envelope struct {
	Kind    Kind            `json:"kind"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode serialises m as a versioned record.
//
// Precondition: m is non-nil.
// Postcondition: Decode(result) yields a marker equal to m; invalid markers
// are rejected before encoding.
func Encode(m Marker) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loading: Encode: invalid %s marker: %w", m.Kind(), err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("loading: Encode: %w", err)
	}
	return json.Marshal(envelope{Kind: m.Kind(), Version: SchemaVersion, Data: data})
}

// Decode parses a record produced by Encode.
//
// Postcondition: the returned marker has passed the record schema and its own
// Validate; unknown kinds wrap ErrUnknownKind and newer versions wrap
// ErrUnsupportedVersion.
func Decode(raw []byte) (Marker, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("loading: Decode: %w", err)
	}
	if env.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	m, err := newMarker(env.Kind)
	if err != nil {
		return nil, err
	}
	sch, err := markerSchema()
	if err != nil {
		return nil, fmt.Errorf("loading: Decode: compiling schema: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("loading: Decode: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("loading: Decode: %s record: %w", env.Kind, err)
	}
	if err := json.Unmarshal(env.Data, m); err != nil {
		return nil, fmt.Errorf("loading: Decode: %s data: %w", env.Kind, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("loading: Decode: invalid %s marker: %w", env.Kind, err)
	}
	return m, nil
}

func newMarker(kind Kind) (Marker, error) {
	switch kind {
	case KindSimple:
		return &SimpleLoad{}, nil
	case KindCapacity:
		return &CapacityLoad{}, nil
	case KindMagazine:
		return &MagazineLoad{}, nil
	case KindConjured:
		return &ConjuredRound{}, nil
	case KindChamber:
		return &ChamberLoad{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
