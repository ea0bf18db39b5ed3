package display

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/proximity-alarm/internal/domain/proximity"
)

// Struct field names shared by the gRPC API and the Redis stream.
const (
	FieldText     = "text"
	FieldImage    = "image"
	FieldRevision = "revision"
)

// errMissingField is returned when a struct lacks a display field.
var errMissingField = errors.New("display struct is missing a field")

// ToStruct encodes a state plus optional extra fields as a protobuf Struct.
func ToStruct(state proximity.DisplayState, extra map[string]any) (*structpb.Struct, error) {
	fields := map[string]any{
		FieldText:     state.Text,
		FieldImage:    string(state.Image),
		FieldRevision: float64(state.Revision),
	}

	for key, value := range extra {
		fields[key] = value
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode display state: %w", err)
	}

	return result, nil
}

// FromStruct decodes a state encoded by ToStruct.
func FromStruct(s *structpb.Struct) (proximity.DisplayState, error) {
	fields := s.GetFields()

	text, ok := fields[FieldText]
	if !ok {
		return proximity.DisplayState{}, fmt.Errorf("%w: %s", errMissingField, FieldText)
	}

	image, ok := fields[FieldImage]
	if !ok {
		return proximity.DisplayState{}, fmt.Errorf("%w: %s", errMissingField, FieldImage)
	}

	return proximity.DisplayState{
		Text:     text.GetStringValue(),
		Image:    proximity.Image(image.GetStringValue()),
		Revision: uint64(fields[FieldRevision].GetNumberValue()),
	}, nil
}
