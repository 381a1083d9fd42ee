package proto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Request field names.
const (
	FieldCollection = "collection"
	FieldField      = "field"
	FieldValue      = "value"
	FieldID         = "id"
	FieldDocument   = "document"
)

// ErrBadRequest marks a request struct that lacks a required field.
var ErrBadRequest = errors.New("bad request")

// QueryRequest is the equality filter collection[field] == value.
type QueryRequest struct {
	Collection string
	Field      string
	Value      string
}

func (q QueryRequest) ToStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldCollection: structpb.NewStringValue(q.Collection),
		FieldField:      structpb.NewStringValue(q.Field),
		FieldValue:      structpb.NewStringValue(q.Value),
	}}
}

func ParseQueryRequest(s *structpb.Struct) (QueryRequest, error) {
	var (
		q   QueryRequest
		err error
	)
	if q.Collection, err = stringField(s, FieldCollection); err != nil {
		return QueryRequest{}, err
	}
	if q.Field, err = stringField(s, FieldField); err != nil {
		return QueryRequest{}, err
	}
	if q.Value, err = stringField(s, FieldValue); err != nil {
		return QueryRequest{}, err
	}
	return q, nil
}

// UpsertRequest writes Document under Collection/ID.
type UpsertRequest struct {
	Collection string
	ID         string
	Document   map[string]any
}

func (u UpsertRequest) ToStruct() (*structpb.Struct, error) {
	doc, err := structpb.NewStruct(u.Document)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldCollection: structpb.NewStringValue(u.Collection),
		FieldID:         structpb.NewStringValue(u.ID),
		FieldDocument:   structpb.NewStructValue(doc),
	}}, nil
}

func ParseUpsertRequest(s *structpb.Struct) (UpsertRequest, error) {
	var (
		u   UpsertRequest
		err error
	)
	if u.Collection, err = stringField(s, FieldCollection); err != nil {
		return UpsertRequest{}, err
	}
	if u.ID, err = stringField(s, FieldID); err != nil {
		return UpsertRequest{}, err
	}
	doc := s.GetFields()[FieldDocument].GetStructValue()
	if doc == nil {
		return UpsertRequest{}, fmt.Errorf("%w: %s must be an object", ErrBadRequest, FieldDocument)
	}
	u.Document = doc.AsMap()
	return u, nil
}

// DocumentList packs documents into a ListValue.
func DocumentList(docs []map[string]any) (*structpb.ListValue, error) {
	values := make([]*structpb.Value, 0, len(docs))
	for _, d := range docs {
		s, err := structpb.NewStruct(d)
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return &structpb.ListValue{Values: values}, nil
}

// Documents unpacks a ListValue. Elements that are not objects come back as
// empty documents so callers can treat them as malformed.
func Documents(l *structpb.ListValue) []map[string]any {
	out := make([]map[string]any, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		if s := v.GetStructValue(); s != nil {
			out = append(out, s.AsMap())
			continue
		}
		out = append(out, map[string]any{})
	}
	return out
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrBadRequest, name)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrBadRequest, name)
	}
	return sv.StringValue, nil
}
