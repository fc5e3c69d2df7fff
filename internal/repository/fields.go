package repository

import (
	"encoding/json"
	"fmt"
)

// EncodeFields converts a tagged struct into document fields using its JSON shape.
func EncodeFields(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode fields: %v", ErrInvalidInput, err)
	}
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: encode fields: %v", ErrInvalidInput, err)
	}
	return fields, nil
}

// DecodeDocument fills out from the document fields. The "id" key is never read
// from the fields; callers set identifiers from Document.ID.
func DecodeDocument(doc Document, out any) error {
	fields := make(Fields, len(doc.Fields))
	for k, v := range doc.Fields {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: decode document %s: %v", ErrInvalidInput, doc.ID, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode document %s: %v", ErrInvalidInput, doc.ID, err)
	}
	return nil
}
