package cache

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kengibson1111/go-readthrough-cache/internal"
)

// Codec converts producer results to and from their stored JSON form.
type Codec interface {
	// Encode renders a value as JSON. It degrades instead of failing:
	// a value that cannot be marshaled directly is stored as its JSON
	// string form, so population never blocks on an exotic result type.
	Encode(v any) ([]byte, error)

	// Decode parses a stored payload and rebuilds it according to shape.
	Decode(data []byte, shape ResultShape) (any, error)
}

// JSONCodec is the default Codec. Payloads are structured JSON text, which
// keeps entries inspectable with redis-cli during an incident.
type JSONCodec struct {
	logger *logrus.Logger
}

// NewJSONCodec creates a JSONCodec. A nil logger selects the process-wide
// standard logger.
func NewJSONCodec(logger *logrus.Logger) *JSONCodec {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &JSONCodec{logger: logger}
}

// Encode renders v as JSON, preferring its canonical dictionary form.
//
// The cascade mirrors how producers shape their results: a MapConvertible
// stores its map form, anything else marshals directly, and a value that
// direct marshaling rejects is stored as a JSON string of its printed form.
// The final fallback cannot fail, so Encode returns an error only if the
// runtime refuses to marshal a plain string.
func (c *JSONCodec) Encode(v any) ([]byte, error) {
	if m, ok := v.(MapConvertible); ok {
		data, err := json.Marshal(m.ToMap())
		if err == nil {
			return data, nil
		}
		c.logger.WithError(err).Warn("canonical map form not marshalable, degrading to direct encoding")
	}

	data, err := json.Marshal(v)
	if err == nil {
		return data, nil
	}

	c.logger.WithError(err).Warn("result not marshalable, storing its string form")
	data, err = json.Marshal(fmt.Sprint(v))
	if err != nil {
		return nil, internal.NewSerializationError("", "failed to encode result string form", err)
	}
	return data, nil
}

// Decode parses a stored payload and rebuilds it for the given shape.
// Payloads that are not valid JSON return a serialization error; shape
// mismatches never fail, they wrap.
func (c *JSONCodec) Decode(data []byte, shape ResultShape) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, internal.NewSerializationError("", "failed to parse cached payload", err)
	}

	if shape == ShapeResponse {
		return rebuildResponse(v), nil
	}
	return v, nil
}

// rebuildResponse turns a parsed payload into a *Response.
//
// A map is taken as a stored envelope and read field by field; entries
// written before the envelope form existed arrive as bare strings or
// scalars and are wrapped instead of rejected.
func rebuildResponse(v any) *Response {
	switch val := v.(type) {
	case map[string]any:
		resp := &Response{Status: StatusSuccess}
		if data, ok := val["data"].(map[string]any); ok {
			resp.Data = data
		}
		if status, ok := val["status"].(string); ok && status != "" {
			resp.Status = status
		}
		if message, ok := val["message"].(string); ok {
			resp.Message = message
		}
		return resp
	case string:
		return &Response{
			Data:   map[string]any{"response": val},
			Status: StatusSuccess,
		}
	default:
		return &Response{
			Data:   map[string]any{"cached_value": val},
			Status: StatusSuccess,
		}
	}
}
