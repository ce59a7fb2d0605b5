package cache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

type defaultKeySerializer struct {
	namespace string
}

// NewDefaultKeySerializer creates a serializer producing method::arg keys.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// NewNamespacedKeySerializer prefixes every key with namespace.
func NewNamespacedKeySerializer(namespace string) KeySerializer {
	return &defaultKeySerializer{namespace: namespace}
}

// SerializeKey joins the namespace, method and serialized args with KeySeparator.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	if s.namespace != "" {
		parts = append(parts, s.namespace)
	}
	parts = append(parts, method)

	for _, arg := range args {
		parts = append(parts, serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func serializeValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "nil"
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", value)
	case []string:
		return fmt.Sprintf("slice[%d]:{%s}", len(value), strings.Join(value, ","))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("fallback:%T", v)
	}
	return "json:" + string(data)
}
