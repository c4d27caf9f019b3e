package we

import (
	"fmt"

	"github.com/goccy/go-json"
)

const JsonEncoding = "application/json"

type Data struct {
	Encoding string `json:"encoding"`
	Data     []byte `json:"data"`
}

func (d Data) Empty() bool {
	return len(d.Data) == 0
}

type InvalidEncodingError struct {
	Expected string
	Actual   string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("expected encoding %s, got %s", e.Expected, e.Actual)
}

func InvalidEncoding(expected string, actual string) error {
	return &InvalidEncodingError{
		Expected: expected,
		Actual:   actual,
	}
}

func MarshalToData(value any) (Data, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Data{}, err
	}

	return Data{
		Encoding: JsonEncoding,
		Data:     data,
	}, nil
}

func UnmarshalFromData(data Data, value any) error {
	if data.Encoding != JsonEncoding {
		return InvalidEncoding(JsonEncoding, data.Encoding)
	}

	return json.Unmarshal(data.Data, value)
}

// JsonData wraps raw json, such as a request payload, without re-encoding it.
func JsonData(raw []byte) Data {
	return Data{Encoding: JsonEncoding, Data: raw}
}
