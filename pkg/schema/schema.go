// Package schema holds the Avro contracts of the store topics and
// serdes that frame them with a schema registry ID.
package schema

import (
	"context"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

// A SchemaIdentifier resolves the registry ID of a schema under subject.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, avroSchemaText string) (int, error)
}

// RegistryIdentifier registers schemas in a schema registry.
// Registering an already known schema returns its existing ID.
type RegistryIdentifier struct {
	client *sr.Client
}

func NewRegistryIdentifier(client *sr.Client) RegistryIdentifier {
	return RegistryIdentifier{client}
}

func (ri RegistryIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "RegistryIdentifier.DetermineID"

	ss, err := ri.client.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: subject %q: %w", op, subject, err)
	}
	return ss.ID, nil
}

// SubjectName returns the value subject of topic.
func SubjectName(topic string) string {
	return topic + "-value"
}

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}
