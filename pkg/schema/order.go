package schema

import "time"

const OrderStatusSchemaTextV1 = `{
	"type": "record",
	"namespace": "store.orders",
	"name": "order_status",
	"fields": [
		{"name": "order_id", "type": "long"},
		{"name": "customer_id", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "total_amount", "type": "string"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// OrderStatusV1 carries the decimal total as its string form.
type OrderStatusV1 struct {
	OrderID     int64     `avro:"order_id"`
	CustomerID  string    `avro:"customer_id"`
	Status      string    `avro:"status"`
	TotalAmount string    `avro:"total_amount"`
	At          time.Time `avro:"at"`
}
