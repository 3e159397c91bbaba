package schema

import "time"

const StockAdjustedSchemaTextV1 = `{
	"type": "record",
	"namespace": "store.stock",
	"name": "stock_adjusted",
	"fields": [
		{"name": "product_id", "type": "long"},
		{"name": "delta", "type": "int"},
		{"name": "quantity", "type": "int"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

const LowStockAlertSchemaTextV1 = `{
	"type": "record",
	"namespace": "store.stock",
	"name": "low_stock_alert",
	"fields": [
		{"name": "product_id", "type": "long"},
		{"name": "quantity", "type": "int"},
		{"name": "threshold", "type": "int"},
		{"name": "raised_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type (
	StockAdjustedV1 struct {
		ProductID int64     `avro:"product_id"`
		Delta     int       `avro:"delta"`
		Quantity  int       `avro:"quantity"`
		At        time.Time `avro:"at"`
	}

	LowStockAlertV1 struct {
		ProductID int64     `avro:"product_id"`
		Quantity  int       `avro:"quantity"`
		Threshold int       `avro:"threshold"`
		RaisedAt  time.Time `avro:"raised_at"`
	}
)
