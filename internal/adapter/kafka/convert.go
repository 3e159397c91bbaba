package kafka

import (
	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/niksmo/online-store/pkg/schema"
)

func stockAdjustmentToSchemaV1(v domain.StockAdjustment) schema.StockAdjustedV1 {
	return schema.StockAdjustedV1{
		ProductID: v.ProductID,
		Delta:     v.Delta,
		Quantity:  v.Quantity,
		At:        v.At,
	}
}

func orderStatusToSchemaV1(v domain.OrderStatusChange) schema.OrderStatusV1 {
	return schema.OrderStatusV1{
		OrderID:     v.OrderID,
		CustomerID:  v.CustomerID.String(),
		Status:      string(v.Status),
		TotalAmount: v.TotalAmount.StringFixed(2),
		At:          v.At,
	}
}

func schemaV1ToStockAlert(s schema.LowStockAlertV1) domain.StockAlert {
	return domain.StockAlert{
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		Threshold: s.Threshold,
		RaisedAt:  s.RaisedAt.UTC(),
	}
}
