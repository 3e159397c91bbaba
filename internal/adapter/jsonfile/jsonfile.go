// Package jsonfile reads the goods load file and writes the stock report.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/niksmo/online-store/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TimeLayout is the timestamp format of the stock report.
const TimeLayout = "2006-01-02 15:04:05"

type goodsRecord struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
}

type stockRecord struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	LastUpdated string `json:"last_updated"`
}

// DecodeGoods parses a JSON array of goods.
// Every record needs a name, a price and a quantity.
func DecodeGoods(r io.Reader) ([]domain.GoodsRecord, error) {
	const op = "jsonfile.DecodeGoods"

	var raw []goodsRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records := make([]domain.GoodsRecord, 0, len(raw))
	for i, g := range raw {
		if g.Name == "" || g.Price == nil || g.Quantity == nil {
			return nil, fmt.Errorf("%s: record %d: name, price and quantity required: %w",
				op, i, domain.ErrInvalidArgument)
		}
		records = append(records, domain.GoodsRecord{
			Name:        g.Name,
			Description: g.Description,
			Price:       *g.Price,
			Quantity:    *g.Quantity,
		})
	}
	return records, nil
}

func ReadGoods(path string) ([]domain.GoodsRecord, error) {
	const op = "jsonfile.ReadGoods"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	return DecodeGoods(f)
}

// EncodeStockReport writes records as an indented JSON array with
// UTC timestamps in [TimeLayout].
func EncodeStockReport(w io.Writer, records []domain.StockRecord) error {
	const op = "jsonfile.EncodeStockReport"

	out := make([]stockRecord, 0, len(records))
	for _, r := range records {
		out = append(out, stockRecord{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			LastUpdated: formatTime(r.LastUpdated),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WriteStockReport replaces the file at path.
func WriteStockReport(path string, records []domain.StockRecord) error {
	const op = "jsonfile.WriteStockReport"

	var buf bytes.Buffer
	if err := EncodeStockReport(&buf, records); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}
