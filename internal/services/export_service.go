package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"gorm.io/gorm"
)

// Supported export formats
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

// Export is a rendered file ready to be sent as an attachment
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// OrderExportRow is the flat representation of an order in exports
type OrderExportRow struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice string    `json:"total_price"`
	PickupTime time.Time `json:"pickup_time"`
	CreatedAt  time.Time `json:"created_at"`
}

var exportHeader = []string{"id", "user_id", "status", "total_price", "pickup_time", "created_at"}

type ExportService interface {
	ExportOrders(ctx context.Context, format string) (*Export, error)
}

type exportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewExportService(db *gorm.DB) ExportService {
	return &exportService{db: db, now: time.Now}
}

func (s *exportService) ExportOrders(ctx context.Context, format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return nil, models.NewValidationError(models.ErrUnsupportedFmt, "format must be json or csv").
			WithDetails(map[string]interface{}{"format": format})
	}

	// One query keeps the snapshot consistent
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("id").Find(&orders).Error; err != nil {
		return nil, persistenceError(err)
	}

	rows := make([]OrderExportRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, OrderExportRow{
			ID:         o.ID,
			UserID:     o.UserID,
			Status:     string(o.Status),
			TotalPrice: o.TotalPrice.StringFixed(2),
			PickupTime: o.PickupTime.UTC(),
			CreatedAt:  o.CreatedAt.UTC(),
		})
	}

	stamp := s.now().UTC().Format("20060102_150405")
	export := &Export{Filename: fmt.Sprintf("orders_%s.%s", stamp, format), Rows: len(rows)}

	var err error
	switch format {
	case ExportFormatJSON:
		export.ContentType = "application/json"
		export.Data, err = json.Marshal(rows)
	case ExportFormatCSV:
		export.ContentType = "text/csv"
		export.Data, err = ordersCSV(rows)
	}
	if err != nil {
		return nil, models.NewInfrastructureError(models.ErrInternalServer, err)
	}
	return export, nil
}

func ordersCSV(rows []OrderExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Status,
			r.TotalPrice,
			r.PickupTime.Format(time.RFC3339),
			r.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
