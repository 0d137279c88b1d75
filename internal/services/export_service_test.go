package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportFixture(t *testing.T) (*fixture, *exportService) {
	f := newFixture(t)
	orders := newOrderService(f)
	for _, qty := range []int{1, 2} {
		_, err := orders.PlaceOrder(context.Background(), f.user.ID, f.request(OrderItemRequest{MenuItemID: f.latte.ID, Quantity: qty}))
		require.NoError(t, err)
	}
	svc := NewExportService(f.db).(*exportService)
	svc.now = fixedClock
	return f, svc
}

func TestExportOrdersJSON(t *testing.T) {
	f, svc := newExportFixture(t)

	export, err := svc.ExportOrders(context.Background(), "JSON")
	require.NoError(t, err)
	assert.Equal(t, "orders_20240301_120000.json", export.Filename)
	assert.Equal(t, "application/json", export.ContentType)
	assert.Equal(t, 2, export.Rows)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(export.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "250.00", rows[0]["total_price"])
	assert.Equal(t, "500.00", rows[1]["total_price"])
	assert.Equal(t, float64(f.user.ID), rows[0]["user_id"])
	assert.Equal(t, "new", rows[0]["status"])
	for _, key := range []string{"id", "pickup_time", "created_at"} {
		assert.Contains(t, rows[0], key)
	}
}

func TestExportOrdersCSV(t *testing.T) {
	_, svc := newExportFixture(t)

	export, err := svc.ExportOrders(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", export.ContentType)

	records, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "500.00", records[2][3])
	assert.Equal(t, "2024-03-01T12:30:00Z", records[1][4])
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, svc := newExportFixture(t)

	_, err := svc.ExportOrders(context.Background(), "xml")
	assertAppError(t, err, models.KindValidation, models.ErrUnsupportedFmt)
}
