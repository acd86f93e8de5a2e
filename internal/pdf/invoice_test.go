package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillToNamePrecedence(t *testing.T) {
	assert.Equal(t, "Ada Lovelace (Engines)", BillToName("Ada Lovelace", "Engines"))
	assert.Equal(t, "Engines", BillToName("", "Engines"))
	assert.Equal(t, "Ada Lovelace", BillToName("Ada Lovelace", ""))
	assert.Equal(t, "Unknown Contact", BillToName("", ""))
}

func TestRenderProducesPDF(t *testing.T) {
	d := Document{
		Number:    "INV-42",
		IssueDate: "2026-08-01",
		DueDate:   "2026-09-01",
		Status:    "sent",
		BillTo:    BillTo{Name: "Ada Lovelace (Engines)", Email: "ada@engines.test"},
		Items: []Line{
			{Description: "consulting", Quantity: 3, UnitPrice: 12.50, Amount: 37.50},
			{Description: "hosting", Quantity: 1, UnitPrice: 10, Amount: 10},
		},
		Subtotal: 47.50,
		Total:    47.50,
		Notes:    "payable within 30 days",
	}
	data, err := Render(d)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderEmptyInvoice(t *testing.T) {
	data, err := Render(Document{Number: "INV-0", BillTo: BillTo{Name: "Unknown Contact"}})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
