package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsEmpty(t *testing.T) {
	invoice := &Invoice{}
	invoice.ComputeTotals()

	assert.Zero(t, invoice.TotalHT)
	assert.Zero(t, invoice.TotalTVA)
	assert.Zero(t, invoice.TotalTTC)
}

func TestComputeTotalsSingleLine(t *testing.T) {
	invoice := &Invoice{
		LineItems: []LineItem{
			{Description: "Audit financier 2024", Quantity: 1, UnitPrice: 10000, VATRate: 20},
		},
	}
	invoice.ComputeTotals()

	assert.Equal(t, float64(10000), invoice.TotalHT)
	assert.Equal(t, float64(2000), invoice.TotalTVA)
	assert.Equal(t, float64(12000), invoice.TotalTTC)
}

func TestComputeTotalsSumInvariant(t *testing.T) {
	invoice := &Invoice{
		LineItems: []LineItem{
			{Description: "Conseil", Quantity: 3, UnitPrice: 450.50, VATRate: 20},
			{Description: "Formation", Quantity: 2, UnitPrice: 1200, VATRate: 10},
			{Description: "Frais", Quantity: 1, UnitPrice: 99.99, VATRate: 0},
		},
	}
	invoice.ComputeTotals()

	assert.InDelta(t, invoice.TotalHT+invoice.TotalTVA, invoice.TotalTTC, 1e-9)
	assert.InDelta(t, 3*450.50+2*1200+99.99, invoice.TotalHT, 1e-9)
}

func TestComputeTotalsOverwritesStaleTotals(t *testing.T) {
	invoice := &Invoice{TotalHT: 123, TotalTVA: 45, TotalTTC: 168}
	invoice.ComputeTotals()

	assert.Zero(t, invoice.TotalTTC)
}
