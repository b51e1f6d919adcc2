package entity

import "github.com/shopspring/decimal"

// Periodos del reporte de ventas.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// SalesPoint ventas agregadas en un periodo.
type SalesPoint struct {
	Period     string
	OrderCount int
	Sales      decimal.Decimal
}

// TopProduct producto más vendido en un rango.
type TopProduct struct {
	ProductID int64
	Name      string
	UnitsSold int
	Revenue   decimal.Decimal
}
