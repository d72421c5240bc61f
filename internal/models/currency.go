package models

import "fmt"

// Currency is reference data seeded by migrations.
type Currency struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"type:varchar(3);uniqueIndex;not null" json:"code"`
	Name   string `gorm:"type:varchar(50);not null" json:"name"`
	Symbol string `gorm:"type:varchar(5);not null" json:"symbol"`
}

func (c *Currency) TableName() string {
	return "currencies"
}

// Format renders an amount with the currency symbol and two decimals.
func (c *Currency) Format(amount float64) string {
	if c == nil {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%s%.2f", c.Symbol, amount)
}

// DefaultCurrencies is what the initial migration seeds. AutoMigrate-only
// databases get the same rows through SeedCurrencies.
var DefaultCurrencies = []Currency{
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
}
