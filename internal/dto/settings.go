package dto

// UpdateSettingsRequest changes only the fields that are set.
type UpdateSettingsRequest struct {
	Theme        *string `json:"theme" validate:"omitempty,theme"`
	CurrencyCode *string `json:"currencyCode" validate:"omitempty,currency_code"`
}

type SettingsResponse struct {
	Theme    string           `json:"theme"`
	Currency CurrencyResponse `json:"currency"`
}

type CurrencyResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
