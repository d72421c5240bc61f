package dto

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Type  string `json:"type" validate:"required,transaction_type"`
	Icon  string `json:"icon" validate:"omitempty,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}
