package dto

type StageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

type FieldUpdateRequest struct {
	Field string `json:"field" validate:"required,oneof=notes priority follow_up_date deposit_amount total_amount"`
	Value string `json:"value"`
}

type OfferRequest struct {
	SlotID          *uint `json:"slot_id"`
	DiscountPercent *int  `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
}

type ConvertRequest struct {
	BookingID *uint `json:"booking_id"`
}
