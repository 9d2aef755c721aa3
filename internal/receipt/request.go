package receipt

import "fmt"

// ProcessRequest is the wire form of a submitted receipt. Pointers let the
// binder tell a missing field from an empty one.
type ProcessRequest struct {
	Retailer     *string       `json:"retailer"`
	PurchaseDate *string       `json:"purchaseDate"`
	PurchaseTime *string       `json:"purchaseTime"`
	Items        []ItemRequest `json:"items"`
	Total        *string       `json:"total"`
}

// ItemRequest is the wire form of a receipt item
type ItemRequest struct {
	ShortDescription *string `json:"shortDescription"`
	Price            *string `json:"price"`
}

// ToReceipt checks required fields and decodes the date and time
func (req *ProcessRequest) ToReceipt() (*Receipt, error) {
	if req.Retailer == nil {
		return nil, validationErr("retailer", "field is required")
	}
	if req.PurchaseDate == nil {
		return nil, validationErr("purchaseDate", "field is required")
	}
	if req.PurchaseTime == nil {
		return nil, validationErr("purchaseTime", "field is required")
	}
	if req.Total == nil {
		return nil, validationErr("total", "field is required")
	}
	if len(req.Items) == 0 {
		return nil, validationErr("items", "the receipt must have at least one item")
	}

	date, err := ParseDate(*req.PurchaseDate)
	if err != nil {
		return nil, validationErr("purchaseDate", "%v", err)
	}
	purchaseTime, err := ParseTimeOfDay(*req.PurchaseTime)
	if err != nil {
		return nil, validationErr("purchaseTime", "%v", err)
	}

	items := make([]Item, 0, len(req.Items))
	for i, it := range req.Items {
		if it.ShortDescription == nil {
			return nil, validationErr(fmt.Sprintf("items[%d].shortDescription", i), "field is required")
		}
		if it.Price == nil {
			return nil, validationErr(fmt.Sprintf("items[%d].price", i), "field is required")
		}
		items = append(items, Item{ShortDescription: *it.ShortDescription, Price: *it.Price})
	}

	return &Receipt{
		Retailer:     *req.Retailer,
		PurchaseDate: date,
		PurchaseTime: purchaseTime,
		Items:        items,
		Total:        *req.Total,
	}, nil
}

// ReceiptResponse is the wire form of a stored receipt
type ReceiptResponse struct {
	ID           string         `json:"id"`
	Retailer     string         `json:"retailer"`
	PurchaseDate string         `json:"purchaseDate"`
	PurchaseTime string         `json:"purchaseTime"`
	Items        []ItemResponse `json:"items"`
	Total        string         `json:"total"`
}

// ItemResponse is the wire form of a stored item
type ItemResponse struct {
	ShortDescription string `json:"shortDescription"`
	Price            string `json:"price"`
}

func newReceiptResponse(r *Receipt) ReceiptResponse {
	items := make([]ItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ItemResponse{ShortDescription: it.ShortDescription, Price: it.Price})
	}
	return ReceiptResponse{
		ID:           r.ID,
		Retailer:     r.Retailer,
		PurchaseDate: r.PurchaseDate.String(),
		PurchaseTime: r.PurchaseTime.String(),
		Items:        items,
		Total:        r.Total,
	}
}
