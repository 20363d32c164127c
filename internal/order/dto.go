package order

// UpdateStatusRequest payload for a seller moving an order forward.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"completed"`
}

// ListResponse is a page of a seller's orders.
// swagger:model OrderListResponse
type ListResponse struct {
	Status string  `json:"status,omitempty"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
