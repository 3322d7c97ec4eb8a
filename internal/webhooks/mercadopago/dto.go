package mercadopago

// Notification is the provider's webhook payload. Only payment events carry
// information we act on; everything else is acknowledged and dropped.
type Notification struct {
	ID     int64  `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Result reports what the handler did with a notification.
type Result struct {
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status,omitempty"`
	Paid      bool   `json:"paid"`
	Ignored   bool   `json:"ignored"`
	Duplicate bool   `json:"duplicate"`
}
