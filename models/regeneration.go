package models

// RegenerationResult is the outcome of re-capturing one order
type RegenerationResult struct {
	OrderID  string `json:"orderId"`
	Success  bool   `json:"success"`
	FrontURL string `json:"frontUrl,omitempty"`
	BackURL  string `json:"backUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RegenerationProgress is reported after each order of a batch completes
type RegenerationProgress struct {
	Current        int    `json:"current"`
	Total          int    `json:"total"`
	CurrentOrderID string `json:"currentOrderId"`
}

// RegenerationJob is the admin-visible state of an asynchronous batch
type RegenerationJob struct {
	ID         string               `json:"id"`
	Status     string               `json:"status"` // running, completed
	Progress   RegenerationProgress `json:"progress"`
	Results    []RegenerationResult `json:"results,omitempty"`
	Succeeded  int                  `json:"succeeded"`
	Failed     int                  `json:"failed"`
	StartedAt  string               `json:"startedAt"`
	FinishedAt string               `json:"finishedAt,omitempty"`
}

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
)

// RegenerateBatchRequest is the body of POST /admin/orders/regenerate
// Example: {"orderIds": ["o1", "o2"]}
type RegenerateBatchRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,max=500,dive,required"`
}
