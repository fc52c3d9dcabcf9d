package domain

// CostUnknown is the receipt cost value when a carrier does not report one.
const CostUnknown = "unknown"

// DeliveryReceipt is created by a transport adapter on a successful send.
type DeliveryReceipt struct {
	Provider  string
	MessageID string
	Cost      string
	Status    string
}

// DispatchResult is the outcome of one send attempt to one destination.
type DispatchResult struct {
	Recipient string
	Success   bool
	Provider  string
	MessageID string
	Cost      string
	Status    string
	Error     string
}

// SuccessResult builds a DispatchResult from a provider receipt.
func SuccessResult(recipient string, receipt DeliveryReceipt) DispatchResult {
	cost := receipt.Cost
	if cost == "" {
		cost = CostUnknown
	}
	return DispatchResult{
		Recipient: recipient,
		Success:   true,
		Provider:  receipt.Provider,
		MessageID: receipt.MessageID,
		Cost:      cost,
		Status:    receipt.Status,
	}
}

// FailureResult builds a failed DispatchResult carrying the error reason.
func FailureResult(recipient string, err error) DispatchResult {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return DispatchResult{
		Recipient: recipient,
		Success:   false,
		Error:     reason,
	}
}

// BatchResult aggregates per-destination outcomes of a bulk dispatch.
// Results preserve the input destination ordering.
type BatchResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []DispatchResult
}

// BuildBatchResult computes totals from the given ordered results.
func BuildBatchResult(results []DispatchResult) *BatchResult {
	batch := &BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}
	}
	return batch
}
