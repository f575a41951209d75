package dto

// HistoryQuery is the query string of GET /api/history.
type HistoryQuery struct {
	Service string `query:"service" json:"service" validate:"required"`
}

func (HistoryQuery) validationMessage(_, _ string) string {
	return "Service parameter is required"
}

// DeleteResponse confirms a history deletion.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}
