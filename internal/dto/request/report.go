package request

type SystemReportRequest struct {
	From   string `validate:"required,datetime=2006-01-02"`
	To     string `validate:"required,datetime=2006-01-02"`
	Status string `validate:"omitempty,oneof=draft pending published completed cancelled rejected"`
}
