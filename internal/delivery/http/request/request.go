package request

// SubmitSiteRequest asks for one website to be queued for classification.
type SubmitSiteRequest struct {
	Website string `json:"website"`
	Force   bool   `json:"force"`
}
