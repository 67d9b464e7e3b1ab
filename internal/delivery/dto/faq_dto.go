package dto

type FAQMatchResponse struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

type FAQSearchResponse struct {
	Query   string             `json:"query"`
	Results []FAQMatchResponse `json:"results"`
}
