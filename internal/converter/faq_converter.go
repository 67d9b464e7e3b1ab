package converter

import (
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/faq"
)

func FAQMatchesToResponse(query string, matches []faq.Match) *dto.FAQSearchResponse {
	results := make([]dto.FAQMatchResponse, len(matches))
	for i, m := range matches {
		results[i] = dto.FAQMatchResponse{
			Question: m.Entry.Question,
			Answer:   m.Entry.Answer,
			Score:    m.Score,
		}
	}

	return &dto.FAQSearchResponse{
		Query:   query,
		Results: results,
	}
}
