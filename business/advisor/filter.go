package advisor

import "phoneGuide/domain"

// FilterRecommendations projects the result list through the active facet
// filters. Pure function; the filtered view is always recomputed from the
// stored list, never stored itself. Matching is exact equality on the facet
// value unless the axis is "all".
func FilterRecommendations(recs []domain.PhoneRecommendation, filters domain.Filters) []domain.PhoneRecommendation {
	out := make([]domain.PhoneRecommendation, 0, len(recs))
	for _, phone := range recs {
		brandMatch := filters.Brand == domain.FilterAll || phone.Brand == filters.Brand
		osMatch := filters.OS == domain.FilterAll || phone.OS == filters.OS
		if brandMatch && osMatch {
			out = append(out, phone)
		}
	}
	return out
}
