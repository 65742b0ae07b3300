package gemini

import "google.golang.org/genai"

// recommendationSchema mirrors domain.PhoneRecommendation field for field. The
// request declares this exact shape so the response can be decoded directly
// as typed data; per-field descriptions tell the model what belongs where.
func recommendationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"model": {
				Type:        genai.TypeString,
				Description: "Akıllı telefonun tam modeli.",
			},
			"brand": {
				Type:        genai.TypeString,
				Description: "Telefonun markası (örn: Samsung, Apple, Xiaomi).",
			},
			"os": {
				Type:        genai.TypeString,
				Description: "Telefonun işletim sistemi (örn: Android, iOS).",
			},
			"estimatedPrice": {
				Type:        genai.TypeString,
				Description: "Telefonun Türkiye'deki yaklaşık fiyat aralığı (örn: 20.000 - 25.000 TL).",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "Bu telefonun neden kullanıcı için uygun olduğuna dair 2-3 cümlelik özet.",
			},
			"pros": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Telefonun 3 adet olumlu yönü.",
			},
			"cons": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Telefonun 2 adet olumsuz yönü.",
			},
			"specs": {
				Type:        genai.TypeObject,
				Description: "Telefonun temel teknik özellikleri.",
				Properties: map[string]*genai.Schema{
					"display": {
						Type:        genai.TypeString,
						Description: "Ekran boyutu ve teknolojisi (örn: 6.7 inç, AMOLED, 120Hz).",
					},
					"battery": {
						Type:        genai.TypeString,
						Description: "Batarya kapasitesi (örn: 5000 mAh).",
					},
					"camera": {
						Type:        genai.TypeString,
						Description: "Ana kamera özellikleri (örn: 108 MP, OIS).",
					},
					"processor": {
						Type:        genai.TypeString,
						Description: "İşlemci modeli (örn: Snapdragon 8 Gen 2).",
					},
					"ram": {
						Type:        genai.TypeString,
						Description: "RAM seçenekleri (örn: 8 GB / 12 GB).",
					},
					"storage": {
						Type:        genai.TypeString,
						Description: "Dahili depolama seçenekleri (örn: 128 GB / 256 GB).",
					},
				},
				Required: []string{"display", "battery", "camera", "processor", "ram", "storage"},
			},
			"matchScore": {
				Type:        genai.TypeInteger,
				Description: "Bu telefonun kullanıcının tercihlerine ne kadar uygun olduğunu gösteren 1-100 arası bir puan.",
			},
			"mismatchReason": {
				Type:        genai.TypeString,
				Description: "Eğer telefon bir kritere tam uymuyorsa (örn: bütçeyi biraz aşıyorsa) ama yine de iyi bir seçenekse, nedenini açıklayan kısa bir not. Tam uyan modeller için bu alanı boş bırak.",
			},
		},
		Required: []string{"model", "brand", "os", "estimatedPrice", "summary", "pros", "cons", "specs", "matchScore"},
	}
}

// recommendationListSchema is the top-level response shape for both the
// recommendation and similar-phones calls.
func recommendationListSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: recommendationSchema(),
	}
}
