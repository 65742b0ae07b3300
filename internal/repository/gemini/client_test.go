package gemini

import (
	"strings"
	"testing"

	"phoneGuide/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestDecodeRecommendations(t *testing.T) {
	body := `[
		{"model":"Pixel 9","brand":"Google","os":"android","estimatedPrice":"45.000 TL","summary":"İyi kamera.","pros":["kamera"],"cons":["fiyat"],"specs":{"display":"6.3\"","battery":"4700mAh","camera":"50MP","processor":"Tensor G4","ram":"12GB","storage":"256GB"},"matchScore":80},
		{"model":"Galaxy S25","brand":"Samsung","os":"android","estimatedPrice":"55.000 TL","summary":"Dengeli.","pros":["ekran"],"cons":["şarj hızı"],"specs":{"display":"6.2\"","battery":"4000mAh","camera":"50MP","processor":"Snapdragon 8 Elite","ram":"12GB","storage":"256GB"},"matchScore":92,"mismatchReason":"Bütçenizin biraz üzerinde."}
	]`

	recs, err := decodeRecommendations(body)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// re-sorted by matchScore descending
	assert.Equal(t, "Galaxy S25", recs[0].Model)
	assert.Equal(t, 92, recs[0].MatchScore)
	assert.Equal(t, "Bütçenizin biraz üzerinde.", recs[0].MismatchReason)
	assert.Equal(t, "Pixel 9", recs[1].Model)
	assert.Empty(t, recs[1].MismatchReason)
	assert.Equal(t, "Tensor G4", recs[1].Specs.Processor)
}

func TestDecodeRecommendationsTrimsWhitespace(t *testing.T) {
	recs, err := decodeRecommendations("\n  []  \n")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeRecommendationsRejectsNonArray(t *testing.T) {
	_, err := decodeRecommendations(`{"model":"Pixel 9"}`)
	assert.Error(t, err)

	_, err = decodeRecommendations("üzgünüm, yardımcı olamıyorum")
	assert.Error(t, err)
}

func TestBuildRecommendationPrompt(t *testing.T) {
	prompt := buildRecommendationPrompt(domain.UserPreferences{
		Budget:      30000,
		Camera:      domain.PriorityHigh,
		Battery:     domain.PriorityStandard,
		Performance: domain.PerformanceGaming,
		ScreenSize:  domain.ScreenLarge,
		OS:          domain.OSAndroid,
	})

	assert.Contains(t, prompt, "Maksimum 30000 TL")
	assert.Contains(t, prompt, "Kamera Önceliği: oncelikli")
	assert.Contains(t, prompt, "Performans Beklentisi: oyun")
	assert.Contains(t, prompt, "İşletim Sistemi Tercihi: android")
	// the literal percentage range must survive formatting
	assert.Contains(t, prompt, "bütçeyi %10-15 aşması")
	assert.NotContains(t, prompt, "%!")
}

func TestBuildSimilarPrompt(t *testing.T) {
	prompt := buildSimilarPrompt(domain.PhoneRecommendation{
		Model:          "Pixel 9",
		EstimatedPrice: "45.000 TL",
		Specs: domain.PhoneSpecs{
			Processor: "Tensor G4",
			Camera:    "50MP",
			Battery:   "4700mAh",
		},
	})

	assert.Contains(t, prompt, "Model: Pixel 9")
	assert.Contains(t, prompt, "Fiyat Aralığı: 45.000 TL")
	assert.Contains(t, prompt, "İşlemci: Tensor G4")
	assert.Contains(t, prompt, "3 adet alternatif")
}

func TestBuildComparePrompt(t *testing.T) {
	prompt := buildComparePrompt("Kamera", []domain.FeatureValue{
		{Model: "Pixel 9", Value: "50MP"},
		{Model: "iPhone 16", Value: "48MP"},
	})

	assert.Contains(t, prompt, `Karşılaştırılacak Özellik: "Kamera"`)
	assert.Contains(t, prompt, "- Pixel 9: 50MP")
	assert.Contains(t, prompt, "- iPhone 16: 48MP")
}

func TestRecommendationSchemaShape(t *testing.T) {
	schema := recommendationListSchema()
	require.Equal(t, genai.TypeArray, schema.Type)

	item := schema.Items
	require.NotNil(t, item)
	assert.Equal(t, genai.TypeObject, item.Type)

	for _, field := range []string{"model", "brand", "os", "estimatedPrice", "summary", "pros", "cons", "specs", "matchScore"} {
		assert.Contains(t, item.Properties, field)
		assert.Contains(t, item.Required, field)
	}

	// mismatchReason is declared but optional
	assert.Contains(t, item.Properties, "mismatchReason")
	assert.NotContains(t, item.Required, "mismatchReason")

	specs := item.Properties["specs"]
	require.NotNil(t, specs)
	for _, field := range []string{"display", "battery", "camera", "processor", "ram", "storage"} {
		assert.Contains(t, specs.Properties, field)
	}
}

func TestFailureMessagesAreLocalized(t *testing.T) {
	for _, msg := range []string{msgRecommendationsFailed, msgSimilarFailed, msgComparisonFailed} {
		assert.True(t, strings.HasSuffix(msg, "."), msg)
		assert.NotEmpty(t, msg)
	}
}
