package gemini

import (
	"fmt"
	"strings"

	"phoneGuide/domain"
)

func buildRecommendationPrompt(prefs domain.UserPreferences) string {
	return fmt.Sprintf(`Sen, en son çıkan akıllı telefon modelleri, teknolojileri ve Türkiye pazarındaki fiyatları hakkında derin bilgiye sahip, tarafsız bir teknoloji uzmanısın.
Görevin, aşağıda belirtilen kullanıcı tercihlerine göre en uygun 5 adet akıllı telefonu tavsiye etmektir.
Cevabını yalnızca JSON formatında, belirtilen şemaya uygun olarak ver. Hiçbir açıklama veya giriş metni ekleme. Sadece JSON array'i döndür.

Her bir tavsiye için:
1. Tüm istenen teknik özellikleri (ekran, batarya, kamera, işlemci, RAM, depolama) ve bilgileri (model, marka, işletim sistemi, fiyat, özet, artılar/eksiler) doldur.
2. Kullanıcının tercihlerine ne kadar uyduğunu belirten 1 ile 100 arasında bir 'matchScore' (uygunluk puanı) ata. 100 en mükemmel eşleşmedir.
3. Eğer bir model, bir veya daha fazla kritere tam uymasa da (örneğin bütçeyi %%10-15 aşması gibi) yine de çok iyi bir alternatif ise, onu listeye dahil et. Bu durumda, 'mismatchReason' alanına nedenini açıklayan kısa bir not ekle. Örneğin: "Bütçenizin biraz üzerinde ancak kamera performansı beklentilerinizi fazlasıyla karşılıyor." Tam uyan modeller için bu alanı boş bırak.
4. Sonuçları 'matchScore'a göre en yüksekten en düşüğe doğru sıralanmış olarak döndür.

Kullanıcı Tercihleri:
- Bütçe: Maksimum %d TL
- Kamera Önceliği: %s
- Batarya Ömrü Önceliği: %s
- Performans Beklentisi: %s (Oyun odaklı mı, günlük kullanım mı, temel işlevler mi?)
- Ekran Boyutu Tercihi: %s
- İşletim Sistemi Tercihi: %s

Lütfen bu kriterlere en uygun, güncel ve Türkiye'de bulunabilir 5 farklı telefon öner.`,
		prefs.Budget,
		prefs.Camera,
		prefs.Battery,
		prefs.Performance,
		prefs.ScreenSize,
		prefs.OS,
	)
}

func buildSimilarPrompt(phone domain.PhoneRecommendation) string {
	return fmt.Sprintf(`Sen, en son çıkan akıllı telefon modelleri, teknolojileri ve Türkiye pazarındaki fiyatları hakkında derin bilgiye sahip, tarafsız bir teknoloji uzmanısın.
Görevin, aşağıda detayları verilen referans akıllı telefona benzer özelliklere sahip 3 adet alternatif model önermektir.
Önerilerin, referans telefonla benzer fiyat aralığında, performans (işlemci), kamera kalitesi ve batarya ömrü gibi kilit özelliklerde rekabetçi olmalıdır. Mümkünse farklı markalardan öneriler sun.
Her önerinin neden iyi bir alternatif olduğunu 'summary' alanında kısaca açıkla.
Cevabını yalnızca JSON formatında, belirtilen şemaya uygun olarak ver. Hiçbir açıklama veya giriş metni ekleme. Sadece JSON array'i döndür.

Referans Telefon:
- Model: %s
- Fiyat Aralığı: %s
- İşlemci: %s
- Kamera: %s
- Batarya: %s

Lütfen bu telefona en uygun 3 alternatifi öner. Her bir alternatif için 'matchScore'u referans telefona ne kadar benzediğine göre 1-100 arasında ata.`,
		phone.Model,
		phone.EstimatedPrice,
		phone.Specs.Processor,
		phone.Specs.Camera,
		phone.Specs.Battery,
	)
}

func buildComparePrompt(featureTitle string, values []domain.FeatureValue) string {
	var lines strings.Builder
	for _, v := range values {
		fmt.Fprintf(&lines, "- %s: %s\n", v.Model, v.Value)
	}

	return fmt.Sprintf(`Sen bir mobil teknoloji karşılaştırma uzmanısın.
Aşağıdaki telefonların belirtilen özelliğini detaylıca karşılaştır.
Karşılaştırmanı teknik detaylara dayandırarak yap, ancak sonuçları herkesin anlayabileceği net ve basit bir dille özetle.
Performans, verimlilik, kalite ve kullanıcı deneyimi gibi konulardaki temel farkları, avantajları ve dezavantajları vurgula.
Cevabını madde işaretleri (*) kullanarak, okunması kolay bir formatta sun.

Karşılaştırılacak Özellik: "%s"

Telefonlar ve Özellik Değerleri:
%s`,
		featureTitle,
		lines.String(),
	)
}

func buildImagePrompt(phoneModel string) string {
	return fmt.Sprintf(
		"A professional, high-quality product photograph of the %s smartphone. The phone should be displayed on a clean, minimalist, light-colored background. The image should be sleek and modern, highlighting the phone's design.",
		phoneModel,
	)
}
