package relevance

// Category is a named group of terms. Terms are lower-case and matched as
// plain substrings.
type Category struct {
	Name  string   `json:"name"`
	Terms []string `json:"terms"`
}

// Locations are weighted highest when scoring, themes second.
var locationDictionary = []Category{
	{Name: "bali", Terms: []string{"bali", "ubud", "seminyak", "kuta", "canggu", "denpasar", "uluwatu", "sanur", "nusa dua", "jimbaran"}},
	{Name: "jakarta", Terms: []string{"jakarta", "monas", "kota tua", "ancol", "menteng", "thamrin", "sudirman", "kemang"}},
	{Name: "yogyakarta", Terms: []string{"yogyakarta", "jogja", "yogya", "borobudur", "prambanan", "malioboro", "kraton"}},
	{Name: "lombok", Terms: []string{"lombok", "gili", "rinjani", "senggigi", "mandalika"}},
	{Name: "bandung", Terms: []string{"bandung", "lembang", "tangkuban perahu", "kawah putih", "braga"}},
	{Name: "labuan bajo", Terms: []string{"labuan bajo", "komodo", "padar", "flores"}},
	{Name: "raja ampat", Terms: []string{"raja ampat", "waigeo", "misool", "sorong"}},
	{Name: "bromo", Terms: []string{"bromo", "tengger", "malang", "ijen"}},
	{Name: "lake toba", Terms: []string{"toba", "samosir", "medan", "sumatra"}},
}

var themeDictionary = []Category{
	{Name: "beach", Terms: []string{"beach", "snorkel", "surf", "diving", "island", "coast", "sunset", "sand"}},
	{Name: "culinary", Terms: []string{"food", "warung", "culinary", "satay", "nasi goreng", "rendang", "coffee", "restaurant", "street food"}},
	{Name: "culture", Terms: []string{"culture", "temple", "tradition", "ceremony", "dance", "batik", "heritage", "museum"}},
	{Name: "adventure", Terms: []string{"adventure", "hiking", "trek", "climb", "volcano", "rafting", "explore"}},
	{Name: "nature", Terms: []string{"nature", "waterfall", "rice terrace", "jungle", "forest", "lake", "wildlife"}},
	{Name: "shopping", Terms: []string{"shopping", "market", "souvenir", "mall", "handicraft"}},
	{Name: "nightlife", Terms: []string{"nightlife", "bar", "club", "party"}},
}

var (
	locationKeywords = keywordIndex(locationDictionary)
	themeKeywords    = keywordIndex(themeDictionary)
)

func keywordIndex(dictionary []Category) map[string]struct{} {
	index := make(map[string]struct{})
	for _, c := range dictionary {
		index[c.Name] = struct{}{}
		for _, term := range c.Terms {
			index[term] = struct{}{}
		}
	}
	return index
}

// IsLocationKeyword reports whether k is a location name or one of its terms.
func IsLocationKeyword(k string) bool {
	_, ok := locationKeywords[k]
	return ok
}

// IsThemeKeyword reports whether k is a theme name or one of its terms.
func IsThemeKeyword(k string) bool {
	_, ok := themeKeywords[k]
	return ok
}

func isLocationCategory(name string) bool {
	for _, c := range locationDictionary {
		if c.Name == name {
			return true
		}
	}
	return false
}

// LocationDictionary returns a copy of the location dictionary.
func LocationDictionary() []Category {
	return copyDictionary(locationDictionary)
}

// ThemeDictionary returns a copy of the theme dictionary.
func ThemeDictionary() []Category {
	return copyDictionary(themeDictionary)
}

func copyDictionary(dictionary []Category) []Category {
	out := make([]Category, len(dictionary))
	for i, c := range dictionary {
		out[i] = Category{Name: c.Name, Terms: append([]string(nil), c.Terms...)}
	}
	return out
}
