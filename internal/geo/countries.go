package geo

// DefaultEventMultiplier applies to countries without a curated profile.
const DefaultEventMultiplier = 1.0

// Profile is a curated per-country scoring profile. BaselineRisk seeds the
// blended score for countries with little live data; EventMultiplier dampens
// raw event counts for high-volume countries (values below 0.7 also switch
// the count terms to log scaling). Keywords feed free-text attribution and
// news cluster matching: lowercase, word-bounded, profile order is the
// tie-break.
type Profile struct {
	Code            string
	Name            string
	BaselineRisk    float64
	EventMultiplier float64
	Keywords        []string
}

// Profiles is the curated country table. Order matters: free-text
// attribution walks it top to bottom and the first keyword hit wins, so
// countries whose names shadow others (e.g. "sudan" vs "south sudan",
// "niger" vs "nigeria") list the longer form first. Keyword matching is
// word-bounded, so the shorter name never fires inside the longer one.
var Profiles = []Profile{
	{Code: "SS", Name: "South Sudan", BaselineRisk: 72, EventMultiplier: 1.0, Keywords: []string{"south sudan", "juba"}},
	{Code: "SD", Name: "Sudan", BaselineRisk: 78, EventMultiplier: 1.0, Keywords: []string{"sudan", "khartoum", "darfur"}},
	{Code: "KP", Name: "North Korea", BaselineRisk: 62, EventMultiplier: 1.0, Keywords: []string{"north korea", "dprk", "pyongyang"}},
	{Code: "KR", Name: "South Korea", BaselineRisk: 22, EventMultiplier: 0.9, Keywords: []string{"south korea", "seoul"}},
	{Code: "UA", Name: "Ukraine", BaselineRisk: 80, EventMultiplier: 0.8, Keywords: []string{"ukraine", "kyiv", "kiev", "donbas", "kharkiv", "odesa"}},
	{Code: "RU", Name: "Russia", BaselineRisk: 64, EventMultiplier: 0.65, Keywords: []string{"russia", "moscow", "kremlin"}},
	{Code: "IL", Name: "Israel", BaselineRisk: 66, EventMultiplier: 0.7, Keywords: []string{"israel", "tel aviv", "jerusalem", "idf"}},
	{Code: "PS", Name: "Palestine", BaselineRisk: 80, EventMultiplier: 0.9, Keywords: []string{"palestine", "gaza", "west bank", "rafah"}},
	{Code: "IR", Name: "Iran", BaselineRisk: 60, EventMultiplier: 0.9, Keywords: []string{"iran", "tehran", "irgc"}},
	{Code: "IQ", Name: "Iraq", BaselineRisk: 58, EventMultiplier: 1.0, Keywords: []string{"iraq", "baghdad", "mosul"}},
	{Code: "SY", Name: "Syria", BaselineRisk: 74, EventMultiplier: 1.0, Keywords: []string{"syria", "damascus", "aleppo", "idlib"}},
	{Code: "LB", Name: "Lebanon", BaselineRisk: 62, EventMultiplier: 1.0, Keywords: []string{"lebanon", "beirut", "hezbollah"}},
	{Code: "YE", Name: "Yemen", BaselineRisk: 74, EventMultiplier: 1.0, Keywords: []string{"yemen", "sanaa", "houthi", "aden"}},
	{Code: "AF", Name: "Afghanistan", BaselineRisk: 70, EventMultiplier: 1.0, Keywords: []string{"afghanistan", "kabul", "taliban"}},
	{Code: "PK", Name: "Pakistan", BaselineRisk: 54, EventMultiplier: 0.85, Keywords: []string{"pakistan", "islamabad", "karachi", "balochistan"}},
	{Code: "IN", Name: "India", BaselineRisk: 34, EventMultiplier: 0.55, Keywords: []string{"india", "new delhi", "kashmir"}},
	{Code: "CN", Name: "China", BaselineRisk: 38, EventMultiplier: 0.55, Keywords: []string{"china", "beijing", "xinjiang", "pla"}},
	{Code: "TW", Name: "Taiwan", BaselineRisk: 42, EventMultiplier: 0.9, Keywords: []string{"taiwan", "taipei"}},
	{Code: "MM", Name: "Myanmar", BaselineRisk: 72, EventMultiplier: 1.0, Keywords: []string{"myanmar", "burma", "yangon", "rakhine"}},
	{Code: "ET", Name: "Ethiopia", BaselineRisk: 58, EventMultiplier: 1.0, Keywords: []string{"ethiopia", "addis ababa", "tigray", "amhara"}},
	{Code: "SO", Name: "Somalia", BaselineRisk: 74, EventMultiplier: 1.0, Keywords: []string{"somalia", "mogadishu", "al-shabaab"}},
	{Code: "CD", Name: "DR Congo", BaselineRisk: 70, EventMultiplier: 1.0, Keywords: []string{"democratic republic of the congo", "dr congo", "drc", "kinshasa", "kivu", "goma"}},
	{Code: "ML", Name: "Mali", BaselineRisk: 66, EventMultiplier: 1.0, Keywords: []string{"mali", "bamako", "gao"}},
	{Code: "BF", Name: "Burkina Faso", BaselineRisk: 68, EventMultiplier: 1.0, Keywords: []string{"burkina faso", "ouagadougou"}},
	{Code: "NG", Name: "Nigeria", BaselineRisk: 56, EventMultiplier: 0.8, Keywords: []string{"nigeria", "abuja", "lagos", "boko haram"}},
	{Code: "NE", Name: "Niger", BaselineRisk: 64, EventMultiplier: 1.0, Keywords: []string{"niger", "niamey"}},
	{Code: "LY", Name: "Libya", BaselineRisk: 62, EventMultiplier: 1.0, Keywords: []string{"libya", "tripoli", "benghazi"}},
	{Code: "HT", Name: "Haiti", BaselineRisk: 72, EventMultiplier: 1.0, Keywords: []string{"haiti", "port-au-prince"}},
	{Code: "VE", Name: "Venezuela", BaselineRisk: 56, EventMultiplier: 1.0, Keywords: []string{"venezuela", "caracas"}},
	{Code: "CO", Name: "Colombia", BaselineRisk: 46, EventMultiplier: 0.9, Keywords: []string{"colombia", "bogota"}},
	{Code: "MX", Name: "Mexico", BaselineRisk: 44, EventMultiplier: 0.7, Keywords: []string{"mexico", "sinaloa", "cartel"}},
	{Code: "US", Name: "United States", BaselineRisk: 20, EventMultiplier: 0.4, Keywords: []string{"united states", "washington", "pentagon", "u.s."}},
	{Code: "GB", Name: "United Kingdom", BaselineRisk: 18, EventMultiplier: 0.6, Keywords: []string{"united kingdom", "britain", "london"}},
	{Code: "FR", Name: "France", BaselineRisk: 22, EventMultiplier: 0.65, Keywords: []string{"france", "paris"}},
	{Code: "DE", Name: "Germany", BaselineRisk: 16, EventMultiplier: 0.65, Keywords: []string{"germany", "berlin"}},
	{Code: "TR", Name: "Turkey", BaselineRisk: 44, EventMultiplier: 0.8, Keywords: []string{"turkey", "turkiye", "ankara", "istanbul"}},
	{Code: "EG", Name: "Egypt", BaselineRisk: 46, EventMultiplier: 0.9, Keywords: []string{"egypt", "cairo", "sinai"}},
	{Code: "SA", Name: "Saudi Arabia", BaselineRisk: 38, EventMultiplier: 0.9, Keywords: []string{"saudi arabia", "riyadh"}},
	{Code: "AM", Name: "Armenia", BaselineRisk: 48, EventMultiplier: 1.0, Keywords: []string{"armenia", "yerevan", "nagorno-karabakh"}},
	{Code: "AZ", Name: "Azerbaijan", BaselineRisk: 46, EventMultiplier: 1.0, Keywords: []string{"azerbaijan", "baku"}},
	{Code: "GE", Name: "Georgia", BaselineRisk: 38, EventMultiplier: 1.0, Keywords: []string{"georgia", "tbilisi"}},
	{Code: "RS", Name: "Serbia", BaselineRisk: 36, EventMultiplier: 1.0, Keywords: []string{"serbia", "belgrade", "kosovo"}},
	{Code: "VN", Name: "Vietnam", BaselineRisk: 26, EventMultiplier: 1.0, Keywords: []string{"vietnam", "hanoi"}},
	{Code: "PH", Name: "Philippines", BaselineRisk: 36, EventMultiplier: 0.9, Keywords: []string{"philippines", "manila", "mindanao"}},
	{Code: "BD", Name: "Bangladesh", BaselineRisk: 44, EventMultiplier: 0.9, Keywords: []string{"bangladesh", "dhaka"}},
	{Code: "EC", Name: "Ecuador", BaselineRisk: 48, EventMultiplier: 1.0, Keywords: []string{"ecuador", "quito", "guayaquil"}},
	{Code: "MZ", Name: "Mozambique", BaselineRisk: 54, EventMultiplier: 1.0, Keywords: []string{"mozambique", "maputo", "cabo delgado"}},
	{Code: "TD", Name: "Chad", BaselineRisk: 60, EventMultiplier: 1.0, Keywords: []string{"chad", "n'djamena"}},
	{Code: "CF", Name: "Central African Republic", BaselineRisk: 66, EventMultiplier: 1.0, Keywords: []string{"central african republic", "bangui"}},
	{Code: "CM", Name: "Cameroon", BaselineRisk: 50, EventMultiplier: 1.0, Keywords: []string{"cameroon", "yaounde"}},
}

// ProfileFor returns the curated profile for a code, or nil.
func ProfileFor(code string) *Profile {
	for i := range Profiles {
		if Profiles[i].Code == code {
			return &Profiles[i]
		}
	}
	return nil
}

// MultiplierFor returns the curated event multiplier, or the default.
func MultiplierFor(code string) float64 {
	if p := ProfileFor(code); p != nil {
		return p.EventMultiplier
	}
	return DefaultEventMultiplier
}

// BaselineFor returns the curated baseline risk, or a conservative default
// for countries outside the curated table.
func BaselineFor(code string) float64 {
	if p := ProfileFor(code); p != nil {
		return p.BaselineRisk
	}
	return 25
}

// NameFor returns the display name for a code, falling back to the code
// itself for countries outside the curated and general tables.
func NameFor(code string) string {
	if p := ProfileFor(code); p != nil {
		return p.Name
	}
	if name, ok := iso2ToName[code]; ok {
		return name
	}
	return code
}
