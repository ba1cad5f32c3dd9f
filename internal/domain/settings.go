package domain

// Settings carries kiosk branding fetched from the FDMS backend.
type Settings struct {
	LogoURL     string `json:"logoUrl"`
	CompanyName string `json:"companyName"`
}

// DefaultSettings is used when the settings fetch fails or returns nothing.
func DefaultSettings() Settings {
	return Settings{CompanyName: "FDMS"}
}
