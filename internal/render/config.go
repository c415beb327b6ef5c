package render

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RGB is a color in the brand profile.
type RGB struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

// Profile carries the issuer identity and brand styling painted on
// every document.
type Profile struct {
	CompanyName    string `yaml:"company_name"`
	CompanyTaxID   string `yaml:"company_tax_id"`
	CompanyEmail   string `yaml:"company_email"`
	CompanyPhone   string `yaml:"company_phone"`
	CompanyAddress string `yaml:"company_address"`
	PrimaryColor   RGB    `yaml:"primary_color"`
	AccentColor    RGB    `yaml:"accent_color"`
	LogoPath       string `yaml:"logo_path"`
	WordmarkLeft   string `yaml:"wordmark_left"`
	WordmarkRight  string `yaml:"wordmark_right"`
}

// DefaultProfile returns the built-in brand profile.
func DefaultProfile() Profile {
	return Profile{
		CompanyName:   "Billing Cloud SpA",
		CompanyEmail:  "contacto@billing.cloud",
		PrimaryColor:  RGB{R: 31, G: 64, B: 104},
		AccentColor:   RGB{R: 240, G: 173, B: 78},
		WordmarkLeft:  "billing",
		WordmarkRight: "cloud",
	}
}

// LoadProfile loads the brand profile from yaml, overlaying defaults.
// An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, err
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, err
	}
	return profile, nil
}
