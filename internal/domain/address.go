package domain

// Address-like record returned by reverse geocoding. Any field may be empty.
type Address struct {
	City         string `json:"city,omitempty"`
	Town         string `json:"town,omitempty"`
	Village      string `json:"village,omitempty"`
	Hamlet       string `json:"hamlet,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Suburb       string `json:"suburb,omitempty"`
	County       string `json:"county,omitempty"`
	Road         string `json:"road,omitempty"`
	State        string `json:"state,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
}
