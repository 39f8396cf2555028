package domain

// Warning types attached to a directory response.
const (
	WarningChildrenUnavailable = "children_unavailable"
	WarningReferralFallback    = "referral_fallback"
)

// Warning reports a sub-fetch that degraded to fallback data.
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Directory is the combined user listing served to the operator console.
type Directory struct {
	Children          []User    `json:"children"`
	ReferralCustomers []User    `json:"referral_customers"`
	Warnings          []Warning `json:"warnings"`
}

// Warn appends a warning.
func (d *Directory) Warn(kind, message string) {
	d.Warnings = append(d.Warnings, Warning{Type: kind, Message: message})
}

// Decentralized reports whether the account bills through referral customers.
func (d *Directory) Decentralized() bool {
	return d != nil && len(d.ReferralCustomers) > 0
}

// DemoReferralCustomer is substituted when the referral listing is empty or unavailable.
func DemoReferralCustomer() User {
	return User{
		ID:        "user_demo_referral_customer",
		Name:      "Demo Referral Customer",
		Verified:  true,
		CreatedAt: "2024-01-01T00:00:00Z",
		Balance:   "0.00000",
		Email:     "demo-referral@example.com",
		Children:  []User{},
	}
}
