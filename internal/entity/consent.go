package entity

// ConsentCategory is one cookie category advertised by a consent banner.
// The label is free text taken from the page.
type ConsentCategory struct {
	ID    string
	Label string
}

// ConsentDecision maps a category id to its consent flag: 1 enabled, 0 disabled.
type ConsentDecision map[string]int

// CMPName identifies a consent-management platform governing a page.
type CMPName string

const (
	// CMPNone means no known platform was detected.
	CMPNone CMPName = "none"
	// CMPOneTrust is the OneTrust / Optanon SDK.
	CMPOneTrust CMPName = "onetrust"
	// CMPCookiebot is the Cybot Cookiebot dialog.
	CMPCookiebot CMPName = "cookiebot"
	// CMPTrustArc is the TrustArc / TRUSTe consent manager.
	CMPTrustArc CMPName = "trustarc"
	// CMPDidomi is the Didomi notice SDK.
	CMPDidomi CMPName = "didomi"
	// CMPQuantcast is the Quantcast Choice TCF implementation.
	CMPQuantcast CMPName = "quantcast"
)

// String returns the string representation of the CMPName.
func (n CMPName) String() string {
	if n == "" {
		return string(CMPNone)
	}
	return string(n)
}

// IsValid returns true if this is a known platform (not "none").
func (n CMPName) IsValid() bool {
	switch n {
	case CMPOneTrust, CMPCookiebot, CMPTrustArc, CMPDidomi, CMPQuantcast:
		return true
	default:
		return false
	}
}
