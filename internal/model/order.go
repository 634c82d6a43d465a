package model

type DecodedSection struct {
	Index        int            `json:"index"`
	ColorScheme  string         `json:"colorScheme"`
	CustomColor1 string         `json:"customColor1"`
	CustomColor2 string         `json:"customColor2"`
	Comments     string         `json:"comments"`
	Files        []UploadedFile `json:"files"`
}

type DecodedLineItem struct {
	ServiceID   string           `json:"serviceId"`
	ServiceName string           `json:"serviceName"`
	Quantity    int              `json:"quantity"`
	Sections    []DecodedSection `json:"sections"`
	Files       []UploadedFile   `json:"files"`
}

// DesignPreferences rebuilds the flat preference map the cart held for
// this item.
func (i DecodedLineItem) DesignPreferences() map[string]string {
	prefs := make(map[string]string, len(i.Sections)*len(SectionFields))
	for _, s := range i.Sections {
		prefs[PreferenceKey(PrefColorScheme, s.Index)] = s.ColorScheme
		prefs[PreferenceKey(PrefCustomColor1, s.Index)] = s.CustomColor1
		prefs[PreferenceKey(PrefCustomColor2, s.Index)] = s.CustomColor2
		prefs[PreferenceKey(PrefComments, s.Index)] = s.Comments
	}
	return prefs
}

// DecodedOrder is an order reconstructed from a payment session. It is
// never stored; emails and the confirmation page consume it.
type DecodedOrder struct {
	SessionID      string            `json:"sessionId,omitempty"`
	CustomerName   string            `json:"customerName"`
	CustomerEmail  string            `json:"customerEmail"`
	SocialPlatform string            `json:"socialPlatform"`
	SocialUsername string            `json:"socialUsername"`
	TotalItems     int               `json:"totalItems"`
	TotalAmount    int64             `json:"totalAmount"`
	Currency       string            `json:"currency,omitempty"`
	PaymentStatus  string            `json:"paymentStatus,omitempty"`
	Items          []DecodedLineItem `json:"items"`
}
