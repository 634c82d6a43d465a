package notifier

import (
	"fmt"
	"net/url"
	"strings"

	"studio-storefront/internal/model"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"eur": "€",
	"usd": "$",
	"gbp": "£",
}

// FormatAmount renders minor units as a display price, e.g. 9000 eur → €90.00.
func FormatAmount(minor int64, currency string) string {
	amount := decimal.NewFromInt(minor).Shift(-2).StringFixed(2)
	code := strings.ToLower(currency)
	if code == "" {
		code = "eur"
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym + amount
	}
	return strings.ToUpper(code) + " " + amount
}

type fileView struct {
	Number int
	Name   string
	URL    string
}

type sectionView struct {
	Label        string
	ColorScheme  string
	ShowCustom   bool
	CustomColor1 string
	CustomColor2 string
	Comments     string
	Files        []fileView
}

type itemView struct {
	ServiceName string
	Quantity    int
	Sections    []sectionView
	// Unsectioned holds files whose section no longer exists on the item.
	Unsectioned []fileView
}

type orderView struct {
	SessionID       string
	CustomerName    string
	CustomerEmail   string
	SocialPlatform  string
	SocialUsername  string
	Amount          string
	ConfirmationURL string
	ServiceSummary  string
	FileCount       int
	Items           []itemView
}

func newOrderView(order *model.DecodedOrder, baseURL string) orderView {
	v := orderView{
		SessionID:       order.SessionID,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		SocialPlatform:  order.SocialPlatform,
		SocialUsername:  order.SocialUsername,
		Amount:          FormatAmount(order.TotalAmount, order.Currency),
		ConfirmationURL: confirmationURL(baseURL, order.SessionID),
	}

	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.ServiceName)
		iv := itemView{ServiceName: item.ServiceName, Quantity: item.Quantity}

		placed := 0
		for _, s := range item.Sections {
			sv := sectionView{
				Label:       sectionLabel(item.ServiceName, s.Index, item.Quantity),
				ColorScheme: orDefault(s.ColorScheme, "Not specified"),
				Comments:    orDefault(s.Comments, "No additional comments"),
			}
			if s.ColorScheme == model.ColorSchemeCustom {
				sv.ShowCustom = true
				sv.CustomColor1 = orDefault(s.CustomColor1, "-")
				sv.CustomColor2 = orDefault(s.CustomColor2, "-")
			}
			for n, f := range s.Files {
				sv.Files = append(sv.Files, newFileView(n+1, f))
			}
			placed += len(s.Files)
			v.FileCount += len(s.Files)
			iv.Sections = append(iv.Sections, sv)
		}

		if placed < len(item.Files) {
			for _, f := range item.Files {
				if f.SectionIndex < 0 || f.SectionIndex >= len(item.Sections) {
					iv.Unsectioned = append(iv.Unsectioned, newFileView(len(iv.Unsectioned)+1, f))
					v.FileCount++
				}
			}
		}
		v.Items = append(v.Items, iv)
	}
	v.ServiceSummary = strings.Join(names, ", ")

	return v
}

func newFileView(n int, f model.UploadedFile) fileView {
	name := f.Name
	if name == "" {
		name = fmt.Sprintf("File %d", n)
	}
	return fileView{Number: n, Name: name, URL: f.URL}
}

// sectionLabel names a section, adding its position when the item was
// ordered more than once.
func sectionLabel(serviceName string, index, quantity int) string {
	if quantity > 1 {
		return fmt.Sprintf("%s #%d of %d", serviceName, index+1, quantity)
	}
	return serviceName
}

func confirmationURL(baseURL, sessionID string) string {
	return strings.TrimRight(baseURL, "/") + "/order-success?session_id=" + url.QueryEscape(sessionID)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
