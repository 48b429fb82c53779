// Package mail renders finalized orders as emails and delivers them through
// one of the interchangeable relay transports.
package mail

import (
	"html"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
	"github.com/pragerfoto/mentor-order-api/internal/order"
)

const (
	notProvided = "Nincs megadva"
	// nbsp is the grouping and unit separator of hu-HU currency formatting.
	nbsp = "\u00a0"
)

// FormatHUF renders a whole-forint amount the way the business writes prices,
// e.g. "39 000 Ft" (non-breaking spaces) or "-7 800 Ft".
func FormatHUF(d decimal.Decimal) string {
	v := d.Round(0).IntPart()

	neg := v < 0
	if neg {
		v = -v
	}

	digits := []byte(strconv.FormatInt(v, 10))
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteByte(c)
	}
	b.WriteString(nbsp)
	b.WriteString("Ft")
	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// TextBody renders the plain-text order email used by the SMTP transport.
func TextBody(o *order.Order) string {
	d := o.Draft
	q := o.Quote

	var b strings.Builder
	b.WriteString("Új megrendelés érkezett a weboldalról!\n\n")
	b.WriteString("Időpont: " + o.SubmittedAt.Format("2006. 01. 02. 15:04:05") + "\n")
	b.WriteString("Hivatkozás: " + o.Reference + "\n")
	b.WriteString("========================================\n\n")

	b.WriteString("MEGRENDELŐ ADATAI:\n")
	b.WriteString("Név: " + d.CustomerName + "\n")
	b.WriteString("Email: " + d.CustomerEmail + "\n")
	b.WriteString("Telefon: " + orDefault(d.CustomerPhone, notProvided) + "\n\n")

	b.WriteString("SZÁMLÁZÁSI ADATOK:\n")
	b.WriteString("Név: " + d.BillingName + "\n")
	b.WriteString("Cím: " + d.BillingZip + " " + d.BillingCity + ", " + d.BillingAddress + "\n")
	b.WriteString("Adószám: " + orDefault(d.BillingTaxNumber, notProvided) + "\n\n")

	b.WriteString("RENDELÉS RÉSZLETEI:\n")
	b.WriteString("Résztvevők száma: " + itoa(d.ParticipantCount) + " fő\n")
	b.WriteString("Tervezett beváltás: " + d.PreferredMonth + "\n")
	b.WriteString("Kiválasztott szolgáltatások:\n")
	for _, id := range d.SelectedServices {
		name := string(id)
		price := decimal.Zero
		if it, err := catalog.ByID(id); err == nil {
			name = it.Name
			price = it.PriceFor(d.ParticipantCount)
		}
		b.WriteString("  - " + name + ": " + FormatHUF(price) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("ÁR ÖSSZEGZÉS:\n")
	b.WriteString("Részösszeg: " + FormatHUF(q.BaseTotal) + "\n")
	for _, line := range q.Discounts {
		b.WriteString(line.Label + ": " + FormatHUF(line.Amount) + "\n")
	}
	b.WriteString("Végösszeg: " + FormatHUF(q.FinalTotal) + "\n\n")

	b.WriteString("MEGJEGYZÉS:\n")
	b.WriteString(orDefault(d.Notes, notProvided) + "\n\n")

	b.WriteString("EGYÉB:\n")
	b.WriteString("Hírlevél feliratkozás: " + yesNo(d.NewsletterSignup) + "\n")

	if d.UTM.Any() {
		b.WriteString("\nUTM PARAMÉTEREK:\n")
		b.WriteString("Forrás: " + orDefault(d.UTM.Source, "N/A") + "\n")
		b.WriteString("Kampány: " + orDefault(d.UTM.Campaign, "N/A") + "\n")
		b.WriteString("Médium: " + orDefault(d.UTM.Medium, "N/A") + "\n")
		b.WriteString("Kifejezés: " + orDefault(d.UTM.Term, "N/A") + "\n")
		b.WriteString("Tartalom: " + orDefault(d.UTM.Content, "N/A") + "\n")
	}

	return b.String()
}

// HTMLBody renders the styled order email used by the Resend transport.
// User-supplied values are escaped before interpolation.
func HTMLBody(o *order.Order) string {
	d := o.Draft
	q := o.Quote
	esc := html.EscapeString

	var services strings.Builder
	for _, id := range d.SelectedServices {
		name := string(id)
		if it, err := catalog.ByID(id); err == nil {
			name = it.Name
		}
		services.WriteString("<li>" + esc(name) + "</li>")
	}

	var discounts strings.Builder
	for _, line := range q.Discounts {
		discounts.WriteString("<li>" + esc(line.Label) + ": <strong>" + FormatHUF(line.Amount) + "</strong></li>")
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; color: #333; line-height: 1.6; }
.container { max-width: 600px; margin: 20px auto; padding: 20px; border: 1px solid #eee; border-radius: 8px; }
h1, h2 { color: #c5a572; border-bottom: 2px solid #f0e6d8; padding-bottom: 5px; }
h1 { font-size: 24px; }
h2 { font-size: 20px; margin-top: 30px; }
table { width: 100%; border-collapse: collapse; margin-top: 15px; }
th, td { text-align: left; padding: 10px; border-bottom: 1px solid #ddd; }
th { background-color: #fdfaf5; width: 150px; }
.total { font-weight: bold; font-size: 1.2em; }
.total td { color: #c5a572; }
ul { padding-left: 20px; margin: 0; }
.footer { margin-top: 30px; text-align: center; font-size: 12px; color: #aaa; }
</style>
</head>
<body>
<div class="container">
<h1>Új mentorálás megrendelés</h1>
<p>Új megrendelés érkezett a Pragerfoto weboldalról. Az alábbiakban találod a részleteket.</p>
<h2>Megrendelő adatai</h2>
<table>`)
	row(&b, "Név", esc(d.CustomerName))
	row(&b, "Email", esc(d.CustomerEmail))
	row(&b, "Telefon", esc(orDefault(d.CustomerPhone, notProvided)))
	b.WriteString(`</table>
<h2>Számlázási adatok</h2>
<table>`)
	row(&b, "Név", esc(d.BillingName))
	row(&b, "Cím", esc(d.BillingZip+" "+d.BillingCity+", "+d.BillingAddress))
	row(&b, "Adószám", esc(orDefault(d.BillingTaxNumber, notProvided)))
	b.WriteString(`</table>
<h2>Rendelés részletei</h2>
<table>`)
	row(&b, "Résztvevők", itoa(d.ParticipantCount)+" fő")
	row(&b, "Tervezett időpont", esc(d.PreferredMonth))
	row(&b, "Kiválasztott szolgáltatások", "<ul>"+services.String()+"</ul>")
	row(&b, "Megjegyzés", esc(orDefault(d.Notes, "Nincs")))
	b.WriteString(`</table>
<h2>Ár összesítő</h2>
<table>`)
	row(&b, "Részösszeg", FormatHUF(q.BaseTotal))
	if len(q.Discounts) > 0 {
		row(&b, "Kedvezmények", "<ul>"+discounts.String()+"</ul>")
	}
	b.WriteString(`<tr class="total"><th>Fizetendő végösszeg</th><td>` + FormatHUF(q.FinalTotal) + `</td></tr>
</table>
<hr style="border: 0; border-top: 1px solid #eee; margin: 20px 0;">
<p>Feliratkozás hírlevélre: <strong>` + yesNo(d.NewsletterSignup) + `</strong></p>
<div class="footer">
<p>Ez egy automatikusan generált e-mail. Hivatkozás: ` + esc(o.Reference) + `</p>
</div>
</div>
</body>
</html>`)
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString("<tr><th>" + label + "</th><td>" + value + "</td></tr>")
}

func yesNo(v bool) string {
	if v {
		return "Igen"
	}
	return "Nem"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
