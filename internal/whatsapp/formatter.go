// Package whatsapp turns a cart into the pre-filled message sent to the
// store owner through a wa.me deep link.
package whatsapp

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vendicraft/internal/cart"
	"vendicraft/internal/models"
)

const deepLinkBase = "https://wa.me/"

// Formatter renders order messages. The zero value is not usable; build
// one with NewFormatter.
type Formatter struct {
	storeName string
	currency  string
	tag       language.Tag
}

// NewFormatter returns a Formatter grouping numbers the way locale does
// (a BCP 47 tag such as "fr" or "en-US"). Unparseable tags fall back to
// French, the store's default.
func NewFormatter(storeName, locale, currency string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	return &Formatter{storeName: storeName, currency: currency, tag: tag}
}

// Message returns the plain-text order summary. Lines are rendered in the
// order given. An empty cart still yields the customer block and a zero
// total.
func (f *Formatter) Message(lines []cart.Line, customer models.CustomerInfo, total decimal.Decimal) string {
	p := message.NewPrinter(f.tag)
	var b strings.Builder

	fmt.Fprintf(&b, "🛍️ *Nouvelle commande passée sur %s*\n\n", f.storeName)

	b.WriteString("👤 *Informations client:*\n")
	fmt.Fprintf(&b, "Nom: %s\n", customer.Name)
	fmt.Fprintf(&b, "Email: %s\n", customer.Email)
	fmt.Fprintf(&b, "Téléphone: %s\n", customer.Phone)
	fmt.Fprintf(&b, "Adresse: %s\n\n", customer.Address)

	b.WriteString("📦 *Détails de la commande:*\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "\n• %s\n", l.Product.Name)
		if l.SelectedSize != "" {
			fmt.Fprintf(&b, "  Taille: %s\n", l.SelectedSize)
		}
		fmt.Fprintf(&b, "  Quantité: %d\n", l.Quantity)
		fmt.Fprintf(&b, "  Prix unitaire: %s\n", f.amount(p, decimal.NewFromInt(l.Product.Price)))
		fmt.Fprintf(&b, "  Total: %s\n", f.amount(p, l.Subtotal()))
		fmt.Fprintf(&b, "  Image: %s\n", l.Product.ImageURL)
	}

	fmt.Fprintf(&b, "\n💰 *Total de la commande: %s*\n\n", f.amount(p, total))
	b.WriteString("Merci pour votre commande!")
	return b.String()
}

// Encode returns Message percent-encoded for use as a URL query value.
func (f *Formatter) Encode(lines []cart.Line, customer models.CustomerInfo, total decimal.Decimal) string {
	return Escape(f.Message(lines, customer, total))
}

// amount formats d with locale grouping and the currency suffix. Values
// outside the int64 range are printed without grouping.
func (f *Formatter) amount(p *message.Printer, d decimal.Decimal) string {
	if d.IsInteger() &&
		d.GreaterThanOrEqual(decimal.NewFromInt(math.MinInt64)) &&
		d.LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
		return p.Sprintf("%d %s", d.IntPart(), f.currency)
	}
	return d.String() + " " + f.currency
}

// componentUnescaper restores the characters a URI component may carry
// verbatim, and writes spaces as %20 rather than '+', which wa.me would
// show as is.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Escape percent-encodes s as a single URI component. Only letters,
// digits and -_.!~*'() are left as they are.
func Escape(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// DeepLink builds the wa.me URL for number with the already-encoded text.
// The number is reduced to its digits, as wa.me expects.
func DeepLink(number, encodedText string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return deepLinkBase + digits + "?text=" + encodedText
}
