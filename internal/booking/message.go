package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"frailes/internal/model"
)

const whatsappBaseURL = "https://wa.me/"

type labels struct {
	greeting string
	booking  string
	customer string
	date     string
	time     string
	order    string
	total    string
	foot     string
}

var messageLabels = map[string]labels{
	"es": {
		greeting: "¡Hola",
		booking:  "Me gustaría realizar una reserva:",
		customer: "Cliente",
		date:     "Fecha",
		time:     "Hora",
		order:    "Pedido",
		total:    "Total",
		foot:     "Escribo para confirmar disponibilidad y proceder con el pago.",
	},
	"en": {
		greeting: "Hello",
		booking:  "I would like to make a reservation:",
		customer: "Customer",
		date:     "Date",
		time:     "Time",
		order:    "Order",
		total:    "Total",
		foot:     "I am writing to confirm availability and proceed with payment.",
	},
}

// ParsePrice reads a display price such as "$10.00" or "12,50 USD".
// Anything unreadable counts as 0.
func ParsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune(',')
		}
	}

	clean := b.String()
	if strings.Contains(clean, ".") {
		clean = strings.ReplaceAll(clean, ",", "")
	} else {
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Message renders the booking message sent to the ally.
func Message(language string, res model.Reservation, items []model.AllyItem) string {
	l, ok := messageLabels[language]
	if !ok {
		l = messageLabels["es"]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s! 👋\n\n", l.greeting, res.AllyName)
	fmt.Fprintf(&b, "%s\n", l.booking)
	fmt.Fprintf(&b, "👤 %s: %s\n", l.customer, res.CustomerName)
	fmt.Fprintf(&b, "📅 %s: %s\n", l.date, res.Date)
	if res.Time != "" {
		fmt.Fprintf(&b, "🕒 %s: %s\n", l.time, res.Time)
	}
	fmt.Fprintf(&b, "\n📦 %s:\n", l.order)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s ($%.2f)\n", item.Name, ParsePrice(item.Price))
	}
	fmt.Fprintf(&b, "\n💰 %s: $%.2f\n\n", l.total, res.Total)
	b.WriteString(l.foot)
	return b.String()
}

// PhoneDigits keeps only the digits of a contact string.
func PhoneDigits(contact string) string {
	var b strings.Builder
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HandoffURL builds the WhatsApp deep link for a phone number and message.
func HandoffURL(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsappBaseURL + PhoneDigits(phone) + "?text=" + text
}
