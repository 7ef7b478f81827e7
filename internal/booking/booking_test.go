package booking

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	ierr "frailes/internal/errors"
	"frailes/internal/model"

	"github.com/go-playground/assert/v2"
)

type recorder struct {
	calls        []string
	createErr    error
	reservations []model.Reservation
	urls         []string
}

func (r *recorder) Create(ctx context.Context, res model.Reservation) (string, error) {
	r.calls = append(r.calls, "create")
	if r.createErr != nil {
		return "", r.createErr
	}
	r.reservations = append(r.reservations, res)
	return "res-1", nil
}

func (r *recorder) Open(ctx context.Context, link string) error {
	r.calls = append(r.calls, "handoff")
	r.urls = append(r.urls, link)
	return nil
}

func testAlly() model.Ally {
	return model.Ally{
		Id:          "ally-1",
		Name:        "Cabañas del Mar",
		Type:        model.AllyTypeHospedaje,
		Whatsapp:    "+593 99 123 4567",
		BankDetails: "Banco Pichincha 2200",
		Items: []model.AllyItem{
			{Id: "a", Name: "Item A", Price: "$10"},
			{Id: "b", Name: "Item B", Price: "$15"},
			{Id: "c", Name: "Item C", Price: "consultar"},
		},
	}
}

func toPayment(t *testing.T, f *Flow, ids ...string) {
	t.Helper()
	for _, id := range ids {
		assert.Equal(t, f.Toggle(id), nil)
	}
	assert.Equal(t, f.Next(), nil)
	assert.Equal(t, f.SetCustomer(Customer{Name: " Ana ", Date: "2024-08-01", Time: "19:00"}), nil)
	assert.Equal(t, f.Next(), nil)
	assert.Equal(t, f.Step(), StepPayment)
}

func TestSubmitCreatesBeforeHandoff(t *testing.T) {
	r := &recorder{}
	f := New(testAlly(), r, r, "es")

	// selection order does not matter, the ally order does
	toPayment(t, f, "b", "a")
	assert.Equal(t, f.Total(), 25.0)
	assert.Equal(t, f.BankDetails(), "Banco Pichincha 2200")

	receipt, err := f.Submit(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, r.calls, []string{"create", "handoff"})
	assert.Equal(t, f.Step(), StepSubmitted)

	res := r.reservations[0]
	assert.Equal(t, res.Total, 25.0)
	assert.Equal(t, res.Items, []string{"Item A", "Item B"})
	assert.Equal(t, res.Status, model.ReservationPending)
	assert.Equal(t, res.CustomerName, "Ana")
	assert.Equal(t, res.AllyName, "Cabañas del Mar")
	assert.Equal(t, receipt.ReservationId, "res-1")

	assert.Equal(t, strings.HasPrefix(r.urls[0], "https://wa.me/593991234567?text="), true)
	link, err := url.Parse(r.urls[0])
	assert.Equal(t, err, nil)
	text := link.Query().Get("text")
	assert.Equal(t, strings.Contains(text, "Item A ($10.00)"), true)
	assert.Equal(t, strings.Contains(text, "Total: $25.00"), true)
	assert.Equal(t, strings.Contains(text, "Hora: 19:00"), true)
}

func TestSubmitFailureSkipsHandoff(t *testing.T) {
	r := &recorder{createErr: errors.New("unavailable")}
	f := New(testAlly(), r, r, "es")
	toPayment(t, f, "a")

	_, err := f.Submit(context.Background())
	assert.NotEqual(t, err, nil)
	assert.Equal(t, r.calls, []string{"create"})
	assert.Equal(t, f.Step(), StepPayment)

	_, ok := f.Receipt()
	assert.Equal(t, ok, false)

	// a retry goes through once the store recovers
	r.createErr = nil
	_, err = f.Submit(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, r.calls, []string{"create", "create", "handoff"})
}

func TestSubmitWithoutWhatsapp(t *testing.T) {
	r := &recorder{}
	ally := testAlly()
	ally.Whatsapp = ""
	f := New(ally, r, r, "en")
	toPayment(t, f, "a")

	receipt, err := f.Submit(context.Background())
	assert.Equal(t, err, nil)
	assert.Equal(t, r.calls, []string{"create"})
	assert.Equal(t, receipt.HandoffURL, "")
	assert.Equal(t, f.Step(), StepSubmitted)
}

func TestNextRequiresPositiveTotal(t *testing.T) {
	f := New(testAlly(), &recorder{}, &recorder{}, "es")
	assert.Equal(t, errors.Is(f.Next(), ierr.ErrValidation), true)

	// an unpriced item alone is not enough
	assert.Equal(t, f.Toggle("c"), nil)
	assert.Equal(t, errors.Is(f.Next(), ierr.ErrValidation), true)

	assert.Equal(t, f.Toggle("a"), nil)
	assert.Equal(t, f.Next(), nil)
	assert.Equal(t, f.Step(), StepDetails)
}

func TestDetailsRequireCustomer(t *testing.T) {
	f := New(testAlly(), &recorder{}, &recorder{}, "es")
	assert.Equal(t, f.Toggle("a"), nil)
	assert.Equal(t, f.Next(), nil)

	assert.Equal(t, f.SetCustomer(Customer{Name: "  ", Date: "2024-08-01", Time: "10:00"}), nil)
	assert.Equal(t, errors.Is(f.Next(), ierr.ErrValidation), true)
	assert.Equal(t, f.Step(), StepDetails)
}

func TestToggleAndBack(t *testing.T) {
	f := New(testAlly(), &recorder{}, &recorder{}, "es")
	assert.Equal(t, errors.Is(f.Toggle("missing"), ierr.ErrUnknownItem), true)

	assert.Equal(t, f.Toggle("a"), nil)
	assert.Equal(t, f.Toggle("b"), nil)
	assert.Equal(t, f.Toggle("a"), nil)
	assert.Equal(t, len(f.Selected()), 1)
	assert.Equal(t, f.Selected()[0].Id, "b")

	assert.Equal(t, errors.Is(f.Back(), ierr.ErrStep), true)
	assert.Equal(t, f.Next(), nil)
	assert.Equal(t, errors.Is(f.Toggle("a"), ierr.ErrStep), true)
	assert.Equal(t, f.Back(), nil)
	assert.Equal(t, f.Step(), StepSelecting)

	_, err := f.Submit(context.Background())
	assert.Equal(t, errors.Is(err, ierr.ErrStep), true)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]float64{
		"$10.00":    10,
		"$15":       15,
		"12,50 USD": 12.5,
		"$1,200.50": 1200.5,
		"":          0,
		"consultar": 0,
		"1.2.3":     0,
	}
	for in, want := range cases {
		assert.Equal(t, ParsePrice(in), want)
	}
}

func TestHandoffURLEncodesSpaces(t *testing.T) {
	link := HandoffURL("+593 99", "a b+c\nd")
	assert.Equal(t, link, "https://wa.me/59399?text=a%20b%2Bc%0Ad")
}
