// Package booking drives the reservation wizard of an ally:
// Selecting -> Details -> Payment -> Submitted.
//
// The reservation is created remotely before the WhatsApp handoff is opened,
// so a reservation record exists even when the visitor abandons the chat.
package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	ierr "frailes/internal/errors"
	"frailes/internal/model"
	"frailes/internal/repository/helper"

	"github.com/rs/zerolog/log"
)

type Step int

const (
	StepSelecting Step = iota
	StepDetails
	StepPayment
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepSelecting:
		return "selecting"
	case StepDetails:
		return "details"
	case StepPayment:
		return "payment"
	case StepSubmitted:
		return "submitted"
	}
	return "unknown"
}

type Reserver interface {
	Create(ctx context.Context, reservation model.Reservation) (string, error)
}

// Handoff opens the external messaging link. It is fire-and-forget.
type Handoff interface {
	Open(ctx context.Context, url string) error
}

type HandoffFunc func(ctx context.Context, url string) error

func (f HandoffFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

type Customer struct {
	Name string `validate:"required"`
	Date string `validate:"required"`
	Time string `validate:"required"`
}

type Receipt struct {
	ReservationId string
	Reservation   model.Reservation
	HandoffURL    string
}

type Flow struct {
	ally     model.Ally
	language string
	reserver Reserver
	handoff  Handoff

	mu       sync.Mutex
	step     Step
	selected map[string]bool
	customer Customer
	receipt  *Receipt
}

// New opens the wizard on a copy of ally as it is known locally. Prices are
// taken from this copy, never re-read.
func New(ally model.Ally, reserver Reserver, handoff Handoff, language string) *Flow {
	return &Flow{
		ally:     ally,
		language: language,
		reserver: reserver,
		handoff:  handoff,
		step:     StepSelecting,
		selected: make(map[string]bool),
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Ally() model.Ally {
	return f.ally
}

// BankDetails are the transfer instructions shown on the payment step.
func (f *Flow) BankDetails() string {
	return f.ally.BankDetails
}

// Toggle selects or unselects an item of the ally.
func (f *Flow) Toggle(itemId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepSelecting {
		return fmt.Errorf("toggle item: %w, step: %s", ierr.ErrStep, f.step)
	}
	if _, ok := f.item(itemId); !ok {
		return fmt.Errorf("toggle item: %w, id: %s", ierr.ErrUnknownItem, itemId)
	}

	if f.selected[itemId] {
		delete(f.selected, itemId)
	} else {
		f.selected[itemId] = true
	}
	return nil
}

// Selected returns the selected items in the order the ally lists them.
func (f *Flow) Selected() []model.AllyItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedItems()
}

func (f *Flow) Total() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return total(f.selectedItems())
}

func (f *Flow) SetCustomer(c Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDetails {
		return fmt.Errorf("set customer: %w, step: %s", ierr.ErrStep, f.step)
	}
	f.customer = Customer{
		Name: strings.TrimSpace(c.Name),
		Date: strings.TrimSpace(c.Date),
		Time: strings.TrimSpace(c.Time),
	}
	return nil
}

// Next moves one step forward if the current step is complete. Submitting
// is done with Submit.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepSelecting:
		if total(f.selectedItems()) <= 0 {
			return fmt.Errorf("continue to details: %w, nothing selected", ierr.ErrValidation)
		}
		f.step = StepDetails
	case StepDetails:
		if err := helper.Validate(f.customer); err != nil {
			return fmt.Errorf("continue to payment: %w", err)
		}
		f.step = StepPayment
	default:
		return fmt.Errorf("next: %w, step: %s", ierr.ErrStep, f.step)
	}
	return nil
}

func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepDetails:
		f.step = StepSelecting
	case StepPayment:
		f.step = StepDetails
	default:
		return fmt.Errorf("back: %w, step: %s", ierr.ErrStep, f.step)
	}
	return nil
}

// Submit creates the reservation and then opens the handoff. When the create
// fails nothing is handed off and the flow stays on the payment step.
func (f *Flow) Submit(ctx context.Context) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return Receipt{}, fmt.Errorf("submit: %w, step: %s", ierr.ErrStep, f.step)
	}

	items := f.selectedItems()
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}

	res := model.Reservation{
		AllyId:       f.ally.Id,
		AllyName:     f.ally.Name,
		CustomerName: f.customer.Name,
		Date:         f.customer.Date,
		Time:         f.customer.Time,
		Total:        total(items),
		Items:        names,
		Status:       model.ReservationPending,
	}

	id, err := f.reserver.Create(ctx, res)
	if err != nil {
		log.Error().Err(err).Msgf("booking: failed to create the reservation for ally %s", f.ally.Id)
		return Receipt{}, fmt.Errorf("submit: %w", err)
	}

	receipt := Receipt{ReservationId: id, Reservation: res}
	if phone := PhoneDigits(f.ally.Whatsapp); phone != "" {
		receipt.HandoffURL = HandoffURL(phone, Message(f.language, res, items))
		if err := f.handoff.Open(ctx, receipt.HandoffURL); err != nil {
			log.Warn().Err(err).Msgf("booking: handoff of reservation %s failed", id)
		}
	} else {
		log.Warn().Msgf("booking: ally %s has no whatsapp contact, reservation %s saved without handoff", f.ally.Id, id)
	}

	f.step = StepSubmitted
	f.receipt = &receipt
	return receipt, nil
}

// Receipt returns the result of a successful Submit.
func (f *Flow) Receipt() (Receipt, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receipt == nil {
		return Receipt{}, false
	}
	return *f.receipt, true
}

// selectedItems must be called with mu held.
func (f *Flow) selectedItems() []model.AllyItem {
	items := make([]model.AllyItem, 0, len(f.selected))
	for _, item := range f.ally.Items {
		if f.selected[item.Id] {
			items = append(items, item)
		}
	}
	return items
}

func (f *Flow) item(id string) (model.AllyItem, bool) {
	for _, item := range f.ally.Items {
		if item.Id == id {
			return item, true
		}
	}
	return model.AllyItem{}, false
}

// total sums prices in cents to keep the usual two decimals exact.
func total(items []model.AllyItem) float64 {
	var cents int64
	for _, item := range items {
		cents += int64(math.Round(ParsePrice(item.Price) * 100))
	}
	return float64(cents) / 100
}
