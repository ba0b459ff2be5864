package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Payment purposes. Only the aid-related ones are shown in the aid ledger.
const (
	PurposeAid         = "aid_payment"
	PurposeScholarship = "scholarship_payment"
	PurposeOrphan      = "orphan_support"
	PurposeResilience  = "resilience_support"
	PurposeSalary      = "salary"
	PurposeRent        = "rent"
)

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

type (
	Direction string

	// Event is a scheduled association event.
	Event struct {
		ID       string
		Title    string
		Date     string
		Time     string
		Location string
	}

	// Project carries its tasks embedded, as stored.
	Project struct {
		ID     string
		Title  string
		Status string
		Tasks  []Task
	}

	Task struct {
		ID      string
		Title   string
		DueDate string
		Status  string
	}

	// Case is a legal case with its hearings embedded.
	Case struct {
		ID       string
		Title    string
		Status   string
		Court    string
		Hearings []Hearing
	}

	Hearing struct {
		ID   string
		Date string
		Time string
		Note string
	}

	CashPayment struct {
		ID         string
		PersonName string
		Purpose    string
		Amount     decimal.Decimal
		Currency   string
		Date       string
	}

	InKindTransaction struct {
		ID        string
		PersonID  string
		ProductID string
		Quantity  decimal.Decimal
		Unit      string
		Date      string
	}

	Person struct {
		ID          string
		Name        string
		Nationality string
		Latitude    *float64
		Longitude   *float64
		AidReceived []string
	}

	Product struct {
		ID   string
		Name string
		Unit string
	}

	// FinancialRecord is one income or expense ledger row.
	FinancialRecord struct {
		ID        string
		Date      string
		Direction Direction
		Amount    decimal.Decimal
		Category  string
	}

	// Message is an outbound message log entry.
	Message struct {
		ID             string
		SentAt         string
		Channel        string
		Audience       string
		RecipientCount int
	}
)

var (
	ErrMissingID        = errors.New("missing id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidCount     = errors.New("invalid recipient count")
)

// IsAidPurpose reports whether a payment purpose belongs in the aid ledger.
func IsAidPurpose(purpose string) bool {
	switch purpose {
	case PurposeAid, PurposeScholarship, PurposeOrphan, PurposeResilience:
		return true
	default:
		return false
	}
}

// HasCoordinates reports whether the person can be placed on a map.
func (p Person) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	for _, t := range p.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return errors.New("task: " + ErrMissingID.Error())
		}
	}
	return nil
}

func (c Case) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrMissingID
	}
	for _, h := range c.Hearings {
		if strings.TrimSpace(h.ID) == "" {
			return errors.New("hearing: " + ErrMissingID.Error())
		}
	}
	return nil
}

func (p CashPayment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (t InKindTransaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if !t.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	return nil
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	return nil
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	return nil
}

func (r FinancialRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	switch r.Direction {
	case DirectionIncome, DirectionExpense:
	default:
		return ErrInvalidDirection
	}
	if r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrMissingID
	}
	if m.RecipientCount < 0 {
		return ErrInvalidCount
	}
	return nil
}
