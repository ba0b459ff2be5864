package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"dernek/internal/core"
)

// Dataset is a full set of collections, as read from a seed or import file.
type Dataset struct {
	Events   []core.Event
	Projects []core.Project
	Cases    []core.Case
	Payments []core.CashPayment
	InKind   []core.InKindTransaction
	People   []core.Person
	Products []core.Product
	Records  []core.FinancialRecord
	Messages []core.Message
}

// Collections lists the non-empty collections of d.
func (d Dataset) Collections() []string {
	var out []string
	add := func(n int, name string) {
		if n > 0 {
			out = append(out, name)
		}
	}
	add(len(d.Events), CollectionEvents)
	add(len(d.Projects), CollectionProjects)
	add(len(d.Cases), CollectionCases)
	add(len(d.Payments), CollectionPayments)
	add(len(d.InKind), CollectionInKind)
	add(len(d.People), CollectionPeople)
	add(len(d.Products), CollectionProducts)
	add(len(d.Records), CollectionRecords)
	add(len(d.Messages), CollectionMessages)
	return out
}

// Write saves every collection of d through w.
func (d Dataset) Write(ctx context.Context, w Writer) error {
	steps := []struct {
		name string
		save func() error
	}{
		{CollectionEvents, func() error { return w.SaveEvents(ctx, d.Events) }},
		{CollectionProjects, func() error { return w.SaveProjects(ctx, d.Projects) }},
		{CollectionCases, func() error { return w.SaveCases(ctx, d.Cases) }},
		{CollectionPayments, func() error { return w.SaveCashPayments(ctx, d.Payments) }},
		{CollectionInKind, func() error { return w.SaveInKindTransactions(ctx, d.InKind) }},
		{CollectionPeople, func() error { return w.SavePeople(ctx, d.People) }},
		{CollectionProducts, func() error { return w.SaveProducts(ctx, d.Products) }},
		{CollectionRecords, func() error { return w.SaveFinancialRecords(ctx, d.Records) }},
		{CollectionMessages, func() error { return w.SaveMessages(ctx, d.Messages) }},
	}
	for _, s := range steps {
		if err := s.save(); err != nil {
			return fmt.Errorf("save %s: %w", s.name, err)
		}
	}
	return nil
}

// seed mirrors the YAML file layout. Amounts are strings so both "12.50" and
// "12,50" parse.
type seed struct {
	Events []struct {
		ID       string `yaml:"id"`
		Title    string `yaml:"title"`
		Date     string `yaml:"date"`
		Time     string `yaml:"time"`
		Location string `yaml:"location"`
	} `yaml:"events"`
	Projects []struct {
		ID     string `yaml:"id"`
		Title  string `yaml:"title"`
		Status string `yaml:"status"`
		Tasks  []struct {
			ID      string `yaml:"id"`
			Title   string `yaml:"title"`
			DueDate string `yaml:"due_date"`
			Status  string `yaml:"status"`
		} `yaml:"tasks"`
	} `yaml:"projects"`
	Cases []struct {
		ID       string `yaml:"id"`
		Title    string `yaml:"title"`
		Status   string `yaml:"status"`
		Court    string `yaml:"court"`
		Hearings []struct {
			ID   string `yaml:"id"`
			Date string `yaml:"date"`
			Time string `yaml:"time"`
			Note string `yaml:"note"`
		} `yaml:"hearings"`
	} `yaml:"cases"`
	Payments []struct {
		ID         string `yaml:"id"`
		PersonName string `yaml:"person_name"`
		Purpose    string `yaml:"purpose"`
		Amount     string `yaml:"amount"`
		Currency   string `yaml:"currency"`
		Date       string `yaml:"date"`
	} `yaml:"payments"`
	InKind []struct {
		ID        string `yaml:"id"`
		PersonID  string `yaml:"person_id"`
		ProductID string `yaml:"product_id"`
		Quantity  string `yaml:"quantity"`
		Unit      string `yaml:"unit"`
		Date      string `yaml:"date"`
	} `yaml:"inkind"`
	People []struct {
		ID          string   `yaml:"id"`
		Name        string   `yaml:"name"`
		Nationality string   `yaml:"nationality"`
		Latitude    *float64 `yaml:"lat"`
		Longitude   *float64 `yaml:"lng"`
		AidReceived []string `yaml:"aid_received"`
	} `yaml:"people"`
	Products []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		Unit string `yaml:"unit"`
	} `yaml:"products"`
	Records []struct {
		ID        string `yaml:"id"`
		Date      string `yaml:"date"`
		Direction string `yaml:"direction"`
		Amount    string `yaml:"amount"`
		Category  string `yaml:"category"`
	} `yaml:"records"`
	Messages []struct {
		ID             string `yaml:"id"`
		SentAt         string `yaml:"sent_at"`
		Channel        string `yaml:"channel"`
		Audience       string `yaml:"audience"`
		RecipientCount int    `yaml:"recipient_count"`
	} `yaml:"messages"`
}

// LoadDataset reads a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ParseDataset(f)
}

// ParseDataset decodes and validates a YAML dataset. The first invalid
// record aborts the whole file.
func ParseDataset(r io.Reader) (Dataset, error) {
	var s seed
	if err := yaml.NewDecoder(r).Decode(&s); err != nil && err != io.EOF {
		return Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}

	var d Dataset
	for _, e := range s.Events {
		d.Events = append(d.Events, core.Event{ID: e.ID, Title: e.Title, Date: e.Date, Time: e.Time, Location: e.Location})
	}
	for _, p := range s.Projects {
		proj := core.Project{ID: p.ID, Title: p.Title, Status: p.Status}
		for _, t := range p.Tasks {
			proj.Tasks = append(proj.Tasks, core.Task{ID: t.ID, Title: t.Title, DueDate: t.DueDate, Status: t.Status})
		}
		d.Projects = append(d.Projects, proj)
	}
	for _, c := range s.Cases {
		cs := core.Case{ID: c.ID, Title: c.Title, Status: c.Status, Court: c.Court}
		for _, h := range c.Hearings {
			cs.Hearings = append(cs.Hearings, core.Hearing{ID: h.ID, Date: h.Date, Time: h.Time, Note: h.Note})
		}
		d.Cases = append(d.Cases, cs)
	}
	for _, p := range s.Payments {
		amount, err := core.ParseAmount(p.Amount)
		if err != nil {
			return Dataset{}, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		d.Payments = append(d.Payments, core.CashPayment{
			ID: p.ID, PersonName: p.PersonName, Purpose: p.Purpose,
			Amount: amount, Currency: p.Currency, Date: p.Date,
		})
	}
	for _, t := range s.InKind {
		q, err := parseQuantity(t.Quantity)
		if err != nil {
			return Dataset{}, fmt.Errorf("in-kind %s: %w", t.ID, err)
		}
		d.InKind = append(d.InKind, core.InKindTransaction{
			ID: t.ID, PersonID: t.PersonID, ProductID: t.ProductID,
			Quantity: q, Unit: t.Unit, Date: t.Date,
		})
	}
	for _, p := range s.People {
		d.People = append(d.People, core.Person{
			ID: p.ID, Name: p.Name, Nationality: p.Nationality,
			Latitude: p.Latitude, Longitude: p.Longitude, AidReceived: p.AidReceived,
		})
	}
	for _, p := range s.Products {
		d.Products = append(d.Products, core.Product{ID: p.ID, Name: p.Name, Unit: p.Unit})
	}
	for _, r := range s.Records {
		amount, err := core.ParseAmount(r.Amount)
		if err != nil {
			return Dataset{}, fmt.Errorf("record %s: %w", r.ID, err)
		}
		d.Records = append(d.Records, core.FinancialRecord{
			ID: r.ID, Date: r.Date, Direction: core.Direction(r.Direction),
			Amount: amount, Category: r.Category,
		})
	}
	for _, m := range s.Messages {
		d.Messages = append(d.Messages, core.Message{
			ID: m.ID, SentAt: m.SentAt, Channel: m.Channel,
			Audience: m.Audience, RecipientCount: m.RecipientCount,
		})
	}

	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// Validate checks every record of d.
func (d Dataset) Validate() error {
	type validator interface{ Validate() error }
	check := func(name string, id string, v validator) error {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s %q: %w", name, id, err)
		}
		return nil
	}
	for _, v := range d.Events {
		if err := check(CollectionEvents, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Projects {
		if err := check(CollectionProjects, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Cases {
		if err := check(CollectionCases, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Payments {
		if err := check(CollectionPayments, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.InKind {
		if err := check(CollectionInKind, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.People {
		if err := check(CollectionPeople, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Products {
		if err := check(CollectionProducts, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Records {
		if err := check(CollectionRecords, v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range d.Messages {
		if err := check(CollectionMessages, v.ID, v); err != nil {
			return err
		}
	}
	return nil
}

// parseQuantity accepts the same notations as amounts.
func parseQuantity(s string) (decimal.Decimal, error) {
	q, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Zero, core.ErrInvalidQuantity
	}
	return q, nil
}
