package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
)

const sampleDataset = `
events:
  - id: "1"
    title: Kermes
    date: "2024-05-25"
    time: "14:00"
    location: Dernek Merkezi
projects:
  - id: p1
    title: Okul Onarımı
    status: active
    tasks:
      - id: t1
        title: Teklif topla
        due_date: "2024-05-25"
      - id: t2
        title: Tarihsiz iş
cases:
  - id: c1
    title: Kira Davası
    court: İstanbul 3. Asliye
    hearings:
      - id: h1
        date: "2024-05-26"
      - id: h2
        date: "2024-07-01"
payments:
  - id: pay1
    person_name: Ayşe Yılmaz
    purpose: aid_payment
    amount: "500,00"
    currency: TRY
    date: "2024-06-01"
inkind:
  - id: k1
    person_id: per1
    product_id: rice
    quantity: "10"
    unit: kg
    date: "2024-06-02"
people:
  - id: per1
    name: Mehmet Kaya
    nationality: TR
    lat: 41.01
    lng: 28.97
    aid_received: [food]
products:
  - id: rice
    name: Pirinç
    unit: kg
records:
  - id: r1
    date: "2024-06-03"
    direction: income
    amount: "1250.75"
messages:
  - id: m1
    sent_at: "2024-06-04T09:30:00Z"
    channel: sms
    audience: donors
    recipient_count: 120
`

func TestParseDataset(t *testing.T) {
	d, err := ParseDataset(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(d.Events) != 1 || d.Events[0].Location != "Dernek Merkezi" {
		t.Errorf("events = %+v", d.Events)
	}
	if len(d.Projects) != 1 || len(d.Projects[0].Tasks) != 2 || d.Projects[0].Tasks[1].DueDate != "" {
		t.Errorf("projects = %+v", d.Projects)
	}
	if len(d.Cases[0].Hearings) != 2 {
		t.Errorf("hearings = %+v", d.Cases[0].Hearings)
	}
	if !d.Payments[0].Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("payment amount = %s", d.Payments[0].Amount)
	}
	if !d.InKind[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("quantity = %s", d.InKind[0].Quantity)
	}
	if !d.People[0].HasCoordinates() || *d.People[0].Latitude != 41.01 {
		t.Errorf("person = %+v", d.People[0])
	}
	if d.Records[0].Direction != core.DirectionIncome {
		t.Errorf("direction = %q", d.Records[0].Direction)
	}
	if d.Messages[0].RecipientCount != 120 {
		t.Errorf("recipients = %d", d.Messages[0].RecipientCount)
	}

	want := []string{
		CollectionEvents, CollectionProjects, CollectionCases, CollectionPayments,
		CollectionInKind, CollectionPeople, CollectionProducts, CollectionRecords, CollectionMessages,
	}
	got := d.Collections()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("collections = %v", got)
	}
}

func TestParseDatasetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"negative amount", "payments:\n  - id: x\n    amount: \"-5\"\n", core.ErrInvalidAmount},
		{"bad quantity", "inkind:\n  - id: x\n    quantity: lots\n", core.ErrInvalidQuantity},
		{"bad direction", "records:\n  - id: x\n    direction: sideways\n    amount: \"1\"\n", core.ErrInvalidDirection},
		{"missing id", "events:\n  - title: no id\n", core.ErrMissingID},
		{"negative recipients", "messages:\n  - id: m\n    recipient_count: -1\n", core.ErrInvalidCount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDataset(strings.NewReader(tc.yaml))
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseDatasetEmpty(t *testing.T) {
	d, err := ParseDataset(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if len(d.Collections()) != 0 {
		t.Errorf("expected no collections, got %v", d.Collections())
	}
}

func TestLoadSampleDataset(t *testing.T) {
	d, err := LoadDataset("../../data/seed.yaml")
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if got := len(d.Collections()); got != 9 {
		t.Errorf("sample dataset fills %d collections, want 9", got)
	}
	if d.People[2].Latitude != nil {
		t.Errorf("person without coordinates got latitude %v", *d.People[2].Latitude)
	}
}
