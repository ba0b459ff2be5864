package stats

import (
	"strings"

	"github.com/shopspring/decimal"

	"dernek/internal/core"
	"dernek/internal/normalize"
)

// Input is the fetched snapshot a report is derived from.
type Input struct {
	People   []core.Person
	Projects []core.Project
	Cases    []core.Case
	Records  []core.FinancialRecord
	Messages []core.Message
	InKind   []core.InKindTransaction
	Products []core.Product
}

// Report is the reports screen view model.
type Report struct {
	CasesByStatus       []Bucket    `json:"casesByStatus"`
	ProjectsByStatus    []Bucket    `json:"projectsByStatus"`
	PeopleByNationality []Bucket    `json:"peopleByNationality"`
	ReachByAudience     []Bucket    `json:"reachByAudience"`
	MessagesByChannel   []Bucket    `json:"messagesByChannel"`
	InKindByProduct     []Bucket    `json:"inKindByProduct"`
	IncomeExpense       MonthSeries `json:"incomeExpense"`
	MessagesPerMonth    MonthSeries `json:"messagesPerMonth"`
	AidRecipients       int         `json:"aidRecipients"`
	TotalReach          int         `json:"totalReach"`
}

// BuildReport derives every report series from one snapshot.
func BuildReport(in Input) Report {
	products := normalize.ProductNames(in.Products)

	reach := SumIntBy(in.Messages,
		func(m core.Message) string { return m.Audience },
		func(m core.Message) int { return m.RecipientCount },
	)

	aid := 0
	for _, p := range in.People {
		if len(p.AidReceived) > 0 {
			aid++
		}
	}

	return Report{
		CasesByStatus:       CountBy(in.Cases, func(c core.Case) string { return c.Status }),
		ProjectsByStatus:    CountBy(in.Projects, func(p core.Project) string { return p.Status }),
		PeopleByNationality: CountBy(in.People, func(p core.Person) string { return p.Nationality }),
		ReachByAudience:     reach,
		MessagesByChannel:   CountBy(in.Messages, func(m core.Message) string { return m.Channel }),
		InKindByProduct: SumBy(in.InKind,
			func(t core.InKindTransaction) string {
				return productUnitKey(products.Resolve(t.ProductID, normalize.UnknownProduct), t.Unit)
			},
			func(t core.InKindTransaction) decimal.Decimal { return t.Quantity },
		),
		IncomeExpense: IncomeExpense(in.Records, DefaultWindow),
		MessagesPerMonth: MonthBuckets(in.Messages,
			func(m core.Message) (core.Date, bool) { return core.ParseDate(m.SentAt) },
			func(m core.Message) string { return m.Channel },
			func(core.Message) decimal.Decimal { return decimal.NewFromInt(1) },
			DefaultWindow,
		),
		AidRecipients: aid,
		TotalReach:    int(Total(reach).IntPart()),
	}
}

// productUnitKey keeps quantities of different units in separate buckets.
func productUnitKey(name, unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return name
	}
	return name + " (" + unit + ")"
}
