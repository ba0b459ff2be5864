// Package source defines the fetch contracts the aggregation layer consumes.
//
// Every fetcher returns a complete collection or an error; there are no
// partial results.
package source

import (
	"context"

	"dernek/internal/core"
)

// Collection names, used in change notifications and error messages.
const (
	CollectionEvents   = "events"
	CollectionProjects = "projects"
	CollectionCases    = "cases"
	CollectionPayments = "payments"
	CollectionInKind   = "inkind"
	CollectionPeople   = "people"
	CollectionProducts = "products"
	CollectionRecords  = "records"
	CollectionMessages = "messages"
)

// Ports for the stored collections.
type (
	EventFetcher interface {
		FetchEvents(ctx context.Context) ([]core.Event, error)
	}

	// ProjectFetcher returns projects with their tasks embedded.
	ProjectFetcher interface {
		FetchProjects(ctx context.Context) ([]core.Project, error)
	}

	// CaseFetcher returns cases with their hearings embedded.
	CaseFetcher interface {
		FetchCases(ctx context.Context) ([]core.Case, error)
	}

	PaymentFetcher interface {
		FetchCashPayments(ctx context.Context) ([]core.CashPayment, error)
	}

	InKindFetcher interface {
		FetchInKindTransactions(ctx context.Context) ([]core.InKindTransaction, error)
	}

	PersonFetcher interface {
		FetchPeople(ctx context.Context) ([]core.Person, error)
	}

	ProductFetcher interface {
		FetchProducts(ctx context.Context) ([]core.Product, error)
	}

	FinanceFetcher interface {
		FetchFinancialRecords(ctx context.Context) ([]core.FinancialRecord, error)
	}

	MessageFetcher interface {
		FetchMessages(ctx context.Context) ([]core.Message, error)
	}

	// Store is the full read side.
	Store interface {
		EventFetcher
		ProjectFetcher
		CaseFetcher
		PaymentFetcher
		InKindFetcher
		PersonFetcher
		ProductFetcher
		FinanceFetcher
		MessageFetcher
	}

	// Writer upserts records by ID. Used by seeding and import.
	Writer interface {
		SaveEvents(ctx context.Context, events []core.Event) error
		SaveProjects(ctx context.Context, projects []core.Project) error
		SaveCases(ctx context.Context, cases []core.Case) error
		SaveCashPayments(ctx context.Context, payments []core.CashPayment) error
		SaveInKindTransactions(ctx context.Context, txs []core.InKindTransaction) error
		SavePeople(ctx context.Context, people []core.Person) error
		SaveProducts(ctx context.Context, products []core.Product) error
		SaveFinancialRecords(ctx context.Context, records []core.FinancialRecord) error
		SaveMessages(ctx context.Context, messages []core.Message) error
	}

	// ReadWriter is implemented by every backend.
	ReadWriter interface {
		Store
		Writer
	}
)
