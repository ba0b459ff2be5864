// Package storage persists the association's collections in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dernek/internal/core"
	"dernek/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ source.ReadWriter = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens dbPath, creating its directory, and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) FetchEvents(ctx context.Context) ([]core.Event, error) {
	return queryAll(ctx, r.db,
		`SELECT id, title, date, time, location FROM events ORDER BY rowid`,
		func(rows *sql.Rows) (core.Event, error) {
			var e core.Event
			err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.Location)
			return e, err
		})
}

func (r *SQLiteRepository) FetchProjects(ctx context.Context) ([]core.Project, error) {
	projects, err := queryAll(ctx, r.db,
		`SELECT id, title, status FROM projects ORDER BY rowid`,
		func(rows *sql.Rows) (core.Project, error) {
			var p core.Project
			err := rows.Scan(&p.ID, &p.Title, &p.Status)
			return p, err
		})
	if err != nil {
		return nil, err
	}

	type row struct {
		projectID string
		task      core.Task
	}
	tasks, err := queryAll(ctx, r.db,
		`SELECT project_id, id, title, due_date, status FROM tasks ORDER BY project_id, position`,
		func(rows *sql.Rows) (row, error) {
			var t row
			err := rows.Scan(&t.projectID, &t.task.ID, &t.task.Title, &t.task.DueDate, &t.task.Status)
			return t, err
		})
	if err != nil {
		return nil, err
	}

	byProject := make(map[string][]core.Task, len(projects))
	for _, t := range tasks {
		byProject[t.projectID] = append(byProject[t.projectID], t.task)
	}
	for i := range projects {
		projects[i].Tasks = byProject[projects[i].ID]
	}
	return projects, nil
}

func (r *SQLiteRepository) FetchCases(ctx context.Context) ([]core.Case, error) {
	cases, err := queryAll(ctx, r.db,
		`SELECT id, title, status, court FROM cases ORDER BY rowid`,
		func(rows *sql.Rows) (core.Case, error) {
			var c core.Case
			err := rows.Scan(&c.ID, &c.Title, &c.Status, &c.Court)
			return c, err
		})
	if err != nil {
		return nil, err
	}

	type row struct {
		caseID  string
		hearing core.Hearing
	}
	hearings, err := queryAll(ctx, r.db,
		`SELECT case_id, id, date, time, note FROM hearings ORDER BY case_id, position`,
		func(rows *sql.Rows) (row, error) {
			var h row
			err := rows.Scan(&h.caseID, &h.hearing.ID, &h.hearing.Date, &h.hearing.Time, &h.hearing.Note)
			return h, err
		})
	if err != nil {
		return nil, err
	}

	byCase := make(map[string][]core.Hearing, len(cases))
	for _, h := range hearings {
		byCase[h.caseID] = append(byCase[h.caseID], h.hearing)
	}
	for i := range cases {
		cases[i].Hearings = byCase[cases[i].ID]
	}
	return cases, nil
}

func (r *SQLiteRepository) FetchCashPayments(ctx context.Context) ([]core.CashPayment, error) {
	return queryAll(ctx, r.db,
		`SELECT id, person_name, purpose, amount, currency, date FROM cash_payments ORDER BY rowid`,
		func(rows *sql.Rows) (core.CashPayment, error) {
			var p core.CashPayment
			err := rows.Scan(&p.ID, &p.PersonName, &p.Purpose, &p.Amount, &p.Currency, &p.Date)
			return p, err
		})
}

func (r *SQLiteRepository) FetchInKindTransactions(ctx context.Context) ([]core.InKindTransaction, error) {
	return queryAll(ctx, r.db,
		`SELECT id, person_id, product_id, quantity, unit, date FROM inkind_transactions ORDER BY rowid`,
		func(rows *sql.Rows) (core.InKindTransaction, error) {
			var t core.InKindTransaction
			err := rows.Scan(&t.ID, &t.PersonID, &t.ProductID, &t.Quantity, &t.Unit, &t.Date)
			return t, err
		})
}

func (r *SQLiteRepository) FetchPeople(ctx context.Context) ([]core.Person, error) {
	people, err := queryAll(ctx, r.db,
		`SELECT id, name, nationality, latitude, longitude FROM people ORDER BY rowid`,
		func(rows *sql.Rows) (core.Person, error) {
			var p core.Person
			var lat, lng sql.NullFloat64
			if err := rows.Scan(&p.ID, &p.Name, &p.Nationality, &lat, &lng); err != nil {
				return p, err
			}
			if lat.Valid {
				p.Latitude = &lat.Float64
			}
			if lng.Valid {
				p.Longitude = &lng.Float64
			}
			return p, nil
		})
	if err != nil {
		return nil, err
	}

	type row struct{ personID, aid string }
	aid, err := queryAll(ctx, r.db,
		`SELECT person_id, aid FROM person_aid ORDER BY person_id, position`,
		func(rows *sql.Rows) (row, error) {
			var a row
			err := rows.Scan(&a.personID, &a.aid)
			return a, err
		})
	if err != nil {
		return nil, err
	}

	byPerson := make(map[string][]string)
	for _, a := range aid {
		byPerson[a.personID] = append(byPerson[a.personID], a.aid)
	}
	for i := range people {
		people[i].AidReceived = byPerson[people[i].ID]
	}
	return people, nil
}

func (r *SQLiteRepository) FetchProducts(ctx context.Context) ([]core.Product, error) {
	return queryAll(ctx, r.db,
		`SELECT id, name, unit FROM products ORDER BY rowid`,
		func(rows *sql.Rows) (core.Product, error) {
			var p core.Product
			err := rows.Scan(&p.ID, &p.Name, &p.Unit)
			return p, err
		})
}

func (r *SQLiteRepository) FetchFinancialRecords(ctx context.Context) ([]core.FinancialRecord, error) {
	return queryAll(ctx, r.db,
		`SELECT id, date, direction, amount, category FROM financial_records ORDER BY rowid`,
		func(rows *sql.Rows) (core.FinancialRecord, error) {
			var rec core.FinancialRecord
			err := rows.Scan(&rec.ID, &rec.Date, &rec.Direction, &rec.Amount, &rec.Category)
			return rec, err
		})
}

func (r *SQLiteRepository) FetchMessages(ctx context.Context) ([]core.Message, error) {
	return queryAll(ctx, r.db,
		`SELECT id, sent_at, channel, audience, recipient_count FROM messages ORDER BY rowid`,
		func(rows *sql.Rows) (core.Message, error) {
			var m core.Message
			err := rows.Scan(&m.ID, &m.SentAt, &m.Channel, &m.Audience, &m.RecipientCount)
			return m, err
		})
}

func (r *SQLiteRepository) SaveEvents(ctx context.Context, events []core.Event) error {
	return r.inTx(ctx, source.CollectionEvents, len(events), func(tx *sql.Tx) error {
		for _, e := range events {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO events (id, title, date, time, location) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET title = excluded.title, date = excluded.date,
				 time = excluded.time, location = excluded.location`,
				e.ID, e.Title, e.Date, e.Time, e.Location); err != nil {
				return fmt.Errorf("upsert event %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// SaveProjects replaces the task list of every saved project.
func (r *SQLiteRepository) SaveProjects(ctx context.Context, projects []core.Project) error {
	return r.inTx(ctx, source.CollectionProjects, len(projects), func(tx *sql.Tx) error {
		for _, p := range projects {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO projects (id, title, status) VALUES (?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET title = excluded.title, status = excluded.status`,
				p.ID, p.Title, p.Status); err != nil {
				return fmt.Errorf("upsert project %s: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, p.ID); err != nil {
				return fmt.Errorf("clear tasks of %s: %w", p.ID, err)
			}
			for i, t := range p.Tasks {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO tasks (project_id, id, position, title, due_date, status) VALUES (?, ?, ?, ?, ?, ?)`,
					p.ID, t.ID, i, t.Title, t.DueDate, t.Status); err != nil {
					return fmt.Errorf("insert task %s/%s: %w", p.ID, t.ID, err)
				}
			}
		}
		return nil
	})
}

// SaveCases replaces the hearing list of every saved case.
func (r *SQLiteRepository) SaveCases(ctx context.Context, cases []core.Case) error {
	return r.inTx(ctx, source.CollectionCases, len(cases), func(tx *sql.Tx) error {
		for _, c := range cases {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cases (id, title, status, court) VALUES (?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET title = excluded.title, status = excluded.status, court = excluded.court`,
				c.ID, c.Title, c.Status, c.Court); err != nil {
				return fmt.Errorf("upsert case %s: %w", c.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM hearings WHERE case_id = ?`, c.ID); err != nil {
				return fmt.Errorf("clear hearings of %s: %w", c.ID, err)
			}
			for i, h := range c.Hearings {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO hearings (case_id, id, position, date, time, note) VALUES (?, ?, ?, ?, ?, ?)`,
					c.ID, h.ID, i, h.Date, h.Time, h.Note); err != nil {
					return fmt.Errorf("insert hearing %s/%s: %w", c.ID, h.ID, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveCashPayments(ctx context.Context, payments []core.CashPayment) error {
	return r.inTx(ctx, source.CollectionPayments, len(payments), func(tx *sql.Tx) error {
		for _, p := range payments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cash_payments (id, person_name, purpose, amount, currency, date) VALUES (?, ?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET person_name = excluded.person_name, purpose = excluded.purpose,
				 amount = excluded.amount, currency = excluded.currency, date = excluded.date`,
				p.ID, p.PersonName, p.Purpose, p.Amount.String(), p.Currency, p.Date); err != nil {
				return fmt.Errorf("upsert payment %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveInKindTransactions(ctx context.Context, txs []core.InKindTransaction) error {
	return r.inTx(ctx, source.CollectionInKind, len(txs), func(tx *sql.Tx) error {
		for _, t := range txs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO inkind_transactions (id, person_id, product_id, quantity, unit, date) VALUES (?, ?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET person_id = excluded.person_id, product_id = excluded.product_id,
				 quantity = excluded.quantity, unit = excluded.unit, date = excluded.date`,
				t.ID, t.PersonID, t.ProductID, t.Quantity.String(), t.Unit, t.Date); err != nil {
				return fmt.Errorf("upsert in-kind %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// SavePeople replaces the aid flags of every saved person.
func (r *SQLiteRepository) SavePeople(ctx context.Context, people []core.Person) error {
	return r.inTx(ctx, source.CollectionPeople, len(people), func(tx *sql.Tx) error {
		for _, p := range people {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO people (id, name, nationality, latitude, longitude) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET name = excluded.name, nationality = excluded.nationality,
				 latitude = excluded.latitude, longitude = excluded.longitude`,
				p.ID, p.Name, p.Nationality, nullFloat(p.Latitude), nullFloat(p.Longitude)); err != nil {
				return fmt.Errorf("upsert person %s: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM person_aid WHERE person_id = ?`, p.ID); err != nil {
				return fmt.Errorf("clear aid of %s: %w", p.ID, err)
			}
			for i, aid := range p.AidReceived {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO person_aid (person_id, position, aid) VALUES (?, ?, ?)`,
					p.ID, i, aid); err != nil {
					return fmt.Errorf("insert aid of %s: %w", p.ID, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveProducts(ctx context.Context, products []core.Product) error {
	return r.inTx(ctx, source.CollectionProducts, len(products), func(tx *sql.Tx) error {
		for _, p := range products {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO products (id, name, unit) VALUES (?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET name = excluded.name, unit = excluded.unit`,
				p.ID, p.Name, p.Unit); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveFinancialRecords(ctx context.Context, records []core.FinancialRecord) error {
	return r.inTx(ctx, source.CollectionRecords, len(records), func(tx *sql.Tx) error {
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO financial_records (id, date, direction, amount, category) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET date = excluded.date, direction = excluded.direction,
				 amount = excluded.amount, category = excluded.category`,
				rec.ID, rec.Date, string(rec.Direction), rec.Amount.String(), rec.Category); err != nil {
				return fmt.Errorf("upsert record %s: %w", rec.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SaveMessages(ctx context.Context, messages []core.Message) error {
	return r.inTx(ctx, source.CollectionMessages, len(messages), func(tx *sql.Tx) error {
		for _, m := range messages {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO messages (id, sent_at, channel, audience, recipient_count) VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET sent_at = excluded.sent_at, channel = excluded.channel,
				 audience = excluded.audience, recipient_count = excluded.recipient_count`,
				m.ID, m.SentAt, m.Channel, m.Audience, m.RecipientCount); err != nil {
				return fmt.Errorf("upsert message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, rolling back on error.
func (r *SQLiteRepository) inTx(ctx context.Context, collection string, n int, fn func(tx *sql.Tx) error) error {
	if n == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", collection, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", collection, err)
	}
	slog.DebugContext(ctx, "Saved records", "collection", collection, "count", n)
	return nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
