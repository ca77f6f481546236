package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/inbox-crm/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. The default DSN
// is ":memory:", keeping the collections session-scoped; pointing it at a
// file is possible but not part of the supported product surface.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given DSN and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// An in-memory database exists per connection; a single connection
	// keeps all queries on the same database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	pos     INTEGER PRIMARY KEY AUTOINCREMENT,
	id      TEXT NOT NULL UNIQUE,
	name    TEXT NOT NULL,
	email   TEXT NOT NULL,
	company TEXT NOT NULL DEFAULT '',
	tags    TEXT NOT NULL DEFAULT '[]',
	avatar  TEXT NOT NULL DEFAULT '',
	phone   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS deals (
	pos                 INTEGER PRIMARY KEY AUTOINCREMENT,
	id                  TEXT NOT NULL UNIQUE,
	title               TEXT NOT NULL,
	value               REAL NOT NULL DEFAULT 0,
	stage               TEXT NOT NULL,
	contact_id          TEXT NOT NULL,
	created_at          DATETIME NOT NULL,
	notes               TEXT NOT NULL DEFAULT '',
	expected_close_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS emails (
	pos          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	sender       TEXT NOT NULL,
	sender_email TEXT NOT NULL,
	subject      TEXT NOT NULL,
	body         TEXT NOT NULL,
	timestamp    TEXT NOT NULL DEFAULT '',
	is_read      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_deals_contact_id ON deals(contact_id);
CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Contacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, company, tags, avatar, phone FROM contacts ORDER BY pos`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var tagsJSON string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &tagsJSON, &c.Avatar, &c.Phone); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal tags for contact %s", c.ID)
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) Deals(ctx context.Context) ([]model.Deal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, value, stage, contact_id, created_at, notes, expected_close_date FROM deals ORDER BY pos`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select deals")
	}
	defer rows.Close()

	var deals []model.Deal
	for rows.Next() {
		var d model.Deal
		var stage string
		var createdAt time.Time
		if err := rows.Scan(&d.ID, &d.Title, &d.Value, &stage, &d.ContactID, &createdAt, &d.Notes, &d.ExpectedCloseDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan deal")
		}
		d.Stage = model.PipelineStage(stage)
		d.CreatedAt = createdAt.UTC()
		deals = append(deals, d)
	}
	return deals, eris.Wrap(rows.Err(), "sqlite: iterate deals")
}

func (s *SQLiteStore) Emails(ctx context.Context) ([]model.Email, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, sender_email, subject, body, timestamp, is_read FROM emails ORDER BY pos`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select emails")
	}
	defer rows.Close()

	var emails []model.Email
	for rows.Next() {
		var e model.Email
		if err := rows.Scan(&e.ID, &e.Sender, &e.SenderEmail, &e.Subject, &e.Body, &e.Timestamp, &e.IsRead); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan email")
		}
		emails = append(emails, e)
	}
	return emails, eris.Wrap(rows.Err(), "sqlite: iterate emails")
}

func (s *SQLiteStore) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	var e model.Email
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sender, sender_email, subject, body, timestamp, is_read FROM emails WHERE id = ?`, id,
	).Scan(&e.ID, &e.Sender, &e.SenderEmail, &e.Subject, &e.Body, &e.Timestamp, &e.IsRead)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get email %s", id)
	}
	return &e, nil
}

func (s *SQLiteStore) AddContact(ctx context.Context, c model.Contact) error {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal tags")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, company, tags, avatar, phone) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Company, string(tagsJSON), c.Avatar, c.Phone,
	)
	return eris.Wrapf(err, "sqlite: insert contact %s", c.ID)
}

func (s *SQLiteStore) AddDeal(ctx context.Context, d model.Deal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deals (id, title, value, stage, contact_id, created_at, notes, expected_close_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Value, string(d.Stage), d.ContactID, d.CreatedAt.UTC(), d.Notes, d.ExpectedCloseDate,
	)
	return eris.Wrapf(err, "sqlite: insert deal %s", d.ID)
}

func (s *SQLiteStore) AddEmail(ctx context.Context, e model.Email) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emails (id, sender, sender_email, subject, body, timestamp, is_read) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Sender, e.SenderEmail, e.Subject, e.Body, e.Timestamp, e.IsRead,
	)
	return eris.Wrapf(err, "sqlite: insert email %s", e.ID)
}

func (s *SQLiteStore) MarkEmailRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE emails SET is_read = 1 WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: mark email read %s", id)
}

func (s *SQLiteStore) MoveDeal(ctx context.Context, id string, stage model.PipelineStage) error {
	// Zero rows affected is deliberate no-op behavior for stale ids.
	_, err := s.db.ExecContext(ctx, `UPDATE deals SET stage = ? WHERE id = ?`, string(stage), id)
	return eris.Wrapf(err, "sqlite: move deal %s", id)
}
