package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/rangedcombat/internal/game/actorstate"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// ErrActorNotFound is returned when no actor row exists for the requested ID.
var ErrActorNotFound = errors.New("postgres: actor not found")

// ErrRecordNotFound is returned when an update or delete matches no row.
var ErrRecordNotFound = errors.New("postgres: record not found")

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store loads actor state from PostgreSQL and applies ledger batches to it.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by db.
//
// Precondition: db must be non-nil.
func NewStore(db *pgxpool.Pool) *Store {
	if db == nil {
		panic("postgres: NewStore: db must not be nil")
	}
	return &Store{db: db}
}

// LoadState reads the actor, its weapons, stacks and markers.
//
// Postcondition: Returns ErrActorNotFound if no actor row exists.
func (s *Store) LoadState(ctx context.Context, actorID string) (*actorstate.State, error) {
	return loadState(ctx, s.db, actorID, false)
}

// Apply performs ops for actorID in a single transaction.
//
// The actor row is locked for the duration, and the batch is first replayed
// against the loaded state so a batch breaking a loading invariant is
// rejected before any row is written.
//
// Postcondition: either every operation is persisted or none is.
func (s *Store) Apply(ctx context.Context, actorID string, ops []ledger.Operation) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		st, err := loadState(ctx, tx, actorID, true)
		if err != nil {
			return err
		}
		if _, err := st.Apply(ops); err != nil {
			return fmt.Errorf("postgres: applying batch for %q: %w", actorID, err)
		}
		for i, op := range ops {
			if err := writeOp(ctx, tx, actorID, op); err != nil {
				return fmt.Errorf("postgres: operation %d (%s): %w", i, op.Kind, err)
			}
		}
		return nil
	})
}

// Save replaces everything stored for st's actor with st.
//
// Precondition: st must be non-nil.
// Postcondition: LoadState(st.Actor.ID) returns a state equal to st.
func (s *Store) Save(ctx context.Context, st *actorstate.State) error {
	if st == nil {
		panic("postgres: Store.Save: state must not be nil")
	}
	a := st.Actor
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO actors (id, name, features)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, features = EXCLUDED.features, updated_at = NOW()`,
			a.ID, a.Name, nonNil(a.Features),
		)
		if err != nil {
			return fmt.Errorf("saving actor %q: %w", a.ID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM weapons WHERE actor_id = $1`, a.ID); err != nil {
			return fmt.Errorf("clearing weapons: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM ammunition_stacks WHERE actor_id = $1`, a.ID); err != nil {
			return fmt.Errorf("clearing stacks: %w", err)
		}
		for i, w := range a.Weapons {
			_, err := tx.Exec(ctx, `
				INSERT INTO weapons (id, actor_id, def_id, name, requires_loading, repeating, capacity, ammunition, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				w.ID, a.ID, w.DefID, w.Name, w.RequiresLoading, w.Repeating, w.Capacity, nonNil(w.Ammunition), i,
			)
			if err != nil {
				return fmt.Errorf("saving weapon %q: %w", w.ID, err)
			}
		}
		for _, stack := range st.Inventory.Stacks() {
			if err := insertStack(ctx, tx, a.ID, stack); err != nil {
				return err
			}
		}
		for _, m := range st.Markers.All() {
			if err := insertMarker(ctx, tx, a.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// Notices returns the floating-text notices recorded for actorID, oldest first.
func (s *Store) Notices(ctx context.Context, actorID string) ([]ledger.Notice, error) {
	rows, err := s.db.Query(ctx, `
		SELECT text, is_error FROM action_notices
		WHERE actor_id = $1 ORDER BY id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing notices: %w", err)
	}
	defer rows.Close()

	var notices []ledger.Notice
	for rows.Next() {
		var n ledger.Notice
		if err := rows.Scan(&n.Text, &n.IsError); err != nil {
			return nil, fmt.Errorf("scanning notice: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

func loadState(ctx context.Context, q queryer, actorID string, lock bool) (*actorstate.State, error) {
	query := `SELECT name, features FROM actors WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	actor := actorstate.Actor{ID: actorID}
	err := q.QueryRow(ctx, query, actorID).Scan(&actor.Name, &actor.Features)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying actor %q: %w", actorID, err)
	}

	if actor.Weapons, err = loadWeapons(ctx, q, actorID); err != nil {
		return nil, err
	}
	stacks, err := loadStacks(ctx, q, actorID)
	if err != nil {
		return nil, err
	}
	markers, err := loadMarkers(ctx, q, actorID)
	if err != nil {
		return nil, err
	}
	set, err := loading.NewSet(actorID, markers...)
	if err != nil {
		return nil, fmt.Errorf("restoring markers for %q: %w", actorID, err)
	}
	return actorstate.New(actor, set, inventory.NewInventory(actorID, stacks...))
}

func loadWeapons(ctx context.Context, q queryer, actorID string) ([]inventory.Weapon, error) {
	rows, err := q.Query(ctx, `
		SELECT id, def_id, name, requires_loading, repeating, capacity, ammunition
		FROM weapons WHERE actor_id = $1 ORDER BY position`, actorID)
	if err != nil {
		return nil, fmt.Errorf("querying weapons: %w", err)
	}
	defer rows.Close()

	var weapons []inventory.Weapon
	for rows.Next() {
		w := inventory.Weapon{ActorID: actorID}
		if err := rows.Scan(&w.ID, &w.DefID, &w.Name, &w.RequiresLoading, &w.Repeating, &w.Capacity, &w.Ammunition); err != nil {
			return nil, fmt.Errorf("scanning weapon: %w", err)
		}
		weapons = append(weapons, w)
	}
	return weapons, rows.Err()
}

func loadStacks(ctx context.Context, q queryer, actorID string) ([]inventory.Stack, error) {
	rows, err := q.Query(ctx, `
		SELECT id, template_id, name, quantity, uses_value, uses_max, auto_destroy, stowed
		FROM ammunition_stacks WHERE actor_id = $1 ORDER BY position`, actorID)
	if err != nil {
		return nil, fmt.Errorf("querying stacks: %w", err)
	}
	defer rows.Close()

	var stacks []inventory.Stack
	for rows.Next() {
		var s inventory.Stack
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Name, &s.Quantity, &s.Uses.Value, &s.Uses.Max, &s.AutoDestroy, &s.Stowed); err != nil {
			return nil, fmt.Errorf("scanning stack: %w", err)
		}
		stacks = append(stacks, s)
	}
	return stacks, rows.Err()
}

func loadMarkers(ctx context.Context, q queryer, actorID string) ([]loading.Marker, error) {
	rows, err := q.Query(ctx, `SELECT id, record FROM weapon_markers WHERE actor_id = $1 ORDER BY id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer rows.Close()

	var markers []loading.Marker
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		m, err := loading.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding marker %q: %w", id, err)
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}

func writeOp(ctx context.Context, tx pgx.Tx, actorID string, op ledger.Operation) error {
	if op.Kind == ledger.OpNotify {
		_, err := tx.Exec(ctx, `INSERT INTO action_notices (actor_id, text, is_error) VALUES ($1, $2, $3)`,
			actorID, op.Notice.Text, op.Notice.IsError)
		return err
	}
	switch r := op.Record.(type) {
	case inventory.Stack:
		return writeStack(ctx, tx, actorID, op.Kind, r)
	case loading.Marker:
		return writeMarker(ctx, tx, actorID, op.Kind, r)
	default:
		return fmt.Errorf("%w: %T", actorstate.ErrUnsupportedRecord, op.Record)
	}
}

func writeStack(ctx context.Context, tx pgx.Tx, actorID string, kind ledger.OpKind, s inventory.Stack) error {
	switch kind {
	case ledger.OpCreate:
		return insertStack(ctx, tx, actorID, s)
	case ledger.OpUpdate:
		tag, err := tx.Exec(ctx, `
			UPDATE ammunition_stacks
			SET template_id = $3, name = $4, quantity = $5, uses_value = $6, uses_max = $7,
			    auto_destroy = $8, stowed = $9
			WHERE id = $1 AND actor_id = $2`,
			s.ID, actorID, s.TemplateID, s.Name, s.Quantity, s.Uses.Value, s.Uses.Max, s.AutoDestroy, s.Stowed,
		)
		return affected(tag, err, "stack", s.ID)
	case ledger.OpDelete:
		tag, err := tx.Exec(ctx, `DELETE FROM ammunition_stacks WHERE id = $1 AND actor_id = $2`, s.ID, actorID)
		return affected(tag, err, "stack", s.ID)
	}
	return fmt.Errorf("unexpected operation %s", kind)
}

func writeMarker(ctx context.Context, tx pgx.Tx, actorID string, kind ledger.OpKind, m loading.Marker) error {
	switch kind {
	case ledger.OpCreate:
		return insertMarker(ctx, tx, actorID, m)
	case ledger.OpUpdate:
		raw, err := loading.Encode(m)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE weapon_markers SET record = $3 WHERE id = $1 AND actor_id = $2`,
			m.RecordID(), actorID, raw)
		return affected(tag, err, "marker", m.RecordID())
	case ledger.OpDelete:
		tag, err := tx.Exec(ctx, `DELETE FROM weapon_markers WHERE id = $1 AND actor_id = $2`, m.RecordID(), actorID)
		return affected(tag, err, "marker", m.RecordID())
	}
	return fmt.Errorf("unexpected operation %s", kind)
}

func insertStack(ctx context.Context, q queryer, actorID string, s inventory.Stack) error {
	_, err := q.Exec(ctx, `
		INSERT INTO ammunition_stacks (id, actor_id, template_id, name, quantity, uses_value, uses_max, auto_destroy, stowed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, actorID, s.TemplateID, s.Name, s.Quantity, s.Uses.Value, s.Uses.Max, s.AutoDestroy, s.Stowed,
	)
	if err != nil {
		return fmt.Errorf("inserting stack %q: %w", s.ID, err)
	}
	return nil
}

func insertMarker(ctx context.Context, q queryer, actorID string, m loading.Marker) error {
	raw, err := loading.Encode(m)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO weapon_markers (id, actor_id, weapon_id, kind, record)
		VALUES ($1, $2, $3, $4, $5)`,
		m.RecordID(), actorID, m.Weapon(), string(m.Kind()), raw,
	)
	if err != nil {
		return fmt.Errorf("inserting marker %q: %w", m.RecordID(), err)
	}
	return nil
}

func affected(tag pgconn.CommandTag, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("writing %s %q: %w", what, id, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%s %q: %w", what, id, ErrRecordNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
