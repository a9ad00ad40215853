package app

import (
	"context"
	"encoding/json"
	"fmt"

	documents "github.com/bit-badger/BitBadger.Documents-sub001"
	"github.com/bit-badger/BitBadger.Documents-sub001/postgres"
	"github.com/bit-badger/BitBadger.Documents-sub001/query"
	"github.com/bit-badger/BitBadger.Documents-sub001/sqlite"
)

// docStore is the slice of store behavior the browser needs, satisfied by
// both drivers
type docStore interface {
	List(ctx context.Context, table string, limit, offset int) ([]string, error)
	Count(ctx context.Context, table string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// OpenStore connects to the profile's database and returns a browsing handle
func OpenStore(ctx context.Context, driver, dsn, idField string) (docStore, error) {
	cfg := &documents.Config{IDField: idField}

	switch driver {
	case "postgres":
		store, err := postgres.Connect(ctx, dsn, cfg)
		if err != nil {
			return nil, err
		}
		return &pgStore{store}, nil
	case "sqlite":
		store, err := sqlite.Connect(ctx, dsn, cfg)
		if err != nil {
			return nil, err
		}
		return &liteStore{store}, nil
	default:
		return nil, fmt.Errorf("unknown driver %q (want postgres or sqlite)", driver)
	}
}

func pageQuery(table string, limit, offset int) string {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query.SelectFromTable(table), limit, offset)
}

func rawToStrings(docs []json.RawMessage) []string {
	out := make([]string, len(docs))
	for i, doc := range docs {
		out[i] = string(doc)
	}
	return out
}

type pgStore struct {
	store *postgres.Store
}

func (p *pgStore) List(ctx context.Context, table string, limit, offset int) ([]string, error) {
	docs, err := postgres.CustomList[json.RawMessage](ctx, p.store, pageQuery(table, limit, offset), nil)
	if err != nil {
		return nil, err
	}
	return rawToStrings(docs), nil
}

func (p *pgStore) Count(ctx context.Context, table string) (int64, error) {
	return p.store.CountAll(ctx, table)
}

func (p *pgStore) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}

func (p *pgStore) Close() error {
	p.store.Close()
	return nil
}

type liteStore struct {
	store *sqlite.Store
}

func (l *liteStore) List(ctx context.Context, table string, limit, offset int) ([]string, error) {
	docs, err := sqlite.CustomList[json.RawMessage](ctx, l.store, pageQuery(table, limit, offset), nil)
	if err != nil {
		return nil, err
	}
	return rawToStrings(docs), nil
}

func (l *liteStore) Count(ctx context.Context, table string) (int64, error) {
	return l.store.CountAll(ctx, table)
}

func (l *liteStore) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

func (l *liteStore) Close() error {
	return l.store.Close()
}
