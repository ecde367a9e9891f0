package database

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sisu-network/lib/log"

	"github.com/koinos-bridge/bridge-client/config"
	"github.com/koinos-bridge/bridge-client/types"
)

const lastInitiatedTxKey = "last_initiated_tx_id"

type Database interface {
	Init() error

	// AppendHistory records one successful chain submission. History is
	// append-only; there is no update or delete.
	AppendHistory(entry *types.HistoryEntry) error

	// LoadHistory returns all recorded entries, most recent first.
	LoadHistory() ([]*types.HistoryEntry, error)

	SaveLastInitiatedTx(txId string) error
	LoadLastInitiatedTx() (string, error)
}

type DefaultDatabase struct {
	cfg *config.Bridge
	db  *sql.DB

	// Serializes history writes so two transfers completing back to back
	// cannot interleave their read-modify-write cycles.
	writeLock *sync.Mutex
}

func NewDb(cfg *config.Bridge) Database {
	return &DefaultDatabase{
		cfg:       cfg,
		writeLock: &sync.Mutex{},
	}
}

func (d *DefaultDatabase) Connect() error {
	path := d.cfg.DbPath
	if d.cfg.InMemoryDb {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	d.db = db
	log.Info("Db is connected successfully, path = ", path)

	return nil
}

func (d *DefaultDatabase) Init() error {
	err := d.Connect()
	if err != nil {
		log.Error("Failed to connect to DB. Err =", err)
		return err
	}

	err = d.DoMigration()
	if err != nil {
		log.Error("Cannot do migration. Err =", err)
		return err
	}

	return nil
}

func (d *DefaultDatabase) AppendHistory(entry *types.HistoryEntry) error {
	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := d.db.Exec(
		"INSERT INTO transfer_history (tx_id, chain, op_type, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.TxId, entry.Chain, string(entry.Type), entry.Amount, ts.UnixMilli(),
	)

	return err
}

func (d *DefaultDatabase) LoadHistory() ([]*types.HistoryEntry, error) {
	rows, err := d.db.Query(
		"SELECT tx_id, chain, op_type, amount, created_at FROM transfer_history ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*types.HistoryEntry, 0)
	for rows.Next() {
		entry := &types.HistoryEntry{}
		var opType string
		var createdAt int64

		if err := rows.Scan(&entry.TxId, &entry.Chain, &opType, &entry.Amount, &createdAt); err != nil {
			return nil, err
		}

		entry.Type = types.HistoryOp(opType)
		entry.Timestamp = time.UnixMilli(createdAt)
		ret = append(ret, entry)
	}

	return ret, rows.Err()
}

func (d *DefaultDatabase) SaveLastInitiatedTx(txId string) error {
	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	_, err := d.db.Exec(
		"INSERT INTO client_state (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		lastInitiatedTxKey, txId,
	)

	return err
}

func (d *DefaultDatabase) LoadLastInitiatedTx() (string, error) {
	rows, err := d.db.Query("SELECT value FROM client_state WHERE name = ?", lastInitiatedTxKey)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", nil
	}

	var txId string
	if err := rows.Scan(&txId); err != nil {
		return "", err
	}

	return txId, nil
}
