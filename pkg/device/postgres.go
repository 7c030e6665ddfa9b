package device

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/weberc2/sfs/pkg/pgutil"
	. "github.com/weberc2/sfs/pkg/types"
)

var _ Device = (*Postgres)(nil)

var (
	volumesTable = pgutil.Table{
		Name:        "sfs_volumes",
		PrimaryKeys: []pgutil.Column{{Name: "volume", Type: "TEXT"}},
		OtherColumns: []pgutil.Column{
			{Name: "block_size", Type: "INTEGER"},
			{Name: "blocks", Type: "BIGINT"},
		},
	}

	blocksTable = pgutil.Table{
		Name: "sfs_blocks",
		PrimaryKeys: []pgutil.Column{
			{Name: "volume", Type: "TEXT"},
			{Name: "idx", Type: "BIGINT"},
		},
		OtherColumns: []pgutil.Column{{Name: "data", Type: "BYTEA"}},
	}
)

// Postgres stores one row per written block. Like `ObjectStoreDevice`,
// blocks with no row read as zeros.
type Postgres struct {
	shape
	DB     *sql.DB
	Volume string
	open   bool
}

func NewPostgres(db *sql.DB, volume string) *Postgres {
	return &Postgres{DB: db, Volume: volume}
}

func (p *Postgres) ensure() error {
	if err := volumesTable.Ensure(p.DB); err != nil {
		return err
	}
	return blocksTable.Ensure(p.DB)
}

func (p *Postgres) Format(blockSize Byte, blocks Block) error {
	if err := p.ensure(); err != nil {
		return fmt.Errorf("formatting volume `%s`: %w", p.Volume, err)
	}
	tx, err := p.DB.Begin()
	if err != nil {
		return fmt.Errorf("formatting volume `%s`: %w", p.Volume, err)
	}
	if _, err := tx.Exec(blocksTable.DeleteSQL(1, ""), p.Volume); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing blocks of volume `%s`: %w", p.Volume, err)
	}
	if _, err := tx.Exec(
		volumesTable.UpsertSQL(),
		p.Volume,
		int64(blockSize),
		int64(blocks),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("recording volume `%s`: %w", p.Volume, pgErr(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("formatting volume `%s`: %w", p.Volume, err)
	}
	p.shape = shape{blockSize: blockSize, blocks: blocks}
	p.open = true
	return nil
}

func (p *Postgres) Open(blockSize Byte, blocks Block) error {
	if err := p.ensure(); err != nil {
		return fmt.Errorf("opening volume `%s`: %w", p.Volume, err)
	}
	var storedBlockSize, storedBlocks int64
	if err := p.DB.QueryRow(
		volumesTable.SelectSQL(volumesTable.OtherColumns, 1, ""),
		p.Volume,
	).Scan(&storedBlockSize, &storedBlocks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("opening volume `%s`: %w", p.Volume, ErrInvalidVolume)
		}
		return fmt.Errorf("opening volume `%s`: %w", p.Volume, err)
	}
	p.shape = shape{blockSize: Byte(storedBlockSize), blocks: Block(storedBlocks)}
	if err := p.matches(blockSize, blocks); err != nil {
		p.shape = shape{}
		return err
	}
	p.open = true
	return nil
}

func (p *Postgres) ReadBlocks(start, count Block, buf []byte) error {
	if !p.open {
		return ErrNotOpen
	}
	if err := p.check(start, count, buf); err != nil {
		return err
	}
	zero(buf)
	rows, err := p.DB.Query(
		blocksTable.SelectSQL(
			blocksTable.Columns()[1:],
			1,
			`"idx" >= $2 AND "idx" < $3`,
		),
		p.Volume,
		int64(start),
		int64(start)+int64(count),
	)
	if err != nil {
		return fmt.Errorf("reading `%d` blocks at `%d`: %w", count, start, err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int64
		var data []byte
		if err := rows.Scan(&idx, &data); err != nil {
			return fmt.Errorf("scanning block row: %w", err)
		}
		if Byte(len(data)) != p.blockSize {
			return fmt.Errorf(
				"block `%d` row is `%d` bytes; wanted `%d`: %w",
				idx,
				len(data),
				p.blockSize,
				ErrInvalidVolume,
			)
		}
		offset := Byte(idx-int64(start)) * p.blockSize
		copy(buf[offset:offset+p.blockSize], data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading `%d` blocks at `%d`: %w", count, start, err)
	}
	return nil
}

func (p *Postgres) WriteBlocks(start, count Block, buf []byte) error {
	if !p.open {
		return ErrNotOpen
	}
	if err := p.check(start, count, buf); err != nil {
		return err
	}
	tx, err := p.DB.Begin()
	if err != nil {
		return fmt.Errorf("writing `%d` blocks at `%d`: %w", count, start, err)
	}
	stmt, err := tx.Prepare(blocksTable.UpsertSQL())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing block upsert: %w", err)
	}
	defer stmt.Close()
	for i := Block(0); i < count; i++ {
		block := buf[Byte(i)*p.blockSize : Byte(i+1)*p.blockSize]
		if _, err := stmt.Exec(p.Volume, int64(start+i), block); err != nil {
			tx.Rollback()
			return fmt.Errorf("writing block `%d`: %w", start+i, pgErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("writing `%d` blocks at `%d`: %w", count, start, err)
	}
	return nil
}

// Close leaves the database handle open; its owner closes it.
func (p *Postgres) Close() error {
	p.open = false
	return nil
}

func pgErr(err error) error {
	var e *pq.Error
	if errors.As(err, &e) {
		return fmt.Errorf("%s (code=%s): %w", e.Message, e.Code, err)
	}
	return err
}
