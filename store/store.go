// Package store persists easel pages to a local SQLite database and provides
// the debounced persistence bridge the controller writes through.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/phanxgames/easel"
)

// DB wraps the SQLite connection holding pages, designs, and iterations.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the SQLite file at dbPath and runs migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer — limit to a single connection to
	// prevent SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			viewport_x REAL NOT NULL DEFAULT 0,
			viewport_y REAL NOT NULL DEFAULT 0,
			viewport_zoom REAL NOT NULL DEFAULT 1.0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS designs (
			id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL REFERENCES pages(id),
			sort_order INTEGER NOT NULL DEFAULT 0,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			width REAL NOT NULL DEFAULT 0,
			height REAL NOT NULL DEFAULT 0,
			payload_kind INTEGER NOT NULL DEFAULT 0,
			payload_data BLOB,
			payload_ref TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS iterations (
			id TEXT PRIMARY KEY,
			design_id TEXT NOT NULL REFERENCES designs(id),
			parent_id TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			width REAL NOT NULL DEFAULT 0,
			height REAL NOT NULL DEFAULT 0,
			payload_kind INTEGER NOT NULL DEFAULT 0,
			payload_data BLOB,
			payload_ref TEXT NOT NULL DEFAULT '',
			analysis_json TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_designs_page ON designs(page_id)`,
		`CREATE INDEX IF NOT EXISTS idx_iterations_design ON iterations(design_id)`,
	}
	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}

// SavePage writes the whole page: viewport plus a full replace of its designs
// and iterations. Pages are small enough that replace beats diffing.
func (db *DB) SavePage(p *easel.Page) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("save page %s: %w", p.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO pages (id, viewport_x, viewport_y, viewport_zoom)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   viewport_x = excluded.viewport_x,
		   viewport_y = excluded.viewport_y,
		   viewport_zoom = excluded.viewport_zoom,
		   updated_at = CURRENT_TIMESTAMP`,
		p.ID, p.Viewport.Pan.X, p.Viewport.Pan.Y, p.Viewport.Scale,
	)
	if err != nil {
		return fmt.Errorf("save page %s: %w", p.ID, err)
	}

	if _, err := tx.Exec(
		`DELETE FROM iterations WHERE design_id IN (SELECT id FROM designs WHERE page_id = ?)`, p.ID,
	); err != nil {
		return fmt.Errorf("save page %s: %w", p.ID, err)
	}
	if _, err := tx.Exec(`DELETE FROM designs WHERE page_id = ?`, p.ID); err != nil {
		return fmt.Errorf("save page %s: %w", p.ID, err)
	}

	for di, d := range p.Scene.Designs() {
		_, err := tx.Exec(
			`INSERT INTO designs (id, page_id, sort_order, x, y, width, height, payload_kind, payload_data, payload_ref)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, p.ID, di, d.Position.X, d.Position.Y, d.Dimensions.Width, d.Dimensions.Height,
			int(d.Source.Kind), d.Source.Data, d.Source.Ref,
		)
		if err != nil {
			return fmt.Errorf("save design %s: %w", d.ID, err)
		}
		for ii, it := range d.Iterations {
			analysis, err := json.Marshal(it.Analysis)
			if err != nil {
				return fmt.Errorf("save iteration %s: %w", it.ID, err)
			}
			_, err = tx.Exec(
				`INSERT INTO iterations (id, design_id, parent_id, sort_order, x, y, width, height, payload_kind, payload_data, payload_ref, analysis_json)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, d.ID, it.ParentID, ii, it.Position.X, it.Position.Y,
				it.Dimensions.Width, it.Dimensions.Height,
				int(it.Payload.Kind), it.Payload.Data, it.Payload.Ref, string(analysis),
			)
			if err != nil {
				return fmt.Errorf("save iteration %s: %w", it.ID, err)
			}
		}
	}
	return tx.Commit()
}

// LoadPage reads a page by id. A page that was never saved comes back as a
// fresh empty page with the home viewport, not an error.
func (db *DB) LoadPage(id string) (*easel.Page, error) {
	p := easel.NewPage(id)
	err := db.conn.QueryRow(
		`SELECT viewport_x, viewport_y, viewport_zoom FROM pages WHERE id = ?`, id,
	).Scan(&p.Viewport.Pan.X, &p.Viewport.Pan.Y, &p.Viewport.Scale)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}

	rows, err := db.conn.Query(
		`SELECT id, x, y, width, height, payload_kind, payload_data, payload_ref
		 FROM designs WHERE page_id = ? ORDER BY sort_order ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}
	defer rows.Close()

	scene := easel.NewScene()
	var designIDs []string
	for rows.Next() {
		var d easel.Design
		var kind int
		if err := rows.Scan(&d.ID, &d.Position.X, &d.Position.Y,
			&d.Dimensions.Width, &d.Dimensions.Height,
			&kind, &d.Source.Data, &d.Source.Ref); err != nil {
			return nil, fmt.Errorf("load page %s: %w", id, err)
		}
		d.Source.Kind = easel.PayloadKind(kind)
		scene, err = scene.AddDesign(d)
		if err != nil {
			return nil, fmt.Errorf("load page %s: %w", id, err)
		}
		designIDs = append(designIDs, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}

	for _, designID := range designIDs {
		scene, err = db.loadIterations(scene, designID)
		if err != nil {
			return nil, fmt.Errorf("load page %s: %w", id, err)
		}
	}
	p.Scene = scene
	return p, nil
}

func (db *DB) loadIterations(scene *easel.Scene, designID string) (*easel.Scene, error) {
	rows, err := db.conn.Query(
		`SELECT id, parent_id, x, y, width, height, payload_kind, payload_data, payload_ref, analysis_json
		 FROM iterations WHERE design_id = ? ORDER BY sort_order ASC`, designID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it easel.DesignIteration
		var kind int
		var analysis string
		if err := rows.Scan(&it.ID, &it.ParentID, &it.Position.X, &it.Position.Y,
			&it.Dimensions.Width, &it.Dimensions.Height,
			&kind, &it.Payload.Data, &it.Payload.Ref, &analysis); err != nil {
			return nil, err
		}
		it.Payload.Kind = easel.PayloadKind(kind)
		if err := json.Unmarshal([]byte(analysis), &it.Analysis); err != nil {
			return nil, fmt.Errorf("iteration %s analysis: %w", it.ID, err)
		}
		// Reattach by owning design, not by ParentID: the recorded parent
		// may have been deleted after this iteration was created, and a
		// saved page must always load.
		scene, err = scene.AttachIteration(designID, it)
		if err != nil {
			return nil, err
		}
	}
	return scene, rows.Err()
}

// ListPageIDs returns every saved page id, most recently updated first.
func (db *DB) ListPageIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT id FROM pages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeletePage removes a page and everything on it.
func (db *DB) DeletePage(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec(
		`DELETE FROM iterations WHERE design_id IN (SELECT id FROM designs WHERE page_id = ?)`, id,
	); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM designs WHERE page_id = ?`, id); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	return tx.Commit()
}
