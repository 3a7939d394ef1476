package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/supplier-gate/internal/db"
	"github.com/example/supplier-gate/internal/tracking"
)

// Postgres stores the dataset in three tables named after the sheets of the
// workbook this system replaces; column names mirror the sheet columns so
// exports stay format-compatible.
type Postgres struct {
	db *db.DB
}

func NewPostgres(d *db.DB) *Postgres { return &Postgres{db: d} }

func (p *Postgres) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := p.db.Query(ctx, `SELECT proveedor, usuario, clave_hash FROM proveedor_credencial ORDER BY usuario`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load credentials: %w", err)
	}
	for rows.Next() {
		var c Credential
		if err := rows.Scan(&c.Supplier, &c.Username, &c.PasswordHash); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("store: scan credential: %w", err)
		}
		snap.Credentials = append(snap.Credentials, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store: load credentials: %w", err)
	}

	rows, err = p.db.Query(ctx, `
SELECT orden_de_compra, proveedor, numero_de_bultos, fecha, hora
FROM proveedor_reservas
ORDER BY fecha, hora, orden_de_compra`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load reservations: %w", err)
	}
	for rows.Next() {
		var r tracking.Reservation
		if err := rows.Scan(&r.OrderID, &r.Supplier, &r.Packages, &r.Date, &r.BookedRange); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("store: scan reservation: %w", err)
		}
		snap.Reservations = append(snap.Reservations, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store: load reservations: %w", err)
	}

	rows, err = p.db.Query(ctx, `
SELECT orden_de_compra, proveedor, numero_de_bultos,
       hora_llegada, hora_inicio_atencion, hora_fin_atencion,
       tiempo_espera, tiempo_atencion, tiempo_total, tiempo_retraso
FROM proveedor_gestion
ORDER BY hora_llegada NULLS LAST, orden_de_compra`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store: load management log: %w", err)
	}
	for rows.Next() {
		var rec tracking.Record
		var arrived, start, end *time.Time
		if err := rows.Scan(&rec.OrderID, &rec.Supplier, &rec.Packages,
			&arrived, &start, &end,
			&rec.WaitMinutes, &rec.ServiceMinutes, &rec.TotalMinutes, &rec.DelayMinutes); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("store: scan management row: %w", err)
		}
		rec.ArrivedAt = arrived
		rec.ServiceStartAt = start
		rec.ServiceEndAt = end
		snap.Records = append(snap.Records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store: load management log: %w", err)
	}

	return snap, nil
}

func (p *Postgres) Save(ctx context.Context, s Snapshot) error {
	err := p.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"proveedor_gestion", "proveedor_reservas", "proveedor_credencial"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		for _, c := range s.Credentials {
			if _, err := tx.Exec(ctx,
				`INSERT INTO proveedor_credencial (proveedor, usuario, clave_hash) VALUES ($1,$2,$3)`,
				c.Supplier, c.Username, c.PasswordHash); err != nil {
				return err
			}
		}
		for _, r := range s.Reservations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO proveedor_reservas (orden_de_compra, proveedor, numero_de_bultos, fecha, hora) VALUES ($1,$2,$3,$4,$5)`,
				r.OrderID, r.Supplier, r.Packages, r.Date, r.BookedRange); err != nil {
				return err
			}
		}
		for _, rec := range s.Records {
			if _, err := tx.Exec(ctx, `
INSERT INTO proveedor_gestion
  (orden_de_compra, proveedor, numero_de_bultos,
   hora_llegada, hora_inicio_atencion, hora_fin_atencion,
   tiempo_espera, tiempo_atencion, tiempo_total, tiempo_retraso)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				rec.OrderID, rec.Supplier, rec.Packages,
				rec.ArrivedAt, rec.ServiceStartAt, rec.ServiceEndAt,
				rec.WaitMinutes, rec.ServiceMinutes, rec.TotalMinutes, rec.DelayMinutes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}
