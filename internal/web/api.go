package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/supplier-gate/internal/tracking"
)

// Wire shapes use the column names of the workbook this service replaces, so
// existing reporting keeps working. Timestamps are "YYYY-MM-DD HH:MM:SS",
// durations integer minutes, absent values null.

type reservaJSON struct {
	Fecha    string `json:"Fecha"`
	Hora     string `json:"Hora"`
	OrderID  string `json:"Orden_de_compra"`
	Supplier string `json:"Proveedor"`
	Packages int    `json:"Numero_de_bultos"`
}

type gestionJSON struct {
	OrderID  string `json:"Orden_de_compra"`
	Supplier string `json:"Proveedor"`
	Packages int    `json:"Numero_de_bultos"`

	ArrivedAt    *string `json:"Hora_llegada"`
	ServiceStart *string `json:"Hora_inicio_atencion"`
	ServiceEnd   *string `json:"Hora_fin_atencion"`

	Wait    *int `json:"Tiempo_espera"`
	Service *int `json:"Tiempo_atencion"`
	Total   *int `json:"Tiempo_total"`
	Delay   *int `json:"Tiempo_retraso"`
}

type boardJSON struct {
	Reservas []reservaJSON              `json:"reservas"`
	Gestion  []gestionJSON              `json:"gestion"`
	Estado   map[string]tracking.Status `json:"estado"`
}

func (s *Server) handleAPIBoard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Checkin.Board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := boardJSON{Estado: make(map[string]tracking.Status, len(rows))}
	for _, row := range rows {
		res := row.Reservation
		resp.Reservas = append(resp.Reservas, reservaJSON{
			Fecha:    res.Date.Format(tracking.DateLayout),
			Hora:     res.BookedRange,
			OrderID:  res.OrderID,
			Supplier: res.Supplier,
			Packages: res.Packages,
		})
		resp.Estado[res.OrderID] = row.Status
		if row.Record != nil {
			rec := row.Record
			resp.Gestion = append(resp.Gestion, gestionJSON{
				OrderID:      rec.OrderID,
				Supplier:     rec.Supplier,
				Packages:     rec.Packages,
				ArrivedAt:    stamp(rec.ArrivedAt),
				ServiceStart: stamp(rec.ServiceStartAt),
				ServiceEnd:   stamp(rec.ServiceEndAt),
				Wait:         rec.WaitMinutes,
				Service:      rec.ServiceMinutes,
				Total:        rec.TotalMinutes,
				Delay:        rec.DelayMinutes,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func stamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(tracking.StampLayout)
	return &s
}
