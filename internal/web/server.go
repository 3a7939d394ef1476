package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/supplier-gate/internal/auth"
	"github.com/example/supplier-gate/internal/checkin"
	"github.com/example/supplier-gate/internal/internaltypes"
	"github.com/example/supplier-gate/internal/tracking"
)

//go:embed templates/*.html static/*
var fs embed.FS

type Server struct {
	Auth    *auth.Store
	Checkin *checkin.Service

	BaseURL string
}

type rowView struct {
	OrderID  string
	Supplier string
	Packages int
	Booked   string

	Status      tracking.Status
	StatusLabel string

	Arrived      string
	ServiceStart string
	ServiceEnd   string
	Wait         string
	Service      string
	Total        string
	Delay        string
}

type tmplData struct {
	Title string
	User  string
	Flash string
	Error bool

	Rows    []rowView
	Pending []rowView // arrival tab: today's reservations
	Arrived []rowView // service tab: arrived, not yet serviced

	Selected string
	Hours    []int
	Minutes  []int

	DefaultHour   int
	DefaultMinute int
	NowHour       int
	NowMinute     int
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.FileServer(http.FS(fs)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleBoard)))
	mux.Handle("/arrival", s.Auth.RequireAuth(http.HandlerFunc(s.handleArrival)))
	mux.Handle("/service", s.Auth.RequireAuth(http.HandlerFunc(s.handleService)))
	mux.Handle("/api/board", s.Auth.RequireAuth(http.HandlerFunc(s.handleAPIBoard)))

	return mux
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if _, err := s.Auth.Authenticate(r.Context(), username, password); err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password", Error: true})
			return
		}
		if err := s.Auth.SetSession(w, r, username); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	user, _ := auth.UsernameFromContext(r.Context())
	rows, err := s.Checkin.Board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "templates/board.html", tmplData{
		Title: "Today",
		User:  user,
		Rows:  viewRows(rows),
		Flash: r.URL.Query().Get("flash"),
	})
}

func (s *Server) handleArrival(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())
	rows, err := s.Checkin.Board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := tmplData{
		Title:   "Arrival",
		User:    user,
		Pending: viewRows(rows),
		Hours:   hourOptions(),
		Minutes: minuteOptions(),
	}

	switch r.Method {
	case http.MethodGet:
		data.Selected = r.URL.Query().Get("order")
		s.fillArrivalDefaults(&data, rows)
		s.render(w, "templates/arrival.html", data)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		orderID := strings.TrimSpace(r.FormValue("order"))
		hour, _ := strconv.Atoi(r.FormValue("hour"))
		minute, _ := strconv.Atoi(r.FormValue("minute"))

		rec, err := s.Checkin.RegisterArrival(r.Context(), orderID, hour, minute)
		if err != nil {
			data.Selected = orderID
			data.Flash = flashFor(err)
			data.Error = true
			s.fillArrivalDefaults(&data, rows)
			s.render(w, "templates/arrival.html", data)
			return
		}

		flash := fmt.Sprintf("Arrival registered for %s", orderID)
		if rec.DelayMinutes != nil {
			switch d := *rec.DelayMinutes; {
			case d > 0:
				flash = fmt.Sprintf("Arrival registered for %s — %d min late", orderID, d)
			case d < 0:
				flash = fmt.Sprintf("Arrival registered for %s — %d min early", orderID, -d)
			default:
				flash = fmt.Sprintf("Arrival registered for %s — on time", orderID)
			}
		}
		http.Redirect(w, r, "/?flash="+template.URLQueryEscaper(flash), http.StatusFound)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UsernameFromContext(r.Context())
	rows, err := s.Checkin.Board(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var arrived []rowView
	for _, v := range viewRows(rows) {
		if v.Status == tracking.StatusArrivedPending {
			arrived = append(arrived, v)
		}
	}

	data := tmplData{
		Title:   "Service",
		User:    user,
		Arrived: arrived,
		Hours:   hourOptions(),
		Minutes: minuteOptions(),
	}
	now := s.Checkin.Clock.Now()
	data.NowHour = now.Hour()
	data.NowMinute = nearestStep(now.Minute())

	switch r.Method {
	case http.MethodGet:
		data.Selected = r.URL.Query().Get("order")
		s.render(w, "templates/service.html", data)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		orderID := strings.TrimSpace(r.FormValue("order"))
		startHour, _ := strconv.Atoi(r.FormValue("start_hour"))
		startMinute, _ := strconv.Atoi(r.FormValue("start_minute"))
		endHour, _ := strconv.Atoi(r.FormValue("end_hour"))
		endMinute, _ := strconv.Atoi(r.FormValue("end_minute"))

		rec, err := s.Checkin.RegisterService(r.Context(), orderID, startHour, startMinute, endHour, endMinute)
		if err != nil {
			data.Selected = orderID
			data.Flash = flashFor(err)
			data.Error = true
			s.render(w, "templates/service.html", data)
			return
		}

		flash := fmt.Sprintf("Service registered for %s: wait %d min, service %d min, total %d min",
			orderID, *rec.WaitMinutes, *rec.ServiceMinutes, *rec.TotalMinutes)
		http.Redirect(w, r, "/?flash="+template.URLQueryEscaper(flash), http.StatusFound)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) fillArrivalDefaults(data *tmplData, rows []checkin.BoardRow) {
	now := s.Checkin.Clock.Now()
	data.DefaultHour = now.Hour()
	data.DefaultMinute = nearestStep(now.Minute())
	for _, row := range rows {
		if row.Reservation.OrderID == data.Selected {
			h, m := s.Checkin.DefaultArrival(row.Reservation)
			data.DefaultHour = h
			data.DefaultMinute = nearestStep(m)
			return
		}
	}
}

func flashFor(err error) string {
	switch {
	case errors.Is(err, internaltypes.ErrNotFound):
		return "No arrival registered for this order yet."
	case errors.Is(err, internaltypes.ErrValidation):
		return "Cannot save: " + strings.TrimPrefix(err.Error(), internaltypes.ErrValidation.Error()+": ")
	default:
		log.Printf("checkin error: %v", err)
		return "Something went wrong saving the record. Try again."
	}
}

func viewRows(rows []checkin.BoardRow) []rowView {
	out := make([]rowView, 0, len(rows))
	for _, row := range rows {
		v := rowView{
			OrderID:  row.Reservation.OrderID,
			Supplier: row.Reservation.Supplier,
			Packages: row.Reservation.Packages,
			Booked:   row.Reservation.BookedRange,
			Status:   row.Status,
		}
		switch row.Status {
		case tracking.StatusNotArrived:
			v.StatusLabel = "Pending arrival"
		case tracking.StatusArrivedPending:
			v.StatusLabel = "Arrived, pending service"
		case tracking.StatusCompleted:
			v.StatusLabel = "Completed"
		}
		if row.Record != nil {
			v.Arrived = wallTime(row.Record.ArrivedAt)
			v.ServiceStart = wallTime(row.Record.ServiceStartAt)
			v.ServiceEnd = wallTime(row.Record.ServiceEndAt)
			v.Wait = minutesLabel(row.Record.WaitMinutes)
			v.Service = minutesLabel(row.Record.ServiceMinutes)
			v.Total = minutesLabel(row.Record.TotalMinutes)
			v.Delay = minutesLabel(row.Record.DelayMinutes)
		}
		out = append(out, v)
	}
	return out
}

func wallTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

func minutesLabel(m *int) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%d min", *m)
}

func hourOptions() []int {
	out := make([]int, 24)
	for i := range out {
		out[i] = i
	}
	return out
}

// 5-minute steps, matching the time pickers staff are used to.
func minuteOptions() []int {
	var out []int
	for m := 0; m < 60; m += 5 {
		out = append(out, m)
	}
	return out
}

func nearestStep(minute int) int {
	return (minute / 5) * 5
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("listening on %s\n", addr)
	return srv.ListenAndServe()
}
