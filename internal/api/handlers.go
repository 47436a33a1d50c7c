// Package api exposes the shop repositories over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whiteknight/neoknight/internal/domain"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/repository"
	"github.com/whiteknight/neoknight/internal/specification"
)

const defaultPageSize = 100

// Server holds the HTTP handler dependencies
type Server struct {
	store  *domain.Store
	health HealthChecker
	logger *slog.Logger
}

// New creates a new API server. health may be nil.
func New(store *domain.Store, health HealthChecker, l *slog.Logger) *Server {
	return &Server{store: store, health: health, logger: logger.OrDefault(l).With(logger.Scope("api"))}
}

// ListResponse is the response for list endpoints
type ListResponse[T any] struct {
	Items []*T  `json:"items"`
	Count int64 `json:"count"`
}

// ListCustomers handles GET /api/customers
// Filters: name, name_prefix, email_contains, active, min_age. Navigation: with.
func (s *Server) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := domain.CustomerFilter{
		Name:          q.Get("name"),
		NamePrefix:    q.Get("name_prefix"),
		EmailContains: q.Get("email_contains"),
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid active parameter", http.StatusBadRequest)
			return
		}
		f.Active = &active
	}
	if v := q.Get("min_age"); v != "" {
		minAge, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid min_age parameter", http.StatusBadRequest)
			return
		}
		f.MinAge = &minAge
	}

	nav, ok := domain.Navigation(q.Get("with"))
	if !ok {
		http.Error(w, "invalid with parameter", http.StatusBadRequest)
		return
	}

	cmd, err := listCommand[domain.Customer](r, f.Specification())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.store.Customers.Query(r.Context(), cmd.Navigate(nav))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[domain.Customer]{Items: res.Records, Count: res.Count})
}

// GetCustomer handles GET /api/customers/{id}
func (s *Server) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
	nav, ok := domain.Navigation(r.URL.Query().Get("with"))
	if !ok {
		http.Error(w, "invalid with parameter", http.StatusBadRequest)
		return
	}

	customer, err := s.store.Customers.SingleWith(r.Context(), query.SingleRecordCommand[domain.Customer]{Key: id, Navigation: nav})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// PutCustomer handles PUT /api/customers/{id}
func (s *Server) PutCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	customer.CustomerID = id

	if err := s.store.Customers.Upsert(r.Context(), query.UpdateCommand[domain.Customer]{Entity: &customer}); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/customers/{id}
func (s *Server) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	if err := s.store.Customers.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// ListOrders handles GET /api/orders
// Filters: customer_id, number.
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var specs []specification.Specification
	if v := q.Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid customer_id parameter", http.StatusBadRequest)
			return
		}
		specs = append(specs, specification.Eq("CustomerId", id))
	}
	if v := q.Get("number"); v != "" {
		specs = append(specs, specification.Eq("OrderNumber", v))
	}

	cmd, err := listCommand[domain.Order](r, specification.AndOf(specs...))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.store.Orders.Query(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[domain.Order]{Items: res.Records, Count: res.Count})
}

// ListAddresses handles GET /api/addresses
// Filters: city, postcode_prefix.
func (s *Server) ListAddresses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var specs []specification.Specification
	if v := q.Get("city"); v != "" {
		specs = append(specs, specification.Eq("City", v))
	}
	if v := q.Get("postcode_prefix"); v != "" {
		specs = append(specs, specification.StartsWith{Property: "Postcode", Value: v})
	}

	cmd, err := listCommand[domain.Address](r, specification.AndOf(specs...))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.store.Addresses.Query(r.Context(), cmd)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[domain.Address]{Items: res.Records, Count: res.Count})
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listCommand builds a paged, ordered command from page, size, order and desc.
func listCommand[T any](r *http.Request, spec specification.Specification) (query.Command[T], error) {
	page, size, err := parsePagination(r)
	if err != nil {
		return query.Command[T]{}, err
	}
	cmd := query.Where[T](spec).Page(page, size)

	q := r.URL.Query()
	if order := q.Get("order"); order != "" {
		desc := q.Get("desc") == "true"
		cmd = cmd.OrderBy(order, desc)
	}
	return cmd, nil
}

// parsePagination extracts page and size from query parameters
func parsePagination(r *http.Request) (page int, size int, err error) {
	size = defaultPageSize

	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, errors.New("invalid page parameter")
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 0 {
			return 0, 0, errors.New("invalid size parameter")
		}
	}
	return page, size, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrClientSideEvaluation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.logger.Error("request failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
