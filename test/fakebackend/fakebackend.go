// Package fakebackend is an in-memory stand-in for the reports backend used by integration tests
package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const secret = "fake-backend-secret"

// User is a stored account in backend wire form
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"isBlocked"`
	CreatedAt string `json:"createdAt"`
	password  string
}

// Report is a stored report in backend wire form
type Report struct {
	ID          string      `json:"id"`
	PhoneNumber string      `json:"phoneNumber"`
	Message     string      `json:"message"`
	Category    string      `json:"category"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	UserID      string      `json:"userId"`
	User        *ReportUser `json:"user,omitempty"`
}

// ReportUser is the author summary embedded in a report
type ReportUser struct {
	Name string `json:"name"`
}

// Server is a running fake backend
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*User
	reports  map[string]*Report
	order    []string
	contacts []map[string]string
	tokens   *tokenIssuer
	requests map[string]int
}

// New starts a fake backend; callers must Close it
func New() *Server {
	s := &Server{
		users:    make(map[string]*User),
		reports:  make(map[string]*Report),
		tokens:   newTokenIssuer(secret, time.Hour),
		requests: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)
	r.Get("/auth/profile", s.authed(s.profile))
	r.Post("/auth/change-password", s.authed(s.changePassword))

	r.Get("/reports", s.authed(s.listReports))
	r.Post("/reports", s.authed(s.createReport))
	r.Get("/reports/search", s.authed(s.searchReports))
	r.Get("/reports/public/stats", s.stats)
	r.Get("/reports/public/recent", s.recent)
	r.Get("/reports/{id}", s.authed(s.getReport))
	r.Patch("/reports/{id}", s.authed(s.updateReport))
	r.Delete("/reports/{id}", s.authed(s.deleteReport))
	r.Patch("/reports/{id}/admin", s.admin(s.moderateReport))

	r.Get("/users", s.admin(s.listUsers))
	r.Patch("/users/profile", s.authed(s.updateProfile))
	r.Delete("/users/profile", s.authed(s.deleteProfile))
	r.Patch("/users/{id}/block", s.admin(s.setBlocked(true)))
	r.Patch("/users/{id}/unblock", s.admin(s.setBlocked(false)))
	r.Delete("/users/{id}", s.admin(s.deleteUser))

	r.Post("/contact", s.contact)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser stores an account and returns its ID; role is stored as given (e.g. "ADMIN")
func (s *Server) AddUser(name, email, password, role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password, role)
}

// AddReport stores a report with the given status and returns its ID
func (s *Server) AddReport(userID, phoneNumber, message, category, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Message:     message,
		Category:    category,
		Status:      status,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		UserID:      userID,
	}
	s.reports[report.ID] = report
	s.order = append(s.order, report.ID)
	return report.ID
}

// Token mints a valid token for a stored user
func (s *Server) Token(userID string) string {
	s.mu.Lock()
	user, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return ""
	}

	token, _ := s.tokens.Generate(userID, user.Role)
	return token
}

// ExpiredToken mints a token whose exp claim is in the past
func (s *Server) ExpiredToken(userID string) string {
	token, _ := s.tokens.GenerateExpired(userID, "USER")
	return token
}

// Report returns a copy of a stored report
func (s *Server) Report(id string) (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return Report{}, false
	}
	return *report, true
}

// HasUser reports whether an account exists
func (s *Server) HasUser(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok
}

// Contacts returns the received contact messages
func (s *Server) Contacts() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.contacts)
}

// Requests returns how many times "METHOD /path" was called
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

func (s *Server) addUserLocked(name, email, password, role string) string {
	user := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		password:  password,
	}
	s.users[user.ID] = user
	return user.ID
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, caller *User)

func (s *Server) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := s.tokens.Validate(token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		s.mu.Lock()
		user, ok := s.users[userID]
		var caller User
		if ok {
			caller = *user
		}
		s.mu.Unlock()
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, &caller)
	}
}

func (s *Server) admin(next userHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, caller *User) {
		if !strings.EqualFold(caller.Role, "ADMIN") {
			writeMessage(w, http.StatusForbidden, "Forbidden resource")
			return
		}
		next(w, r, caller)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessages(w, http.StatusBadRequest, []string{"email must be an email", "password should not be empty"})
		return
	}

	s.mu.Lock()
	var found *User
	for _, user := range s.users {
		if user.Email == req.Email && user.password == req.Password {
			copied := *user
			found = &copied
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if found.IsBlocked {
		writeMessage(w, http.StatusForbidden, "Account is blocked")
		return
	}

	token, err := s.tokens.Generate(found.ID, found.Role)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "user": found})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == req.Email {
			writeMessage(w, http.StatusConflict, "User with this email already exists")
			return
		}
	}
	id := s.addUserLocked(req.Name, req.Email, req.Password, "USER")
	writeJSON(w, http.StatusCreated, s.users[id])
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request, caller *User) {
	writeJSON(w, http.StatusOK, caller)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, caller *User) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[caller.ID]
	if user.password != req.CurrentPassword {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	user.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request, caller *User) {
	writeJSON(w, http.StatusOK, s.filterReports(func(*Report) bool { return true }))
}

func (s *Server) searchReports(w http.ResponseWriter, r *http.Request, caller *User) {
	phone := r.URL.Query().Get("phoneNumber")
	writeJSON(w, http.StatusOK, s.filterReports(func(report *Report) bool {
		return strings.Contains(report.PhoneNumber, phone)
	}))
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request, caller *User) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Message     string `json:"message"`
		Category    string `json:"category"`
		UserID      string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	id := s.AddReport(req.UserID, req.PhoneNumber, req.Message, req.Category, "PENDING")
	writeJSON(w, http.StatusCreated, s.reportWithAuthor(id))
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request, caller *User) {
	report := s.reportWithAuthor(chi.URLParam(r, "id"))
	if report == nil {
		writeMessage(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request, caller *User) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
		Message     string `json:"message"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	report, ok := s.reports[id]
	if ok {
		if req.PhoneNumber != "" {
			report.PhoneNumber = req.PhoneNumber
		}
		if req.Message != "" {
			report.Message = req.Message
		}
		if req.Category != "" {
			report.Category = req.Category
		}
	}
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "Report not found")
		return
	}
	// the real backend answers without the embedded author
	copied, _ := s.Report(id)
	writeJSON(w, http.StatusOK, copied)
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request, caller *User) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, ok := s.reports[id]
	delete(s.reports, id)
	s.order = slices.DeleteFunc(s.order, func(existing string) bool { return existing == id })
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "Report not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) moderateReport(w http.ResponseWriter, r *http.Request, caller *User) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}
	if req.Status != "APPROVED" && req.Status != "REJECTED" && req.Status != "PENDING" {
		writeMessages(w, http.StatusBadRequest, []string{"status must be one of the following values: PENDING, APPROVED, REJECTED"})
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	report, ok := s.reports[id]
	if ok {
		report.Status = req.Status
	}
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, s.reportWithAuthor(id))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]int{"totalReports": len(s.reports), "totalUsers": len(s.users)}
	for _, report := range s.reports {
		if report.Status == "APPROVED" {
			stats["approvedReports"]++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) recent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.filterReports(func(report *Report) bool {
		return report.Status == "APPROVED"
	}))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, caller *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.Email, b.Email) })
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) setBlocked(blocked bool) userHandler {
	return func(w http.ResponseWriter, r *http.Request, caller *User) {
		s.mu.Lock()
		defer s.mu.Unlock()

		user, ok := s.users[chi.URLParam(r, "id")]
		if !ok {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		user.IsBlocked = blocked
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, caller *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := s.users[id]; !ok {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, caller *User) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[caller.ID]
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request, caller *User) {
	s.mu.Lock()
	delete(s.users, caller.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	var msg map[string]string
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, msg)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Message received"})
}

func (s *Server) filterReports(keep func(*Report) bool) []Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports := make([]Report, 0, len(s.order))
	for _, id := range s.order {
		report := s.reports[id]
		if !keep(report) {
			continue
		}
		copied := *report
		if author, ok := s.users[report.UserID]; ok {
			copied.User = &ReportUser{Name: author.Name}
		}
		reports = append(reports, copied)
	}
	return reports
}

func (s *Server) reportWithAuthor(id string) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil
	}
	copied := *report
	if author, ok := s.users[report.UserID]; ok {
		copied.User = &ReportUser{Name: author.Name}
	}
	return &copied
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": message})
}

func writeMessages(w http.ResponseWriter, status int, messages []string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": messages})
}
