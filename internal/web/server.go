package web

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quizdrill/quizdrill/internal/bank"
	"github.com/quizdrill/quizdrill/internal/srs"
	"github.com/quizdrill/quizdrill/internal/storage"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server. It owns the single
// live History snapshot: the scheduling core only ever sees values passed
// in and returned, and the mutex keeps snapshot access single-writer.
type Server struct {
	db        *storage.DB
	bank      *bank.Bank
	policy    srs.Policy
	router    *http.ServeMux
	templates *template.Template

	mu      sync.Mutex
	history srs.History
	topic   string          // active topic filter; "" means the whole bank
	answers map[string]bool // objective result of the last check per item
	session *sessionState
}

// sessionState accumulates one sitting until the learner finishes it.
type sessionState struct {
	startedAt time.Time
	reviewed  int
	correct   int
	incorrect int
}

// NewServer creates and configures a new server around the given snapshot.
func NewServer(db *storage.DB, b *bank.Bank, policy srs.Policy, history srs.History) *Server {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	s := &Server{
		db:        db,
		bank:      b,
		policy:    policy,
		router:    http.NewServeMux(),
		templates: tpl,
		history:   history,
		answers:   make(map[string]bool),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatalf("Failed to create sub-filesystem for static assets: %v", err)
	}
	s.router.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("/", s.handleDeck())
	s.router.HandleFunc("/practice/topic", s.handleSelectTopic())
	s.router.HandleFunc("/practice/next", s.handleNext())
	s.router.HandleFunc("/practice/answer/", s.handleAnswer())
	s.router.HandleFunc("/practice/grade/", s.handleGrade())
	s.router.HandleFunc("/practice/finish", s.handleFinish())
	s.router.HandleFunc("/stats", s.handleStats())
}

// universeIDs returns the candidate item ids for the active topic filter.
// Callers must hold s.mu.
func (s *Server) universeIDs() []string {
	return s.bank.FilterTopic(s.topic)
}

// handleDeck renders the landing page: queue size, stats, topic picker.
func (s *Server) handleDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.renderDeck(w)
	}
}

// renderDeck renders the deck view. Callers must hold s.mu.
func (s *Server) renderDeck(w http.ResponseWriter) {
	now := time.Now()
	universe := s.universeIDs()
	queue := srs.DueQuestions(universe, s.history, now)
	stats, err := s.policy.SmartPracticeStats(s.history, s.bank.Len(), now)
	if err != nil {
		slog.Error("failed to compute stats", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.templates.ExecuteTemplate(w, "deck", map[string]interface{}{
		"QueueCount": len(queue),
		"Stats":      stats,
		"Topics":     s.bank.Topics(),
		"Topic":      s.topic,
	})
}

// handleSelectTopic switches the active topic filter.
func (s *Server) handleSelectTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.topic = r.PostFormValue("topic")
		s.renderDeck(w)
	}
}

// handleNext renders the front of the next due question.
func (s *Server) handleNext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.renderNext(w)
	}
}

// renderNext picks the head of the due queue, or the session summary when
// nothing is left. Callers must hold s.mu.
func (s *Server) renderNext(w http.ResponseWriter) {
	queue := srs.DueQuestions(s.universeIDs(), s.history, time.Now())
	if len(queue) == 0 {
		s.templates.ExecuteTemplate(w, "done", s.sessionSummary())
		return
	}
	q, ok := s.bank.ByID(queue[0])
	if !ok {
		// A stale card for an item no longer in the bank; the deck
		// view is the safest place to recover.
		slog.Warn("due item missing from bank", "item_id", queue[0])
		s.renderDeck(w)
		return
	}
	s.templates.ExecuteTemplate(w, "card_front", map[string]interface{}{
		"Question":  q,
		"Remaining": len(queue),
	})
}

// handleAnswer checks the selected options and reveals the answer.
func (s *Server) handleAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/practice/answer/")
		q, ok := s.bank.ByID(id)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad form data", http.StatusBadRequest)
			return
		}
		var selected []int
		for _, v := range r.PostForm["option"] {
			idx, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "Invalid option", http.StatusBadRequest)
				return
			}
			selected = append(selected, idx)
		}

		correct := q.Check(selected)
		s.mu.Lock()
		s.answers[id] = correct
		s.mu.Unlock()

		s.templates.ExecuteTemplate(w, "card_back", map[string]interface{}{
			"Question": q,
			"Selected": selected,
			"Correct":  correct,
		})
	}
}

// handleGrade runs the scheduler for the learner's self-assessment, folds
// the result into the snapshot, persists it, and shows the next question.
func (s *Server) handleGrade() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/practice/grade/")
		if _, ok := s.bank.ByID(id); !ok {
			http.NotFound(w, r)
			return
		}

		n, err := strconv.Atoi(r.PostFormValue("grade"))
		if err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}
		grade, err := srs.ParseGrade(n)
		if err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		correct, answered := s.answers[id]
		if !answered {
			http.Error(w, "Answer the question before grading it", http.StatusBadRequest)
			return
		}
		delete(s.answers, id)

		now := time.Now()
		card, ok := s.history.Cards[id]
		if !ok {
			// First review of this item: create its card lazily.
			card = s.policy.NewCard(id, now)
		}
		next, err := s.policy.NextReview(card, grade, now)
		if err != nil {
			if errors.Is(err, srs.ErrInvalidGrade) {
				http.Error(w, "Invalid grade", http.StatusBadRequest)
				return
			}
			slog.Error("failed to schedule review", "item_id", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.history = s.history.WithReview(next, correct)
		if s.session == nil {
			s.session = &sessionState{startedAt: now}
		}
		s.session.reviewed++
		if correct {
			s.session.correct++
		} else {
			s.session.incorrect++
		}

		if err := s.db.SaveHistory(s.history); err != nil {
			slog.Error("failed to save history", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		s.renderNext(w)
	}
}

// handleFinish closes the current sitting and appends its summary.
func (s *Server) handleFinish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.session != nil {
			s.history = s.history.WithSession(srs.Session{
				StartedAt:         s.session.startedAt,
				EndedAt:           time.Now(),
				QuestionsReviewed: s.session.reviewed,
				CorrectAnswers:    s.session.correct,
				IncorrectAnswers:  s.session.incorrect,
			})
			s.session = nil
			if err := s.db.SaveHistory(s.history); err != nil {
				slog.Error("failed to save history", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}
		s.renderDeck(w)
	}
}

// handleStats renders the smart-practice stats panel.
func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		stats, err := s.policy.SmartPracticeStats(s.history, s.bank.Len(), time.Now())
		if err != nil {
			slog.Error("failed to compute stats", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.templates.ExecuteTemplate(w, "stats", map[string]interface{}{
			"Stats":    stats,
			"Sessions": s.history.Sessions,
		})
	}
}

// sessionSummary returns the current sitting's counters for the done view.
// Callers must hold s.mu.
func (s *Server) sessionSummary() map[string]interface{} {
	summary := map[string]interface{}{
		"Reviewed":  0,
		"Correct":   0,
		"Incorrect": 0,
	}
	if s.session != nil {
		summary["Reviewed"] = s.session.reviewed
		summary["Correct"] = s.session.correct
		summary["Incorrect"] = s.session.incorrect
	}
	return summary
}
