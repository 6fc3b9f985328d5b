package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/swotlab/swotlab/internal/abtest"
	"github.com/swotlab/swotlab/internal/dashboard"
	"github.com/swotlab/swotlab/internal/swot"
)

// Dashboard template data structures
type layoutData struct {
	Title   string
	Email   string
	CSS     template.CSS
	Content template.HTML
}

type dashboardData struct {
	Variants []variantRow
	Summary  abtest.UserMetricsSummary
	Analyses []analysisItem
}

type variantRow struct {
	Name        string
	Views       int64
	Conversions int64
	Rate        string
}

type analysisItem struct {
	ID        string
	Variant   abtest.Variant
	CreatedAt string
	Cards     bool
	Results   []swot.Result
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	counters := s.metrics.Snapshot()

	rows := make([]variantRow, 0, 2)
	for _, v := range []abtest.Variant{abtest.A, abtest.B} {
		rows = append(rows, variantRow{
			Name:        string(v),
			Views:       counters.Views(v),
			Conversions: counters.Conversions(v),
			Rate:        formatPercentage(counters.ConversionRate(v) * 100),
		})
	}

	list := s.analyses.List(user.ID)
	items := make([]analysisItem, len(list))
	for i, a := range list {
		items[i] = analysisItem{
			ID:        a.ID,
			Variant:   a.Variant,
			CreatedAt: a.Timestamp.Format("Jan 2, 2006 15:04"),
			Cards:     a.Variant == abtest.A,
			Results:   a.Results,
		}
	}

	data := dashboardData{
		Variants: rows,
		Summary:  s.analyses.Summary(user.ID),
		Analyses: items,
	}
	s.renderDashboard(w, r, "Dashboard", user.Email, "dashboard.html", data)
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, title, email, contentTemplate string, data any) {
	// Load CSS
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	contentTmpl, err := template.ParseFS(dashboard.Templates, "templates/"+contentTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		s.requestLogger(r).Error().Err(err).Str("template", contentTemplate).Msg("failed to render template")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := template.ParseFS(dashboard.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	layout := layoutData{
		Title:   title,
		Email:   email,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTmpl.Execute(w, layout); err != nil {
		s.requestLogger(r).Error().Err(err).Msg("failed to render layout")
	}
}

func formatPercentage(p float64) string {
	if p < 0.01 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", p)
}
