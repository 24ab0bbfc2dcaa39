package server

import (
	"html/template"
	"net/http"
)

// indexTemplate renders a minimal job list. The teacher's equivalent page
// is built with templ-generated views (internal/ui); that package was
// never part of the retrieval pack, so there's no concrete template to
// adapt here, and plain html/template is used instead (see DESIGN.md).
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>scanblit</title></head>
<body>
<h1>Batch blit jobs</h1>
<table border="1" cellpadding="4">
<tr><th>ID</th><th>State</th><th>Src</th><th>Out</th><th>Combine</th><th>Progress</th></tr>
{{range .}}
<tr>
<td>{{.ID}}</td>
<td>{{.State}}</td>
<td>{{.Config.SrcDir}}</td>
<td>{{.Config.OutDir}}</td>
<td>{{.Config.Combine}}</td>
<td>{{.FramesWritten}}/{{.TotalFrames}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// handleIndex handles GET / with a minimal job-list page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	jobs := s.jobManager.ListJobs()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, jobs); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
