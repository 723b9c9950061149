package server

import (
	"html/template"
	"net/http"

	"github.com/mehmetcc/ppdb/internal/session"
	"go.uber.org/zap"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="id">
<head><meta charset="utf-8"><title>{{.Title}} | PPDB</title></head>
<body>
<h1>{{.Title}}</h1>
{{with .Identity}}<p>Masuk sebagai {{if .Name}}{{.Name}}{{else}}{{.ID}}{{end}} ({{.Role}})</p>{{end}}
<p>{{.Body}}</p>
</body>
</html>
`))

type pageData struct {
	Title    string
	Body     string
	Identity *session.Identity
}

type pages struct {
	logger *zap.Logger
}

func newPages(logger *zap.Logger) *pages {
	return &pages{logger: logger}
}

func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Identity, _ = session.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		p.logger.Error("failed to render page", zap.String("title", data.Title), zap.Error(err))
	}
}

func (p *pages) dashboard(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, pageData{Title: "Dashboard Panitia", Body: "Daftar calon siswa tersedia di menu Pendaftar."})
}

func (p *pages) applicant(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, pageData{Title: "Pendaftaran", Body: "Lengkapi berkas dan pilih jalur pendaftaran."})
}

func (p *pages) unauthorized(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusForbidden, pageData{Title: "Akses Ditolak", Body: "Akun Anda tidak memiliki akses ke halaman ini."})
}
