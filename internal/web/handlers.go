package web

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/passgen/internal/config"
	"github.com/hpungsan/passgen/internal/errors"
	"github.com/hpungsan/passgen/internal/generator"
	"github.com/hpungsan/passgen/internal/record"
	"github.com/hpungsan/passgen/internal/store"
	"github.com/hpungsan/passgen/internal/strength"
)

// Handlers contains HTTP route handlers for the web UI.
// mu serializes store access; net/http serves requests concurrently.
type Handlers struct {
	mu       sync.Mutex
	store    *store.Store
	cfg      *config.Config
	logger   *zap.Logger
	renderer *Renderer
}

// HandleIndex handles GET /: the generation form and saved list.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, http.StatusOK, h.defaultForm(), nil, "")
}

// HandleGenerate handles POST /generate.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}

	form, err := h.parseForm(r)
	if err != nil {
		h.renderIndex(w, http.StatusBadRequest, form, nil, errMessage(err))
		return
	}

	pw, err := generator.Generate(generator.Options{
		Length:           form.Length,
		Uppercase:        form.Uppercase,
		Lowercase:        form.Lowercase,
		Numbers:          form.Numbers,
		Symbols:          form.Symbols,
		ExcludeSimilar:   form.ExcludeSimilar,
		ExcludeAmbiguous: form.ExcludeAmbiguous,
	})
	if err != nil {
		h.renderIndex(w, http.StatusBadRequest, form, nil, errMessage(err))
		return
	}

	h.renderIndex(w, http.StatusOK, form, &GeneratedView{
		Password: pw,
		Length:   record.CountChars(pw),
		Report:   strength.Evaluate(pw),
	}, "")
}

// HandleSave handles POST /save.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}

	password := r.PostForm.Get("password")
	if password == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("password is required"))
		return
	}

	h.mu.Lock()
	_, err := h.store.Append(password, r.PostForm.Get("description"))
	h.mu.Unlock()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleClear handles POST /clear.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.store.Clear()
	h.mu.Unlock()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) defaultForm() FormState {
	return FormState{
		Length:    h.cfg.DefaultLength,
		MinLength: h.cfg.MinLength,
		MaxLength: h.cfg.MaxLength,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// parseForm reads the generation form. Unchecked boxes are absent from the
// submission, so a missing checkbox means false.
func (h *Handlers) parseForm(r *http.Request) (FormState, error) {
	form := h.defaultForm()
	form.Uppercase = checked(r, "uppercase")
	form.Lowercase = checked(r, "lowercase")
	form.Numbers = checked(r, "numbers")
	form.Symbols = checked(r, "symbols")
	form.ExcludeSimilar = checked(r, "exclude_similar")
	form.ExcludeAmbiguous = checked(r, "exclude_ambiguous")

	raw := strings.TrimSpace(r.PostForm.Get("length"))
	if raw == "" {
		return form, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < h.cfg.MinLength || n > h.cfg.MaxLength {
		return form, errors.NewInvalidRequest(fmt.Sprintf("length must be between %d and %d", h.cfg.MinLength, h.cfg.MaxLength))
	}
	form.Length = n
	return form, nil
}

func checked(r *http.Request, name string) bool {
	switch r.PostForm.Get(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

func (h *Handlers) renderIndex(w http.ResponseWriter, status int, form FormState, gen *GeneratedView, errMsg string) {
	h.mu.Lock()
	records := h.store.Records()
	loadErr := h.store.LoadWarning()
	h.mu.Unlock()

	views := make([]RecordView, len(records))
	for i, rec := range records {
		cat, _ := strength.Score(rec.Password)
		views[i] = RecordView{
			Index:       i + 1,
			Password:    rec.Password,
			Description: renderMarkdown(rec.Description),
			Length:      rec.Length,
			Timestamp:   rec.Timestamp,
			Category:    cat,
		}
	}

	data := IndexPageData{
		PageData: PageData{
			Title:   "Password Generator",
			Version: h.renderer.version,
		},
		Form:      form,
		Generated: gen,
		Records:   views,
		Error:     errMsg,
	}
	if loadErr != nil {
		data.Warning = "Could not load saved passwords; starting with an empty list."
	}

	h.renderer.renderPage(w, status, "index", data)
}

func errMessage(err error) string {
	var pErr *errors.PassgenError
	if stderrors.As(err, &pErr) {
		return pErr.Message
	}
	return err.Error()
}
