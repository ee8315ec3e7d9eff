package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"phoneprice/ml"
)

var numberPrinter = message.NewPrinter(language.English)

// formatNumber renders a bound with thousands separators, keeping one
// decimal for fractional kinds.
func formatNumber(kind ml.FeatureKind, value float64) string {
	if kind == ml.KindFloat {
		return numberPrinter.Sprintf("%.1f", value)
	}
	return numberPrinter.Sprintf("%d", int64(value))
}

type formField struct {
	ml.FeatureSpec
	Value string
	Range string
}

type formPage struct {
	SchemaVersion string
	Numeric       []formField
	Flags         []formField
	Result        string
	Emoji         string
	Error         string
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Mobile Price Prediction</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; }
h1, .subtitle, footer { text-align: center; }
.grid { display: grid; grid-template-columns: 1fr 1fr; gap: .75rem 1.5rem; }
.flags { grid-template-columns: 1fr 1fr 1fr; }
label { display: flex; flex-direction: column; font-size: .9rem; }
.result { background: #e7f6ec; padding: 1rem; border-radius: 6px; }
.error { background: #fdecea; padding: 1rem; border-radius: 6px; }
</style>
</head>
<body>
<h1>📱 Mobile Price Prediction</h1>
<p class="subtitle">Predict mobile price range using machine learning</p>
<hr>
<form method="post" action="/predict">
<h2>🔢 Enter Mobile Specifications</h2>
<div class="grid">
{{- range .Numeric}}
<label>{{.Label}}{{if .Unit}} ({{.Unit}}){{end}} <small>{{.Range}}</small>
<input type="number" name="{{.Name}}" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{.Value}}" required>
</label>
{{- end}}
</div>
<h2>⚙️ Additional Features</h2>
<div class="grid flags">
{{- range .Flags}}
<label>{{.Label}}
<select name="{{.Name}}">
<option value="0"{{if eq .Value "0"}} selected{{end}}>0</option>
<option value="1"{{if eq .Value "1"}} selected{{end}}>1</option>
</select>
</label>
{{- end}}
</div>
<hr>
<button type="submit">🔮 Predict Price Range</button>
</form>
{{- if .Result}}
<p class="result">Predicted Price Range: <strong>{{.Result}} {{.Emoji}}</strong></p>
{{- end}}
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
<footer><hr><small>schema {{.SchemaVersion}}</small></footer>
</body>
</html>
`))

// newFormPage lays out every schema field, filling values from the submitted
// form or, when absent, from the field minimum.
func newFormPage(submitted map[string]string) formPage {
	page := formPage{SchemaVersion: ml.SchemaVersion}
	for _, spec := range ml.FeatureSpecs() {
		value, ok := submitted[spec.Name]
		if !ok {
			value = strconv.FormatFloat(spec.Min, 'f', -1, 64)
		}
		field := formField{
			FeatureSpec: spec,
			Value:       value,
			Range:       formatNumber(spec.Kind, spec.Min) + " – " + formatNumber(spec.Kind, spec.Max),
		}
		if spec.Kind == ml.KindFlag {
			page.Flags = append(page.Flags, field)
		} else {
			page.Numeric = append(page.Numeric, field)
		}
	}
	return page
}

func (h *handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, http.StatusOK, newFormPage(nil))
}

func (h *handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		page := newFormPage(nil)
		page.Error = "could not read form: " + err.Error()
		h.renderForm(w, http.StatusBadRequest, page)
		return
	}

	submitted := make(map[string]string, len(r.PostForm))
	values := make(map[string]float64, len(r.PostForm))
	for name := range r.PostForm {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		submitted[name] = raw
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			page := newFormPage(submitted)
			page.Error = "invalid value for " + name + ": " + raw
			h.renderForm(w, http.StatusBadRequest, page)
			return
		}
		values[name] = parsed
	}

	page := newFormPage(submitted)
	prediction, err := h.predict(r.Context(), values)
	if err != nil {
		page.Error = err.Error()
		h.renderForm(w, statusFor(err), page)
		return
	}
	page.Result = string(prediction.Label)
	page.Emoji = prediction.Label.Emoji()
	h.renderForm(w, http.StatusOK, page)
}

func (h *handlers) renderForm(w http.ResponseWriter, status int, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, page); err != nil {
		h.logger.Error("render form", zap.Error(err))
	}
}
