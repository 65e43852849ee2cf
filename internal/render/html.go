// internal/render/html.go
package render

import (
	"bytes"
	"html/template"
)

// boardTemplate renders one View. Player panels mirror the card layout:
// image, score, then the player name.
var boardTemplate = template.Must(template.New("board").Parse(`<div class="board" data-phase="{{.Phase}}">
{{- if .Players}}<div class="players">
{{- range .Players}}<div class="card"><img class="card-image" src="{{.Image}}" alt="{{.CardText}}"><br>Score: <div class="card-score">{{.Score}}</div><div class="card-title">{{.Name}}</div></div>
{{- end}}</div>
{{- end}}
{{- with .Control}}<button class="btn btn-primary" data-action="{{.Action}}"{{if .Disabled}} disabled{{end}}>{{.Label}}</button>
{{- end}}
{{- with .Status}}<div class="status">{{.}}</div>
{{- end}}
{{- with .Error}}<div class="error" role="alert">{{.}}</div>
{{- end}}</div>`))

// HTML renders the view as an HTML fragment.
func HTML(v View) (string, error) {
	var b bytes.Buffer
	if err := boardTemplate.Execute(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}
