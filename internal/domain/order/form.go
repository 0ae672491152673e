package order

import (
	"html/template"
	"sort"
	"strings"
)

// checkoutFormTemplate renders a self-submitting form that hands the browser
// off to the gateway's hosted checkout page.
var checkoutFormTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body>
<form action="{{.Action}}" method="POST" id="checkout-form">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
</form>
<script>document.getElementById("checkout-form").submit();</script>
</body>
</html>
`))

type formField struct {
	Name  string
	Value string
}

type formData struct {
	Action string
	Fields []formField
}

// FormHTML renders the signed checkout payload as an auto-POST HTML form.
// Pure function of order state; field order is deterministic.
func (o *Order) FormHTML() (string, error) {
	fields := make([]formField, 0, len(o.form))
	for name, value := range o.form {
		fields = append(fields, formField{Name: name, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})

	var sb strings.Builder
	if err := checkoutFormTemplate.Execute(&sb, formData{
		Action: o.actionURL,
		Fields: fields,
	}); err != nil {
		return "", err
	}

	return sb.String(), nil
}
