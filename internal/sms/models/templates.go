package models

import (
	"fmt"
	"strings"

	dErrors "ridergate/pkg/domain-errors"
)

// Data holds template fields by name.
type Data map[string]string

// HelpLine is the public support number printed in replies.
const HelpLine = "080-OGUN-HELP"

type template struct {
	fields []string
	render func(d Data) string
}

var templates = map[Kind]template{
	KindVerification: {
		fields: []string{"first_name", "last_name", "lga_name", "vehicle_type", "status", "jacket_number"},
		render: func(d Data) string {
			return fmt.Sprintf("OGUN TRANSPORT VERIFICATION\n%s %s\nLGA: %s\nVehicle: %s\nStatus: %s\nValid Rider ✓\nReport issues: SMS REPORT %s",
				d["first_name"], d["last_name"], d["lga_name"], d["vehicle_type"], d["status"], d["jacket_number"])
		},
	},
	KindPaymentConfirmation: {
		fields: []string{"amount", "jacket_number", "lga_name"},
		render: func(d Data) string {
			return fmt.Sprintf("Payment of ₦%s confirmed for jacket %s. Your jacket will be ready in 5-7 working days. Collect at %s office.",
				d["amount"], d["jacket_number"], d["lga_name"])
		},
	},
	KindIncidentReceived: {
		fields: []string{"report_id", "jacket_number"},
		render: func(d Data) string {
			return fmt.Sprintf("Incident report #%s received for jacket %s. We will investigate and respond within 24 hours.",
				d["report_id"], d["jacket_number"])
		},
	},
	KindInvalidJacket: {
		fields: []string{"jacket_number"},
		render: func(d Data) string {
			return fmt.Sprintf("Jacket %s not found. Please verify number. Report suspicious activity: Call %s",
				d["jacket_number"], HelpLine)
		},
	},
	KindHelp: {
		render: func(Data) string { return helpText },
	},
	KindStatus: {
		fields: []string{"jacket_number", "status"},
		render: func(d Data) string {
			return fmt.Sprintf("Jacket %s Status: %s", d["jacket_number"], strings.ToUpper(d["status"]))
		},
	},
	KindUnknownCommand: {
		render: func(Data) string { return "Command not recognized. " + helpText },
	},
	KindUnavailable: {
		render: func(Data) string { return "Service temporarily unavailable. Please try again later." },
	},
}

var helpText = "OGUN TRANSPORT HELP\n" +
	"Commands:\n" +
	"VERIFY [jacket_number] - Check rider\n" +
	"REPORT [jacket_number] [description] - Report incident\n" +
	"STATUS [jacket_number] - Check status\n" +
	"Help: " + HelpLine

// HasTemplate reports whether k renders through Render.
func HasTemplate(k Kind) bool {
	_, ok := templates[k]
	return ok
}

// Render fills the template for kind. Every field the template prints must
// be present and non-blank.
func Render(kind Kind, data Data) (string, error) {
	t, ok := templates[kind]
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("no template for message type %q", kind))
	}
	var missing []string
	for _, f := range t.fields {
		if strings.TrimSpace(data[f]) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "", dErrors.New(dErrors.CodeValidation, "template data missing: "+strings.Join(missing, ", "))
	}
	return t.render(data), nil
}
