package normalize

import (
	"fmt"
	"strings"

	"github.com/sells-group/lead-ingest/internal/model"
)

// statusAliases maps collapsed status labels used by source platforms to the
// row status enum. Keys are in statusKey() form. Append only.
var statusAliases = map[string]model.ContactStatus{
	"new":              model.StatusNotContacted,
	"open":             model.StatusNotContacted,
	"pending":          model.StatusNotContacted,
	"fresh":            model.StatusNotContacted,
	"uncontacted":      model.StatusNotContacted,
	"not_called":       model.StatusNotContacted,
	"to_contact":       model.StatusNotContacted,
	"nuevo":            model.StatusNotContacted,
	"sin_contactar":    model.StatusNotContacted,
	"no_contactado":    model.StatusNotContacted,
	"hot":              model.StatusReferral,
	"warm":             model.StatusReferral,
	"qualified":        model.StatusReferral,
	"interested":       model.StatusReferral,
	"referred":         model.StatusReferral,
	"sent":             model.StatusReferral,
	"converted":        model.StatusReferral,
	"interesado":       model.StatusReferral,
	"referido":         model.StatusReferral,
	"called":           model.StatusContacted,
	"reached":          model.StatusContacted,
	"emailed":          model.StatusContacted,
	"answered":         model.StatusContacted,
	"in_progress":      model.StatusContacted,
	"follow_up":        model.StatusContacted,
	"followup":         model.StatusContacted,
	"working":          model.StatusContacted,
	"attempted":        model.StatusContacted,
	"contactado":       model.StatusContacted,
	"en_proceso":       model.StatusContacted,
	"not_interested":   model.StatusUnqualified,
	"disqualified":     model.StatusUnqualified,
	"cold":             model.StatusUnqualified,
	"lost":             model.StatusUnqualified,
	"junk":             model.StatusUnqualified,
	"spam":             model.StatusUnqualified,
	"bad":              model.StatusUnqualified,
	"invalid":          model.StatusUnqualified,
	"wrong_number":     model.StatusUnqualified,
	"no_interesado":    model.StatusUnqualified,
	"descartado":       model.StatusUnqualified,
	"no_cualificado":   model.StatusUnqualified,
	"not_qualified":    model.StatusUnqualified,
	"unqualified_lead": model.StatusUnqualified,
}

// statusKey folds a status label and collapses spaces, underscores and
// hyphens into single underscores.
func statusKey(s string) string {
	return collapse(s, "_", "_-")
}

// Status resolves a raw status label to the row status enum. Unknown labels
// fall back to not_contacted; a warning is returned when the input was not
// blank.
func Status(raw string) (model.ContactStatus, string) {
	key := statusKey(raw)
	if key == "" {
		return model.StatusNotContacted, ""
	}
	for _, s := range model.RowStatuses {
		if key == string(s) {
			return s, ""
		}
	}
	if s, ok := statusAliases[key]; ok {
		return s, ""
	}
	return model.StatusNotContacted, fmt.Sprintf("Unknown status %q, defaulted to %s", strings.TrimSpace(raw), model.StatusNotContacted)
}
