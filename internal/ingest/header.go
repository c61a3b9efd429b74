package ingest

import (
	"sort"
	"strings"

	"github.com/sells-group/lead-ingest/internal/normalize"
)

// FieldKey is a canonical lead field that source headers map onto.
type FieldKey string

const (
	FieldName                FieldKey = "name"
	FieldFirstName           FieldKey = "first_name"
	FieldLastName            FieldKey = "last_name"
	FieldEmail               FieldKey = "email"
	FieldPhone               FieldKey = "phone"
	FieldCountry             FieldKey = "country"
	FieldStatus              FieldKey = "status"
	FieldReferralDestination FieldKey = "referral_destination"
	FieldReferralSource      FieldKey = "referral_source"
	FieldNotes               FieldKey = "notes"
	FieldCampaign            FieldKey = "campaign"
	FieldCampaignName        FieldKey = "campaign_name"
	FieldCreatedTime         FieldKey = "created_time"
	FieldBarcelonaTimeline   FieldKey = "barcelona_timeline"
	FieldIntake              FieldKey = "intake"
	FieldNameScore           FieldKey = "name_score"
	FieldEmailScore          FieldKey = "email_score"
	FieldPhoneValid          FieldKey = "phone_valid"
	FieldRecencyScore        FieldKey = "recency_score"
	FieldLeadScore           FieldKey = "lead_score"
	FieldLeadQuality         FieldKey = "lead_quality"
)

// headerSynonyms lists, per canonical field, every source header known to
// carry it. Entries are written in normalize.Key form (lower-case, no
// diacritics, single spaces). This table is a contract with the source
// platforms: add synonyms, never rename or remove them.
var headerSynonyms = map[FieldKey][]string{
	FieldName: {
		"name", "full name", "fullname", "lead name", "contact name",
		"prospect name", "student name", "nombre", "nombre completo",
		"nombre y apellidos",
	},
	FieldFirstName: {
		"first name", "firstname", "first", "given name", "fname",
		"nombre de pila",
	},
	FieldLastName: {
		"last name", "lastname", "last", "surname", "family name", "lname",
		"apellido", "apellidos",
	},
	FieldEmail: {
		"email", "e mail", "email address", "e mail address", "mail",
		"prospect email", "work email", "correo", "correo electronico",
		"email (required)",
	},
	FieldPhone: {
		"phone", "phone number", "telephone", "tel", "mobile",
		"mobile phone", "mobile number", "cell", "cell phone", "whatsapp",
		"whatsapp number", "telefono", "numero de telefono", "celular",
		"movil",
	},
	FieldCountry: {
		"country", "country name", "country of residence", "pais",
		"pais de residencia",
	},
	FieldStatus: {
		"status", "contact status", "lead status", "estado",
		"estado del lead",
	},
	FieldReferralDestination: {
		"referral destination", "destination", "referred to", "partner",
		"school", "destino",
	},
	FieldReferralSource: {
		"referral source", "source", "lead source", "platform",
		"utm source", "origen", "fuente",
	},
	FieldNotes: {
		"notes", "note", "comments", "comment", "message", "observations",
		"notas", "comentarios", "observaciones", "mensaje",
	},
	FieldCampaign: {
		"campaign", "ad campaign", "campana", "ad name", "form name",
	},
	FieldCampaignName: {
		"campaign name", "nombre de campana", "nombre de la campana",
	},
	FieldCreatedTime: {
		"created time", "created", "created at", "created date",
		"date created", "submitted at", "submission date", "date",
		"fecha", "fecha de creacion",
	},
	FieldBarcelonaTimeline: {
		"barcelona timeline", "timeline", "moving timeline",
		"months to barcelona", "when do you plan to move to barcelona?",
		"when do you want to move to barcelona?", "¿cuando quieres mudarte a barcelona?",
	},
	FieldIntake: {
		"intake", "start date", "preferred intake", "intake date",
		"desired start", "fecha de inicio",
	},
	FieldNameScore:    {"name score"},
	FieldEmailScore:   {"email score"},
	FieldPhoneValid:   {"phone valid", "valid phone", "phone is valid"},
	FieldRecencyScore: {"recency score"},
	FieldLeadScore:    {"lead score", "score", "total score"},
	FieldLeadQuality:  {"lead quality", "quality"},
}

// headerIndex is the inverted synonym table, built once at init.
var headerIndex = func() map[string]FieldKey {
	idx := make(map[string]FieldKey)
	for key, syns := range headerSynonyms {
		for _, s := range syns {
			idx[normalizeHeader(s)] = key
		}
	}
	return idx
}()

// normalizeHeader strips a byte-order mark and wrapping quotes, then folds
// case and diacritics and collapses whitespace, underscores and hyphens.
func normalizeHeader(raw string) string {
	h := strings.TrimPrefix(raw, "\ufeff")
	h = strings.Trim(strings.TrimSpace(h), "\"'")
	return normalize.Key(h)
}

// MapHeader resolves a raw source header to its canonical field.
// Unrecognized headers return false and their column is dropped.
func MapHeader(raw string) (FieldKey, bool) {
	key, ok := headerIndex[normalizeHeader(raw)]
	return key, ok
}

// Synonyms returns a copy of the synonym table for display.
func Synonyms() map[FieldKey][]string {
	out := make(map[FieldKey][]string, len(headerSynonyms))
	for k, v := range headerSynonyms {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Fields returns all canonical field keys in sorted order.
func Fields() []FieldKey {
	keys := make([]FieldKey, 0, len(headerSynonyms))
	for k := range headerSynonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
