package mutate

import (
	"sort"
	"strings"
)

// DefaultLabels maps server field names to the labels shown in error
// summaries.
var DefaultLabels = map[string]string{
	"name":                  "Name",
	"email":                 "Email",
	"phone":                 "Phone",
	"department":            "Department",
	"position":              "Position",
	"occupation":            "Occupation",
	"nin":                   "NIN",
	"status":                "Status",
	"notes":                 "Notes",
	"asset":                 "Asset",
	"user":                  "User",
	"assigned_date":         "Assigned Date",
	"return_date":           "Return Date",
	"description":           "Description",
	"approved_by":           "Approved By",
	"building":              "Building",
	"postal_address":        "Postal Address",
	"geographical_location": "Geographical Location",
	"contactPerson":         "Contact Person",
	"address":               "Address",
	"website":               "Website",
	"non_field_errors":      "Error",
	"detail":                "Error",
}

// Label returns the display label for field, preferring labels, then
// DefaultLabels, then the field name with underscores replaced.
func Label(field string, labels map[string]string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	if l, ok := DefaultLabels[field]; ok {
		return l
	}
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Summary joins field errors into one line: "Label: msg; msg | Label: msg",
// fields in alphabetical order.
func Summary(fieldErrs map[string][]string, labels map[string]string) string {
	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs := fieldErrs[field]
		if len(msgs) == 0 {
			continue
		}
		parts = append(parts, Label(field, labels)+": "+strings.Join(msgs, "; "))
	}
	return strings.Join(parts, " | ")
}

// FirstInvalid returns the field that should receive focus: the first entry
// of priority with an error, otherwise the alphabetically first errored field.
func FirstInvalid(fieldErrs map[string][]string, priority []string) string {
	for _, field := range priority {
		if len(fieldErrs[field]) > 0 {
			return field
		}
	}
	first := ""
	for field, msgs := range fieldErrs {
		if len(msgs) == 0 {
			continue
		}
		if first == "" || field < first {
			first = field
		}
	}
	return first
}
