package forms

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/diary/internal/common"
	"github.com/dmitrijs2005/diary/internal/server/fields"
)

const (
	MaxTargetsLength = 255
	MaxTagLength     = 100
)

// EntryInput is a validated entry submission.
type EntryInput struct {
	Text string
	// Targets is nil when the form did not carry a targets key at all.
	Targets *string
	Tags    []string
	// Raw holds every submitted key, including the custom_<name> values.
	Raw map[string]string
}

// ParseEntry validates the core entry fields. Custom field values are passed
// through untouched in Raw.
func ParseEntry(v Values) (*EntryInput, error) {
	verr := common.NewValidationError()

	in := &EntryInput{
		Text: strings.TrimSpace(v.String("text")),
		Tags: ParseTags(v.String("tags")),
		Raw:  v.Flat(),
	}

	switch {
	case in.Text == "":
		verr.Add("text", "this field is required")
	case !fields.ValidText(in.Text):
		verr.Add("text", fields.InvalidTextMessage)
	}

	if v.Has("targets") {
		targets := strings.TrimSpace(v.String("targets"))
		switch {
		case !fields.ValidText(targets):
			verr.Add("targets", fields.InvalidTextMessage)
		case utf8.RuneCountInString(targets) > MaxTargetsLength:
			verr.Add("targets", "must be at most 255 characters")
		}
		in.Targets = &targets
	}

	for _, t := range in.Tags {
		if !fields.ValidText(t) {
			verr.Add("tags", fields.InvalidTextMessage)
			break
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			verr.Add("tags", "each tag must be at most 100 characters")
			break
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return in, nil
}

// ParseTags splits a comma separated tag string. Labels are trimmed, empty
// ones dropped and repeats removed. Quoted labels may contain commas.
func ParseTags(s string) []string {
	var (
		out  []string
		seen = map[string]struct{}{}
		cur  strings.Builder
		inQ  bool
	)
	flush := func() {
		label := strings.TrimSpace(cur.String())
		cur.Reset()
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQ = !inQ
		case r == ',' && !inQ:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// EntryFields describes the core entry form controls.
func EntryFields(text, targets, tags string, showTargets, showTags bool) []Field {
	out := []Field{{Name: "text", Label: "Text", Kind: KindTextarea, Value: text, Attrs: map[string]string{"rows": "10"}}}
	if showTargets {
		out = append(out, Field{Name: "targets", Label: "Targets", Kind: KindText, Value: targets})
	}
	if showTags {
		out = append(out, Field{Name: "tags", Label: "Tags", Kind: KindText, Value: tags})
	}
	return Style(out)
}

// JoinTags renders labels back into the comma separated input form.
func JoinTags(tags []string) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		if strings.Contains(t, ",") {
			t = `"` + t + `"`
		}
		quoted[i] = t
	}
	return strings.Join(quoted, ", ")
}
