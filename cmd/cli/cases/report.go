package cases

import (
	"encoding/json"
	"fmt"
	"github.com/fatih/color"
	"github.com/myrjola/sentinels/internal/dashboard"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
	"strings"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var ErrUnknownOutput = errors.NewSentinel("unknown output format")

var (
	headingColor    = color.New(color.FgCyan, color.Bold)
	labelColor      = color.New(color.Faint)
	disclaimerColor = color.New(color.FgYellow)
	bandColors      = map[string]*color.Color{
		dashboard.BandHigh:   color.New(color.FgGreen, color.Bold),
		dashboard.BandMedium: color.New(color.FgYellow),
		dashboard.BandLow:    color.New(color.FgRed),
	}
)

func checkOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return errors.Wrap(ErrUnknownOutput, "check output", slog.String("output", format))
	}
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode json")
		}
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2) //nolint:mnd // two space indent
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "flush yaml")
		}
	default:
		return errors.Wrap(ErrUnknownOutput, "encode", slog.String("output", format))
	}
	return nil
}

func writeRecord(w io.Writer, format string, record models.CaseRecord) error {
	if format == outputText {
		return writeReport(w, dashboard.NewCaseView(record))
	}
	return encode(w, format, record)
}

// reportWriter remembers the first write error so that the report can be written without checking every line.
type reportWriter struct {
	w   io.Writer
	err error
}

func (r *reportWriter) printf(format string, a ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, a...)
}

func (r *reportWriter) heading(title string) {
	r.printf("\n%s\n", headingColor.Sprint(title))
}

func (r *reportWriter) field(label, value string) {
	r.printf("  %s %s\n", labelColor.Sprint(label+":"), value)
}

func writeReport(w io.Writer, view dashboard.CaseView) error {
	r := &reportWriter{w: w}

	r.printf("%s %s\n", headingColor.Sprint("CASE FILE:"), view.Title)
	r.field("Case", dashboard.ShortID(view.ID))
	r.field("Age", view.Age)
	r.field("Last known location", view.LastKnownLocation)
	r.field("Last seen", view.LastSeen)
	r.field("Clothing", view.Clothing)
	r.field("Features", view.Features)
	r.field("Notes", view.Notes)

	r.heading("SUBJECT ANALYSIS")
	if view.Overview.Summary != "" {
		r.printf("  %s\n", view.Overview.Summary)
	}
	r.field("Biometrics", view.Overview.EstimatedBiometrics)
	r.field("Clothing analysis", view.Overview.ClothingAnalysis)
	if len(view.Overview.DistinctiveFeatures) > 0 {
		r.field("Distinctive features", strings.Join(view.Overview.DistinctiveFeatures, ", "))
	}

	r.heading("POTENTIAL MATCHES")
	if len(view.Matches) == 0 {
		r.printf("  No potential matches.\n")
	}
	for _, m := range view.Matches {
		r.printf("  %s %s  %s, %s\n",
			bandColors[m.Band].Sprintf("%3d%%", m.Confidence), m.ID, m.Source, m.Location)
		if m.Description != "" {
			r.printf("       %s\n", m.Description)
		}
	}

	r.heading("SEARCH AREAS")
	if len(view.Leads) == 0 {
		r.printf("  No search leads.\n")
	}
	for _, lead := range view.Leads {
		r.printf("  - %s (%s)\n", lead.LocationName, lead.Type)
		if lead.Address != "" {
			r.printf("    %s\n", lead.Address)
		}
		if lead.Reason != "" {
			r.printf("    %s\n", lead.Reason)
		}
	}

	r.heading("MOVEMENT PREDICTION")
	r.field("Search radius", fmt.Sprintf("%g km", view.Movement.RadiusKm))
	if view.Movement.Prediction != "" {
		r.printf("  %s\n", view.Movement.Prediction)
	}
	if view.Movement.TimeElapsedAnalysis != "" {
		r.printf("  %s\n", view.Movement.TimeElapsedAnalysis)
	}

	if len(view.Citations) > 0 {
		r.heading("SOURCES")
		for _, c := range view.Citations {
			r.printf("  - %s <%s>\n", c.Title, c.URI)
		}
	}

	r.heading("NEXT STEPS")
	for i, action := range view.RecommendedActions {
		r.printf("  %d. %s\n", i+1, action)
	}

	r.printf("\n%s\n", disclaimerColor.Sprint(view.Disclaimer))

	if r.err != nil {
		return errors.Wrap(r.err, "write report")
	}
	return nil
}
