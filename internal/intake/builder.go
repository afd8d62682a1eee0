// Package intake turns a submitted case into the outbound AI request.
package intake

import (
	_ "embed"
	"fmt"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"strings"
	"text/template"
	"time"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

// LastSeenLayout is how the last seen date is presented to the model and in the dashboard.
const LastSeenLayout = "2006-01-02 15:04"

type promptData struct {
	Name                string
	Age                 string
	LastKnownLocation   string
	LastSeen            string
	Elapsed             string
	Clothing            string
	DistinctiveFeatures string
	Notes               string
	HasImage            bool
	ImageMIMEType       string
}

// Build assembles the analysis request for input. now is used to tell the model how much time has passed since
// the person was last seen.
//
// The reference image, if any, is attached as is: it was encoded when the case was submitted.
func Build(input models.CaseInput, now time.Time) (ai.Request, error) {
	data := promptData{
		Name:                strings.TrimSpace(input.Name),
		Age:                 strings.TrimSpace(input.Age),
		LastKnownLocation:   strings.TrimSpace(input.LastKnownLocation),
		Clothing:            strings.TrimSpace(input.Clothing),
		DistinctiveFeatures: strings.TrimSpace(input.DistinctiveFeatures),
		Notes:               strings.TrimSpace(input.Notes),
		HasImage:            input.ReferenceImage != nil,
	}
	if !input.LastSeenDate.IsZero() {
		data.LastSeen = input.LastSeenDate.Format(LastSeenLayout)
		data.Elapsed = FormatElapsed(now.Sub(input.LastSeenDate))
	}
	if input.ReferenceImage != nil {
		data.ImageMIMEType = input.ReferenceImage.MIMEType
	}

	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, data); err != nil {
		return ai.Request{}, errors.Wrap(err, "execute prompt template")
	}

	return ai.Request{
		Prompt: sb.String(),
		Image:  input.ReferenceImage,
	}, nil
}

// FormatElapsed renders d in hours, or days and hours once it exceeds two days. Negative durations mean the last
// seen date lies in the future, which is reported as such rather than guessed at.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		return "Unknown (last seen date is in the future)"
	}
	hours := int(d.Hours())
	const hoursPerDay = 24
	if hours < 2*hoursPerDay {
		return fmt.Sprintf("approximately %d hours", hours)
	}
	return fmt.Sprintf("approximately %d days %d hours", hours/hoursPerDay, hours%hoursPerDay)
}
