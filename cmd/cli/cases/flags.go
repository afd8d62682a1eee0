package cases

import (
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/intake"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case analysis",
}

// caseFlags collects a CaseInput from command line flags. The flag names match the intake form fields.
type caseFlags struct {
	input     models.CaseInput
	lastSeen  string
	imagePath string
}

func (f *caseFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.input.Name, models.FieldName, "", "full name of the missing person")
	flags.StringVar(&f.input.Age, models.FieldAge, "", "reported age")
	flags.StringVar(&f.input.LastKnownLocation, models.FieldLastKnownLocation, "", "last known location")
	flags.StringVar(&f.lastSeen, models.FieldLastSeenDate, "",
		"date and time last seen in local time, e.g. \"2025-11-20 18:30\"")
	flags.StringVar(&f.input.Clothing, models.FieldClothing, "", "reported clothing")
	flags.StringVar(&f.input.DistinctiveFeatures, models.FieldDistinctiveFeatures, "", "distinctive features")
	flags.StringVar(&f.input.Notes, models.FieldNotes, "", "additional notes")
	flags.StringVar(&f.imagePath, models.FieldImage, "", "path to a reference photo")
}

// caseInput returns the CaseInput described by the flags. The reference photo is read and encoded here.
func (f *caseFlags) caseInput(maxImageBytes int64) (models.CaseInput, error) {
	input := f.input

	if lastSeen := strings.TrimSpace(f.lastSeen); lastSeen != "" {
		t, err := time.ParseInLocation(intake.LastSeenLayout, lastSeen, time.Local)
		if err != nil {
			return models.CaseInput{}, errors.Wrap(err, "parse last seen date", slog.String("value", lastSeen))
		}
		input.LastSeenDate = t
	}

	if f.imagePath != "" {
		file, err := os.Open(f.imagePath)
		if err != nil {
			return models.CaseInput{}, errors.Wrap(err, "open reference image", slog.String("path", f.imagePath))
		}
		defer func() {
			_ = file.Close()
		}()
		img, err := intake.EncodeImage(file, filepath.Base(f.imagePath), "", maxImageBytes)
		if err != nil {
			return models.CaseInput{}, errors.Wrap(err, "encode reference image")
		}
		input.ReferenceImage = img
	}

	return input, nil
}
