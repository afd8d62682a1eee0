package main

import (
	"context"
	"fmt"
	"github.com/myrjola/sentinels/internal/e2etest"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/logging"
	"github.com/myrjola/sentinels/internal/models"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

var errUnexpectedStatus = errors.NewSentinel("unexpected status")

// TestIntake submits a case without the required fields. The server must reject it before calling the AI
// provider, so the smoke test never spends model quota.
func TestIntake(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()

	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}

	if _, err := client.GetDoc(ctx, "/history"); err != nil {
		return errors.Wrap(err, "get history")
	}

	resp, err := client.SubmitForm(ctx, "/", "/cases", e2etest.Form{
		Values: url.Values{
			models.FieldName:              {" "},
			models.FieldLastKnownLocation: {""},
			models.FieldNotes:             {"smoke test"},
		},
	})
	if err != nil {
		return errors.Wrap(err, "submit case")
	}
	doc, err := e2etest.ReadDoc(resp)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		return errors.Wrap(errUnexpectedStatus, "submit case", slog.Int("status", resp.StatusCode))
	}
	if n := doc.Find(".field-error").Length(); n != 2 { //nolint:mnd // name and location
		return errors.New("expected two field errors", slog.Int("found", n))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		baseURL  = fmt.Sprintf("https://%s", hostname)
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", baseURL))

	if client, err = e2etest.NewClient(baseURL); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestIntake(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing intake", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
