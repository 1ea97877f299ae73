// Command token registers a participant (or looks one up) and prints a bearer
// token for it, for use with curl or a local client.
//
//	token -name Alice
//	token -id 6f1c...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mmynk/swisscoin/internal/auth"
	"github.com/mmynk/swisscoin/internal/config"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage/sqlite"
	"github.com/mmynk/swisscoin/pkg/logging"
)

func main() {
	var (
		id    = flag.String("id", "", "existing participant ID")
		name  = flag.String("name", "", "name of a new participant")
		email = flag.String("email", "", "email of a new participant")
	)
	flag.Parse()

	if err := run(*id, strings.TrimSpace(*name), strings.TrimSpace(*email)); err != nil {
		slog.Error("token failed", "error", err)
		os.Exit(1)
	}
}

func run(id, name, email string) error {
	if (id == "") == (name == "") {
		return errors.New("set exactly one of -id and -name")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	var p *models.Participant
	if id != "" {
		p, err = store.GetParticipant(ctx, id)
		if err != nil {
			return fmt.Errorf("participant %s: %w", id, err)
		}
	} else {
		p = &models.Participant{Name: name, Email: email}
		if err := store.CreateParticipant(ctx, p); err != nil {
			return err
		}
		slog.Info("Participant created", "participant_id", p.ID, "name", p.Name)
	}

	token, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Generate(p)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
