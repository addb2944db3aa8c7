// Command confidectl is a small admin tool that talks to the database
// directly: it can register an identity and dump the shared secrets board
// without going through the HTTP endpoint.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/confideapp/confide/internal/cli"
	"github.com/confideapp/confide/internal/server/config"
	"github.com/confideapp/confide/internal/server/identities"
	"github.com/confideapp/confide/internal/server/password"
	"github.com/confideapp/confide/internal/server/store"
	"github.com/confideapp/confide/internal/shared"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {

	if len(os.Args) < 2 {
		return fmt.Errorf("usage: confidectl <register|secrets>")
	}
	command := os.Args[1]

	_ = godotenv.Load()
	cfg := config.LoadConfig()

	m, err := store.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer m.Conn().Close()

	service := identities.NewService(m.Identities(), password.NewHasher())
	ctx := context.Background()

	switch command {
	case "register":
		return registerIdentity(ctx, service)
	case "secrets":
		return listSecrets(ctx, service)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func registerIdentity(ctx context.Context, service *identities.Service) error {

	reader := bufio.NewReader(os.Stdin)

	username, err := cli.GetSimpleText(reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	pw, err := cli.GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(pw)

	identity, err := service.Register(ctx, username, string(pw))
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("registered %s (%s)\n", identity.Username, identity.ID)
	return nil
}

func listSecrets(ctx context.Context, service *identities.Service) error {

	list, err := service.ListSecrets(ctx)
	if err != nil {
		return fmt.Errorf("listing secrets failed: %w", err)
	}

	for _, identity := range list {
		fmt.Printf("%s\t%s\n", identity.ID, identity.Secret)
	}
	return nil
}
