// boardctl manages the persisted board registry: listing, adding and
// removing configured boards. It never talks to a remote forum.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zethon/Owl-sub001/internal/board"
	"github.com/zethon/Owl-sub001/internal/config"
	"github.com/zethon/Owl-sub001/internal/crypto"
	"github.com/zethon/Owl-sub001/internal/logger"
	"github.com/zethon/Owl-sub001/internal/manager"
	"github.com/zethon/Owl-sub001/internal/storage/sqlite"
)

func main() {
	log.SetFlags(log.Lshortfile)

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")

	var (
		name       = flag.String("name", "", "board display name (add)")
		url        = flag.String("url", "", "board url (add)")
		protocol   = flag.String("protocol", "", "parser protocol name (add)")
		serviceUrl = flag.String("service_url", "", "protocol endpoint url (add, optional)")
		username   = flag.String("username", "", "login username (add, optional)")
		password   = flag.String("password", "", "login password (add, optional)")
		uuid       = flag.String("uuid", "", "board uuid (delete)")
	)
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	cipher, err := credentialCipher(cfg)
	if err != nil {
		log.Fatal(err)
	}

	store, err := sqlite.New(cfg.Public.StorePath, cipher)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	mgr := manager.New(store)
	if err := mgr.LoadBoards(); err != nil {
		log.Fatal(err)
	}

	switch flag.Arg(0) {
	case "list", "":
		listBoards(mgr)
	case "add":
		b := board.New(*name, *url, *protocol)
		b.ServiceUrl = *serviceUrl
		b.Username = *username
		b.Password = *password
		if err := mgr.CreateBoard(b); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("added board %q (%s)\n", b.Name(), b.Uuid())
	case "delete":
		b, ok := mgr.BoardByUuid(*uuid)
		if !ok {
			log.Fatalf("no board with uuid %q", *uuid)
		}
		if err := mgr.DeleteBoard(b); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("deleted board %q\n", b.Name())
	default:
		fmt.Fprintf(os.Stderr, "usage: boardctl [flags] list|add|delete\n")
		os.Exit(2)
	}
}

func credentialCipher(cfg *config.Config) (*crypto.CredentialCipher, error) {
	if key := cfg.EncryptionKey(); key != "" {
		return crypto.New(key)
	}
	if pass := cfg.Passphrase(); pass != "" {
		return crypto.NewFromPassphrase(pass)
	}
	return nil, nil
}

func listBoards(mgr *manager.Manager) {
	boards := mgr.Boards()
	if len(boards) == 0 {
		fmt.Println("no boards configured")
		return
	}
	for _, b := range boards {
		fmt.Printf("%d  %-24s %-32s %-12s %s\n",
			b.DisplayOrder(), b.Name(), b.Url, b.Protocol, b.Uuid())
	}
}
