package firebase

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

// Clients holds the Firebase services used by the relay. Firestore is nil
// unless it was requested.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// Setup initializes the Firebase app from the service account JSON.
func Setup(ctx context.Context, cfg config.FirebaseConfig, withFirestore bool) (*Clients, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID},
		option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	clients := &Clients{Auth: authClient}

	if withFirestore {
		clients.Firestore, err = app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("init firestore: %w", err)
		}
		log.Println("Successfully connected to Firestore")
	}
	return clients, nil
}

func (c *Clients) Close() {
	if c == nil || c.Firestore == nil {
		return
	}
	if err := c.Firestore.Close(); err != nil {
		log.Printf("closing firestore client: %v", err)
	}
}
