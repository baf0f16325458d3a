package repository

import (
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"gorm.io/gorm"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

// Factory builds the repository for the configured store driver once
type Factory struct {
	driver    string
	db        *gorm.DB
	firestore *firestore.Client

	repo UserSubscriptionRepository
	err  error
	once sync.Once
}

// NewFactory creates a new repository factory. Only the client of the
// selected driver needs to be set.
func NewFactory(driver string, db *gorm.DB, fs *firestore.Client) *Factory {
	return &Factory{
		driver:    driver,
		db:        db,
		firestore: fs,
	}
}

// GetUserSubscriptionRepository returns the singleton repository instance
func (f *Factory) GetUserSubscriptionRepository() (UserSubscriptionRepository, error) {
	f.once.Do(func() {
		switch f.driver {
		case config.StoreFirestore:
			if f.firestore == nil {
				f.err = fmt.Errorf("store driver %s requires a firestore client", f.driver)
				return
			}
			f.repo = NewFirestoreUserSubscriptionRepository(f.firestore)
		case config.StoreMySQL:
			if f.db == nil {
				f.err = fmt.Errorf("store driver %s requires a database connection", f.driver)
				return
			}
			f.repo = NewGormUserSubscriptionRepository(f.db)
		case config.StoreMemory:
			f.repo = NewMemoryUserSubscriptionRepository()
		default:
			f.err = fmt.Errorf("unknown store driver %q", f.driver)
		}
	})
	return f.repo, f.err
}
