// Package seed bootstraps an empty store with the default tables,
// menu, staff roster and settings. A store with any table documents
// is never re-seeded.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/spicegarden/pos/internal/store"
)

// Run seeds the store if the tables collection is empty. Individual
// record failures are accumulated and returned together; the caller
// logs them and continues with whatever data made it in, since a
// partial seed is recoverable on the next run.
func Run(ctx context.Context, st store.Store) error {
	snap, err := st.Load(ctx, store.CollectionTables)
	if err != nil {
		return fmt.Errorf("check tables collection: %w", err)
	}
	if len(snap) > 0 {
		logrus.Debug("store already seeded, skipping")
		return nil
	}

	logrus.Info("seeding empty store with defaults")
	now := time.Now()

	var result *multierror.Error

	for _, t := range DefaultTables() {
		if err := st.Save(ctx, store.CollectionTables, t.ID, t); err != nil {
			result = multierror.Append(result, fmt.Errorf("seed table %s: %w", t.ID, err))
		}
	}

	for _, mi := range DefaultMenu {
		if err := st.Save(ctx, store.CollectionMenu, mi.ID, mi); err != nil {
			result = multierror.Append(result, fmt.Errorf("seed menu item %s: %w", mi.ID, err))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("hash default password: %w", err))
	} else {
		for _, s := range DefaultStaff(now) {
			s.PasswordHash = string(hash)
			if err := st.Save(ctx, store.CollectionStaff, s.ID, s); err != nil {
				result = multierror.Append(result, fmt.Errorf("seed staff %s: %w", s.ID, err))
			}
		}
	}

	if err := st.Save(ctx, store.CollectionSettings, store.SettingsDocID, DefaultSettings); err != nil {
		result = multierror.Append(result, fmt.Errorf("seed settings: %w", err))
	}

	return result.ErrorOrNil()
}
