package migration

import (
	"github.com/quotahub/quotad/internal/config"
	consumabledomain "github.com/quotahub/quotad/internal/consumable/domain"
	featuredomain "github.com/quotahub/quotad/internal/feature/domain"
	slotdomain "github.com/quotahub/quotad/internal/slot/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite/mysql dev paths derive the schema from the models.
		return conn.AutoMigrate(
			&featuredomain.Feature{},
			&consumabledomain.UsageCounter{},
			&slotdomain.SlotAllocation{},
		)
	}),
)
