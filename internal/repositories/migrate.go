package repositories

import (
	"fmt"

	"gorm.io/gorm"
)

// Tables lists the relational rows managed by AutoMigrate.
var Tables = []interface{}{
	&productRecord{},
	&userRecord{},
	&wishlistRecord{},
	&cartRecord{},
}

// AutoMigrate creates or updates the produtos, usuarios, lista_desejos and carrinho tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Migrator().AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
