package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ItalcolColombia/miit-api-sub000/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (partial indexes, DO-blocks guarded by existence checks).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Rol{},
		&model.Usuario{},
		&model.Material{},
		&model.Almacenamiento{},
		&model.AlmacenamientoMaterial{},
		&model.Flota{},
		&model.Buque{},
		&model.Camion{},
		&model.Viaje{},
		&model.Cliente{},
		&model.Bl{},
		&model.Transaccion{},
		&model.Pesada{},
		&model.PesadaCorte{},
		&model.Movimiento{},
		&model.Ajuste{},
		&model.LogAuditoria{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully handle.
// Each statement uses IF NOT EXISTS / DO-block guards so re-running on an
// already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the resend cron: only cortes still pending delivery.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'pesadas_corte')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cortes_pendientes_reenvio') THEN
		    CREATE INDEX idx_cortes_pendientes_reenvio
		        ON pesadas_corte (proximo_reenvio)
		        WHERE enviado = false AND proximo_reenvio IS NOT NULL;
		  END IF;
		END $$`,
		// Partial index for the accumulator query: unread pesadas per transacción.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'pesadas')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pesadas_no_leidas') THEN
		    CREATE INDEX idx_pesadas_no_leidas
		        ON pesadas (transaccion_id, consecutivo)
		        WHERE leido = false;
		  END IF;
		END $$`,
		// Audit queries filter by entity + id; jsonb payloads stay unindexed.
		`DO $$ BEGIN
		  IF EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'logs_auditoria')
		    AND NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_auditoria_entidad') THEN
		    CREATE INDEX idx_auditoria_entidad
		        ON logs_auditoria (entidad, entidad_id);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
